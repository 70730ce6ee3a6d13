package orders

import (
	"bytes"
	"crypto/ed25519"

	"solana-swap-broker/internal/solana"
)

// verifySignedTransaction checks that a decoded signed transaction carries
// exactly the expected message bytes and is authentically signed by the
// trader. expectedMessage comes from the ledger lookup, not from recomputing
// anything: byte equality is the whole integrity check.
//
// Signature slots shorter than the ed25519 output length are placeholders
// left by partial signing and are skipped. At least one remaining slot must
// verify against the message bytes and the trader's raw key.
func verifySignedTransaction(tx *solana.SignedTransaction, trader solana.PublicKey, expectedMessage []byte) error {
	if !bytes.Equal(tx.Message, expectedMessage) {
		return ErrInvalidSignature
	}

	for _, sig := range tx.Signatures {
		if len(sig) < solana.SignatureLength {
			continue
		}
		if ed25519.Verify(ed25519.PublicKey(trader.Bytes()), tx.Message, sig) {
			return nil
		}
	}

	return ErrInvalidSignature
}
