package orders

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"solana-swap-broker/internal/solana"
)

func signerKey(t *testing.T) (solana.PublicKey, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	var pk solana.PublicKey
	copy(pk[:], pub)
	return pk, priv
}

func TestVerifySignedTransaction(t *testing.T) {
	trader, priv := signerKey(t)
	message := []byte{0x80, 1, 0, 0, 0xAA, 0xBB}

	tx := &solana.SignedTransaction{
		Signatures: [][]byte{ed25519.Sign(priv, message)},
		Message:    message,
	}

	if err := verifySignedTransaction(tx, trader, message); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
}

func TestVerifySignedTransaction_WrongKey(t *testing.T) {
	trader, _ := signerKey(t)
	_, otherPriv := signerKey(t)
	message := []byte{0x80, 1, 0, 0, 0xAA}

	tx := &solana.SignedTransaction{
		Signatures: [][]byte{ed25519.Sign(otherPriv, message)},
		Message:    message,
	}

	if err := verifySignedTransaction(tx, trader, message); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignedTransaction_TamperedMessage(t *testing.T) {
	trader, priv := signerKey(t)
	message := []byte{0x80, 1, 0, 0, 0xAA}

	tampered := append([]byte(nil), message...)
	tampered[len(tampered)-1] = 0xBB

	tx := &solana.SignedTransaction{
		Signatures: [][]byte{ed25519.Sign(priv, tampered)},
		Message:    tampered,
	}

	// The ledger's message is authoritative; a differing payload fails
	// before any signature math runs.
	if err := verifySignedTransaction(tx, trader, message); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifySignedTransaction_SkipsPlaceholderSlots(t *testing.T) {
	trader, priv := signerKey(t)
	message := []byte{0x80, 2, 0, 0, 0xAA}

	// A short placeholder slot followed by a real signature must pass.
	tx := &solana.SignedTransaction{
		Signatures: [][]byte{
			make([]byte, 10),
			ed25519.Sign(priv, message),
		},
		Message: message,
	}

	if err := verifySignedTransaction(tx, trader, message); err != nil {
		t.Errorf("placeholder slot should be skipped: %v", err)
	}
}

func TestVerifySignedTransaction_NoSignatures(t *testing.T) {
	trader, _ := signerKey(t)
	message := []byte{0x80, 0, 0, 0}

	tx := &solana.SignedTransaction{Message: message}

	if err := verifySignedTransaction(tx, trader, message); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}
