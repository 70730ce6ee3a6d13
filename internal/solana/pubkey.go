package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the byte length of an ed25519 public key.
const PublicKeyLength = 32

// PublicKey is a 32-byte ed25519 public key.
type PublicKey [PublicKeyLength]byte

// Well-known program addresses.
var (
	SystemProgramID        = MustParsePublicKey("11111111111111111111111111111111")
	ComputeBudgetProgramID = MustParsePublicKey("ComputeBudget111111111111111111111111111111")
)

// ParsePublicKey decodes a base58 public key and validates its length.
// Off-curve keys (program-derived addresses) are accepted: they are valid
// account addresses, just not signing keys.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey

	decoded, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode public key: %w", err)
	}
	if len(decoded) != PublicKeyLength {
		return pk, fmt.Errorf("public key must be %d bytes, got %d", PublicKeyLength, len(decoded))
	}

	copy(pk[:], decoded)
	return pk, nil
}

// ParseSigningKey decodes a base58 public key and additionally requires it to
// be on the ed25519 curve, since only on-curve keys can produce signatures.
func ParseSigningKey(s string) (PublicKey, error) {
	pk, err := ParsePublicKey(s)
	if err != nil {
		return pk, err
	}
	if !isOnCurve(pk[:]) {
		return PublicKey{}, fmt.Errorf("public key %s is off the ed25519 curve", s)
	}
	return pk, nil
}

// MustParsePublicKey parses a base58 public key and panics on failure.
// Intended for package-level constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the base58 encoding of the key.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns the raw key bytes.
func (pk PublicKey) Bytes() []byte {
	return pk[:]
}

// isOnCurve reports whether point decodes as a valid ed25519 curve point.
func isOnCurve(point []byte) bool {
	if len(point) != PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
