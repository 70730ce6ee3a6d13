package solana

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// Blockhash is a 32-byte recent blockhash.
type Blockhash [32]byte

// ParseBlockhash decodes a base58 blockhash.
func ParseBlockhash(s string) (Blockhash, error) {
	var bh Blockhash

	decoded, err := base58.Decode(s)
	if err != nil {
		return bh, fmt.Errorf("decode blockhash: %w", err)
	}
	if len(decoded) != len(bh) {
		return bh, fmt.Errorf("blockhash must be %d bytes, got %d", len(bh), len(decoded))
	}

	copy(bh[:], decoded)
	return bh, nil
}

// messageVersionPrefix marks a v0 versioned message. Legacy messages have no
// prefix; versioned ones set the top bit, with the version in the low bits.
const messageVersionPrefix = 0x80

// SignatureLength is the byte length of an ed25519 signature.
const SignatureLength = 64

// compiledAccount tracks merged signer/writable flags during compilation.
type compiledAccount struct {
	key      PublicKey
	signer   bool
	writable bool
}

// CompileMessage assembles a v0 transaction message from ordered instructions
// and serializes it to its canonical byte form. The payer is placed first and
// always signs. Serialization is deterministic: identical inputs produce
// identical bytes, which is what makes the message usable as a unique key.
func CompileMessage(payer PublicKey, recentBlockhash Blockhash, instructions []Instruction) ([]byte, error) {
	if len(instructions) == 0 {
		return nil, fmt.Errorf("compile message: no instructions")
	}

	accounts := collectAccounts(payer, instructions)
	keys := orderAccounts(accounts)

	indexOf := make(map[PublicKey]int, len(keys))
	for i, a := range keys {
		indexOf[a.key] = i
	}

	var numSigners, numReadonlySigned, numReadonlyUnsigned int
	for _, a := range keys {
		if a.signer {
			numSigners++
			if !a.writable {
				numReadonlySigned++
			}
		} else if !a.writable {
			numReadonlyUnsigned++
		}
	}
	if numSigners > 255 || len(keys) > 255 {
		return nil, fmt.Errorf("compile message: too many accounts (%d)", len(keys))
	}

	var buf []byte
	buf = append(buf, messageVersionPrefix)
	buf = append(buf, byte(numSigners), byte(numReadonlySigned), byte(numReadonlyUnsigned))

	buf = appendShortvecLen(buf, len(keys))
	for _, a := range keys {
		buf = append(buf, a.key[:]...)
	}

	buf = append(buf, recentBlockhash[:]...)

	buf = appendShortvecLen(buf, len(instructions))
	for _, ix := range instructions {
		progIdx, ok := indexOf[ix.ProgramID]
		if !ok {
			return nil, fmt.Errorf("compile message: program %s not in account list", ix.ProgramID)
		}
		buf = append(buf, byte(progIdx))

		buf = appendShortvecLen(buf, len(ix.Accounts))
		for _, meta := range ix.Accounts {
			idx, ok := indexOf[meta.PubKey]
			if !ok {
				return nil, fmt.Errorf("compile message: account %s not in account list", meta.PubKey)
			}
			buf = append(buf, byte(idx))
		}

		buf = appendShortvecLen(buf, len(ix.Data))
		buf = append(buf, ix.Data...)
	}

	// No address table lookups.
	buf = appendShortvecLen(buf, 0)

	return buf, nil
}

// collectAccounts merges account references across instructions,
// OR-ing signer and writable flags. The payer is always first.
func collectAccounts(payer PublicKey, instructions []Instruction) []compiledAccount {
	ordered := []compiledAccount{{key: payer, signer: true, writable: true}}
	index := map[PublicKey]int{payer: 0}

	upsert := func(key PublicKey, signer, writable bool) {
		if i, ok := index[key]; ok {
			ordered[i].signer = ordered[i].signer || signer
			ordered[i].writable = ordered[i].writable || writable
			return
		}
		index[key] = len(ordered)
		ordered = append(ordered, compiledAccount{key: key, signer: signer, writable: writable})
	}

	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			upsert(meta.PubKey, meta.IsSigner, meta.IsWritable)
		}
		upsert(ix.ProgramID, false, false)
	}

	return ordered
}

// orderAccounts sorts accounts into the wire layout: writable signers
// (payer first), readonly signers, writable non-signers, readonly
// non-signers. First-reference order is preserved within each class.
func orderAccounts(accounts []compiledAccount) []compiledAccount {
	out := make([]compiledAccount, 0, len(accounts))
	classes := []func(a compiledAccount) bool{
		func(a compiledAccount) bool { return a.signer && a.writable },
		func(a compiledAccount) bool { return a.signer && !a.writable },
		func(a compiledAccount) bool { return !a.signer && a.writable },
		func(a compiledAccount) bool { return !a.signer && !a.writable },
	}
	for _, match := range classes {
		for _, a := range accounts {
			if match(a) {
				out = append(out, a)
			}
		}
	}
	return out
}

// SignedTransaction is a decoded signed transaction: its signature slots and
// the raw message bytes they sign.
type SignedTransaction struct {
	Signatures [][]byte
	Message    []byte
}

// DecodeSignedTransaction splits serialized transaction bytes into signature
// slots and message bytes. The message is returned verbatim: the bytes after
// the signature section are exactly the canonical message the signatures
// cover.
func DecodeSignedTransaction(data []byte) (*SignedTransaction, error) {
	numSigs, offset, err := readShortvecLen(data)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	sigs := make([][]byte, 0, numSigs)
	for i := 0; i < numSigs; i++ {
		if offset+SignatureLength > len(data) {
			return nil, fmt.Errorf("decode transaction: truncated signature %d", i)
		}
		sig := make([]byte, SignatureLength)
		copy(sig, data[offset:offset+SignatureLength])
		sigs = append(sigs, sig)
		offset += SignatureLength
	}

	if offset >= len(data) {
		return nil, fmt.Errorf("decode transaction: missing message bytes")
	}

	message := make([]byte, len(data)-offset)
	copy(message, data[offset:])

	return &SignedTransaction{Signatures: sigs, Message: message}, nil
}

// EncodeSignedTransaction assembles serialized transaction bytes from
// signature slots and message bytes. Inverse of DecodeSignedTransaction.
func EncodeSignedTransaction(signatures [][]byte, message []byte) ([]byte, error) {
	for i, sig := range signatures {
		if len(sig) != SignatureLength {
			return nil, fmt.Errorf("encode transaction: signature %d is %d bytes, want %d", i, len(sig), SignatureLength)
		}
	}

	var buf bytes.Buffer
	buf.Write(appendShortvecLen(nil, len(signatures)))
	for _, sig := range signatures {
		buf.Write(sig)
	}
	buf.Write(message)
	return buf.Bytes(), nil
}
