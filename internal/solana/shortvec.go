package solana

import "fmt"

// Compact-u16 ("shortvec") length encoding used throughout the transaction
// wire format: little-endian base-128 varint, at most 3 bytes.

// appendShortvecLen appends the compact-u16 encoding of n to buf.
func appendShortvecLen(buf []byte, n int) []byte {
	rem := uint16(n)
	for {
		b := byte(rem & 0x7f)
		rem >>= 7
		if rem == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// readShortvecLen decodes a compact-u16 length from data, returning the
// value and the number of bytes consumed.
func readShortvecLen(data []byte) (int, int, error) {
	var value, shift uint
	for i := 0; i < 3; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("shortvec: truncated length")
		}
		b := data[i]
		value |= uint(b&0x7f) << shift
		if b&0x80 == 0 {
			if value > 0xffff {
				return 0, 0, fmt.Errorf("shortvec: length %d exceeds u16", value)
			}
			return int(value), i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("shortvec: length encoding longer than 3 bytes")
}
