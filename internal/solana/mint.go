package solana

import (
	"encoding/base64"
	"fmt"
)

// SPL mint account layout:
// mint_authority COption<Pubkey>(36) | supply u64(8) | decimals u8 | is_initialized u8 | freeze_authority COption<Pubkey>(36)
const (
	mintDecimalsOffset = 44
	mintAccountSize    = 82
)

// parseMintDecimals extracts the decimals field from base64 mint account data.
func parseMintDecimals(data string) (uint8, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return 0, fmt.Errorf("decode mint account data: %w", err)
	}
	if len(decoded) < mintAccountSize {
		return 0, fmt.Errorf("mint account data too short: %d bytes", len(decoded))
	}
	return decoded[mintDecimalsOffset], nil
}
