package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the side of a swap order.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// ParseDirection parses a direction string case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DirectionBuy):
		return DirectionBuy, nil
	case string(DirectionSell):
		return DirectionSell, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Order represents a swap order proposal and its submission state.
// Corresponds to the orders table in PostgreSQL.
//
// TransactionMessage is the base64-encoded canonical message bytes of the
// unsigned transaction and uniquely identifies the proposal: a fresh recent
// blockhash is embedded at preparation time, so two orders never share a
// message. SignedTx and TxHash are set together, exactly once, when the
// order transitions to submitted.
type Order struct {
	TransactionMessage   string          // PRIMARY KEY, base64 canonical message
	Submitted            bool            // monotonic false -> true
	LastValidBlockHeight uint64          // expiration horizon, fixed at creation
	Trader               string          // base58 public key authorized to sign
	Direction            Direction       // BUY | SELL
	Token                string          // base58 mint address
	Amount               decimal.Decimal // requested size as given by the client
	SignedTx             *string         // base64 signed transaction, set on submit
	TxHash               *string         // relay signature, set on submit
	CreatedAt            int64           // record creation timestamp (ms)
}
