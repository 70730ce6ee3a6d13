package storage

import (
	"context"

	"solana-swap-broker/internal/domain"
)

// OrderStore provides access to orders storage.
//
// Orders are never deleted: the ledger is an append-only audit trail with a
// single allowed mutation per row, the unsubmitted -> submitted transition.
type OrderStore interface {
	// Insert adds a new unsubmitted order. Returns ErrDuplicateKey if an
	// order with the same transaction message already exists.
	Insert(ctx context.Context, o *domain.Order) error

	// GetByMessage retrieves an order by its canonical transaction message.
	// Returns ErrNotFound if not exists.
	GetByMessage(ctx context.Context, message string) (*domain.Order, error)

	// MarkSubmitted atomically transitions a matching order from
	// submitted=false to submitted=true, recording the signed transaction and
	// its hash, and returns the updated order. The transition must be a
	// single conditional update so that concurrent callers cannot both
	// succeed. Returns ErrAlreadySubmitted if the order was already
	// submitted, ErrNotFound if no order matches.
	MarkSubmitted(ctx context.Context, message, signedTx, txHash string) (*domain.Order, error)
}

// OrderEvent is a lifecycle audit event emitted by the broker.
type OrderEvent struct {
	Message   string // canonical transaction message of the order
	EventType string // ORDER_PREPARED | ORDER_SUBMITTED | SUBMIT_REJECTED | TX_CONFIRMED | TX_FAILED
	TxHash    string // relay signature, empty before submission
	Detail    string // rejection reason or confirmation detail
	Timestamp int64  // Unix timestamp in milliseconds
}

// Audit event types.
const (
	EventOrderPrepared  = "ORDER_PREPARED"
	EventOrderSubmitted = "ORDER_SUBMITTED"
	EventSubmitRejected = "SUBMIT_REJECTED"
	EventTxConfirmed    = "TX_CONFIRMED"
	EventTxFailed       = "TX_FAILED"
)

// OrderEventStore records order lifecycle events for analytics.
// The trail is advisory: writes must not affect request outcomes.
type OrderEventStore interface {
	// Insert appends a lifecycle event.
	Insert(ctx context.Context, e *OrderEvent) error
}
