package clickhouse

import (
	"context"
	"fmt"

	"solana-swap-broker/internal/storage"
)

// OrderEventStore implements storage.OrderEventStore using ClickHouse.
//
// MergeTree does not enforce uniqueness; the trail is append-only by nature
// and duplicates from retried writers are tolerated downstream.
type OrderEventStore struct {
	conn *Conn
}

// NewOrderEventStore creates a new OrderEventStore.
func NewOrderEventStore(conn *Conn) *OrderEventStore {
	return &OrderEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OrderEventStore = (*OrderEventStore)(nil)

// Insert appends a lifecycle event.
func (s *OrderEventStore) Insert(ctx context.Context, e *storage.OrderEvent) error {
	query := `
		INSERT INTO order_events (message, event_type, tx_hash, detail, timestamp_ms)
		VALUES (?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		e.Message,
		e.EventType,
		e.TxHash,
		e.Detail,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}
