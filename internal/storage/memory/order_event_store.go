package memory

import (
	"context"
	"sync"

	"solana-swap-broker/internal/storage"
)

// OrderEventStore is an in-memory implementation of storage.OrderEventStore.
type OrderEventStore struct {
	mu     sync.Mutex
	events []storage.OrderEvent
}

// NewOrderEventStore creates a new in-memory order event store.
func NewOrderEventStore() *OrderEventStore {
	return &OrderEventStore{}
}

// Insert appends a lifecycle event.
func (s *OrderEventStore) Insert(_ context.Context, e *storage.OrderEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, *e)
	return nil
}

// Events returns a copy of all recorded events in insertion order.
func (s *OrderEventStore) Events() []storage.OrderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]storage.OrderEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Verify interface compliance at compile time.
var _ storage.OrderEventStore = (*OrderEventStore)(nil)
