package memory

import (
	"context"
	"sync"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/storage"
)

// OrderStore is an in-memory implementation of storage.OrderStore.
type OrderStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Order // keyed by transaction message
}

// NewOrderStore creates a new in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		data: make(map[string]*domain.Order),
	}
}

// Insert adds a new order. Returns ErrDuplicateKey if the message exists.
func (s *OrderStore) Insert(_ context.Context, o *domain.Order) error {
	if o == nil || o.TransactionMessage == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[o.TransactionMessage]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	orderCopy := *o
	s.data[o.TransactionMessage] = &orderCopy
	return nil
}

// GetByMessage retrieves an order by message. Returns ErrNotFound if not exists.
func (s *OrderStore) GetByMessage(_ context.Context, message string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.data[message]
	if !exists {
		return nil, storage.ErrNotFound
	}

	orderCopy := *o
	return &orderCopy, nil
}

// MarkSubmitted transitions an order to submitted under the store lock,
// mirroring the conditional-update semantics of the Postgres store.
func (s *OrderStore) MarkSubmitted(_ context.Context, message, signedTx, txHash string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.data[message]
	if !exists {
		return nil, storage.ErrNotFound
	}

	if o.Submitted {
		orderCopy := *o
		return &orderCopy, storage.ErrAlreadySubmitted
	}

	o.Submitted = true
	o.SignedTx = &signedTx
	o.TxHash = &txHash

	orderCopy := *o
	return &orderCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.OrderStore = (*OrderStore)(nil)
