// Package orders implements the swap order lifecycle: preparation of
// unsigned transaction proposals and the checked submission of their signed
// counterparts.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/routing"
	"solana-swap-broker/internal/solana"
	"solana-swap-broker/internal/storage"
)

// Fixed trade configuration. The original deployment treats these as
// constants, not caller inputs.
const (
	// FeeDivisor is the platform fee ratio: fee = collateral / FeeDivisor.
	FeeDivisor = 100

	// SlippageBps is the collateral-side slippage tolerance.
	SlippageBps = 500

	// ComputeUnitPriceMicroLamports is the priority fee directive placed
	// first in every prepared transaction.
	ComputeUnitPriceMicroLamports = 200_000
)

// ConfirmTracker follows relayed transactions to their on-chain outcome.
type ConfirmTracker interface {
	// Track starts following txHash in the background.
	Track(ctx context.Context, message, txHash string)
}

// Service drives the order lifecycle state machine.
type Service struct {
	store    storage.OrderStore
	network  solana.NetworkClient
	routing  routing.Provider
	events   storage.OrderEventStore // optional audit trail
	tracker  ConfirmTracker          // optional confirmation follow-up
	treasury solana.PublicKey
	logger   *log.Logger

	// submitLocks serializes submissions per transaction message, closing
	// the duplicate-relay window between relay and ledger commit.
	submitLocks *keyedLock
}

// Options for creating a Service.
type Options struct {
	Store    storage.OrderStore
	Network  solana.NetworkClient
	Routing  routing.Provider
	Events   storage.OrderEventStore // nil disables the audit trail
	Tracker  ConfirmTracker          // nil disables confirmation tracking
	Treasury solana.PublicKey
	Logger   *log.Logger
}

// New creates a new order Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		store:       opts.Store,
		network:     opts.Network,
		routing:     opts.Routing,
		events:      opts.Events,
		tracker:     opts.Tracker,
		treasury:    opts.Treasury,
		logger:      logger,
		submitLocks: newKeyedLock(),
	}
}

// Get retrieves an order by its canonical transaction message.
func (s *Service) Get(ctx context.Context, message string) (*domain.Order, error) {
	order, err := s.store.GetByMessage(ctx, message)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("look up order: %w", err)
	}
	return order, nil
}

// recordEvent appends an audit event. The trail is advisory: failures are
// logged and never surfaced to the caller.
func (s *Service) recordEvent(ctx context.Context, message, eventType, txHash, detail string) {
	if s.events == nil {
		return
	}

	e := &storage.OrderEvent{
		Message:   message,
		EventType: eventType,
		TxHash:    txHash,
		Detail:    detail,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.events.Insert(ctx, e); err != nil {
		s.logger.Printf("record %s event: %v", eventType, err)
	}
}
