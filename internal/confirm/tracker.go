// Package confirm tracks the on-chain fate of relayed transactions.
//
// Tracking is advisory: the broker's submit path completes as soon as the
// relay accepts the transaction, and the tracker follows up over the
// WebSocket signature subscription to record whether the transaction
// actually landed. Outcomes feed the audit trail and metrics only.
package confirm

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-swap-broker/internal/observability"
	"solana-swap-broker/internal/solana"
	"solana-swap-broker/internal/storage"
)

// DefaultTimeout bounds how long the tracker waits for a confirmation.
// Signature subscriptions are one-shot, so a transaction dropped from the
// mempool would otherwise leak a goroutine per submission.
const DefaultTimeout = 90 * time.Second

// Tracker follows relayed transactions to confirmation.
type Tracker struct {
	ws      solana.WSClient
	events  storage.OrderEventStore // optional audit trail
	logger  *log.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

// Config for creating a Tracker.
type Config struct {
	WS      solana.WSClient
	Events  storage.OrderEventStore // nil disables the audit trail
	Logger  *log.Logger
	Timeout time.Duration // zero means DefaultTimeout
}

// NewTracker creates a confirmation tracker.
func NewTracker(cfg Config) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Tracker{
		ws:      cfg.WS,
		events:  cfg.Events,
		logger:  logger,
		timeout: timeout,
	}
}

// Track starts following a relayed transaction in the background. The
// message identifies the order in the audit trail; txHash is the relay
// signature to subscribe to.
func (t *Tracker) Track(ctx context.Context, message, txHash string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.track(ctx, message, txHash)
	}()
}

// Wait blocks until all in-flight trackers have finished. Intended for
// shutdown and tests.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) track(ctx context.Context, message, txHash string) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ch, err := t.ws.SubscribeSignature(ctx, txHash)
	if err != nil {
		t.logger.Printf("[confirm] subscribe %s: %v", txHash, err)
		return
	}

	select {
	case notif, ok := <-ch:
		if !ok {
			// Subscription torn down without a notification.
			observability.RecordConfirmationTimeout()
			return
		}
		t.record(ctx, message, txHash, notif)
	case <-ctx.Done():
		observability.RecordConfirmationTimeout()
		t.logger.Printf("[confirm] %s: no confirmation within %s", txHash, t.timeout)
	}
}

func (t *Tracker) record(ctx context.Context, message, txHash string, notif solana.SignatureNotification) {
	failed := notif.Err != nil
	observability.RecordConfirmation(failed)

	eventType := storage.EventTxConfirmed
	detail := ""
	if failed {
		eventType = storage.EventTxFailed
		detail = fmt.Sprintf("%v", notif.Err)
		t.logger.Printf("[confirm] %s failed on-chain: %v", txHash, notif.Err)
	} else {
		t.logger.Printf("[confirm] %s confirmed at slot %d", txHash, notif.Slot)
	}

	if t.events == nil {
		return
	}
	e := &storage.OrderEvent{
		Message:   message,
		EventType: eventType,
		TxHash:    txHash,
		Detail:    detail,
		Timestamp: time.Now().UnixMilli(),
	}
	// Best effort, same as the rest of the audit trail.
	if err := t.events.Insert(context.WithoutCancel(ctx), e); err != nil {
		t.logger.Printf("[confirm] record %s event: %v", eventType, err)
	}
}
