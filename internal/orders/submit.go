package orders

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/observability"
	"solana-swap-broker/internal/solana"
	"solana-swap-broker/internal/storage"
)

// Submit authenticates a signed transaction against its prepared order and
// relays it to the network. Checks run in a fixed order - lookup, expiration,
// signature, submitted flag - so that a validation failure never causes a
// relay. The per-message lock is held from lookup through ledger commit:
// concurrent submissions of the same message serialize, and the loser fails
// the submitted-flag check before reaching the network.
func (s *Service) Submit(ctx context.Context, signedTx []byte) (*domain.Order, error) {
	tx, err := solana.DecodeSignedTransaction(signedTx)
	if err != nil {
		return nil, NewValidationError("signedTx", err.Error())
	}

	message := base64.StdEncoding.EncodeToString(tx.Message)
	s.logger.Printf("submit requested for message %s", message)

	unlock := s.submitLocks.lock(message)
	defer unlock()

	order, err := s.store.GetByMessage(ctx, message)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, s.reject(ctx, message, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("look up order: %w", err)
	}

	height, err := s.network.GetBlockHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch block height: %w", err)
	}
	if height > order.LastValidBlockHeight {
		return nil, s.reject(ctx, message, ErrExpired)
	}

	trader, err := solana.ParsePublicKey(order.Trader)
	if err != nil {
		// Trader keys are validated before an order is stored.
		return nil, fmt.Errorf("parse stored trader key: %w", err)
	}
	if err := verifySignedTransaction(tx, trader, tx.Message); err != nil {
		return nil, s.reject(ctx, message, err)
	}

	if order.Submitted {
		return nil, s.reject(ctx, message, ErrAlreadySubmitted)
	}

	// Past this point the transaction reaches the network. Run relay and
	// commit to completion even if the caller disconnects: the relay cannot
	// be undone, so the ledger transition must still land.
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	txHash, err := s.network.SendTransaction(ctx, signedTx)
	if err != nil {
		observability.ObserveRelay(time.Since(start).Seconds(), "error")
		return nil, fmt.Errorf("relay transaction: %w", err)
	}
	observability.ObserveRelay(time.Since(start).Seconds(), "success")
	s.logger.Printf("relayed transaction %s for message %s", txHash, message)

	signedTxB64 := base64.StdEncoding.EncodeToString(signedTx)
	updated, err := s.store.MarkSubmitted(ctx, message, signedTxB64, txHash)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadySubmitted) {
			// A concurrent submitter won between our flag check and commit.
			// The relay already happened and cannot be undone; surface the
			// winning order's state. With the per-message lock this path is
			// unreachable, it remains as a guard on the ledger's invariant.
			s.recordEvent(ctx, message, storage.EventSubmitRejected, txHash, ErrAlreadySubmitted.Error())
			return updated, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("commit submitted order: %w", err)
	}

	s.recordEvent(ctx, message, storage.EventOrderSubmitted, txHash, "")
	if s.tracker != nil {
		s.tracker.Track(ctx, message, txHash)
	}
	return updated, nil
}

// reject records a rejected submission in the audit trail and returns the
// rejection unchanged.
func (s *Service) reject(ctx context.Context, message string, cause error) error {
	s.logger.Printf("submit rejected for message %s: %v", message, cause)
	s.recordEvent(ctx, message, storage.EventSubmitRejected, "", cause.Error())
	return cause
}
