package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/storage"
)

func testOrder(message string) *domain.Order {
	return &domain.Order{
		TransactionMessage:   message,
		Submitted:            false,
		LastValidBlockHeight: 250000000,
		Trader:               "Trader111111111111111111111111111111111111",
		Direction:            domain.DirectionBuy,
		Token:                "Mint1111111111111111111111111111111111111",
		Amount:               decimal.RequireFromString("12.5"),
		CreatedAt:            1704067200000,
	}
}

func TestOrderStore_InsertAndGetByMessage(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	order := testOrder("test-msg-001")

	err := store.Insert(ctx, order)
	require.NoError(t, err)

	retrieved, err := store.GetByMessage(ctx, "test-msg-001")
	require.NoError(t, err)

	assert.Equal(t, order.TransactionMessage, retrieved.TransactionMessage)
	assert.False(t, retrieved.Submitted)
	assert.Equal(t, order.LastValidBlockHeight, retrieved.LastValidBlockHeight)
	assert.Equal(t, order.Trader, retrieved.Trader)
	assert.Equal(t, order.Direction, retrieved.Direction)
	assert.Equal(t, order.Token, retrieved.Token)
	assert.True(t, order.Amount.Equal(retrieved.Amount), "amount mismatch: got %s, want %s", retrieved.Amount, order.Amount)
	assert.Nil(t, retrieved.SignedTx)
	assert.Nil(t, retrieved.TxHash)
	assert.Equal(t, order.CreatedAt, retrieved.CreatedAt)
}

func TestOrderStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	order := testOrder("test-msg-dup")

	err := store.Insert(ctx, order)
	require.NoError(t, err)

	err = store.Insert(ctx, order)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestOrderStore_GetByMessageNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)

	_, err := store.GetByMessage(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOrderStore_AmountPrecision(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	// NUMERIC must round-trip more precision than float64 carries.
	order := testOrder("test-msg-precision")
	order.Amount = decimal.RequireFromString("123456789.123456789123456789")

	require.NoError(t, store.Insert(ctx, order))

	retrieved, err := store.GetByMessage(ctx, "test-msg-precision")
	require.NoError(t, err)
	assert.True(t, order.Amount.Equal(retrieved.Amount), "got %s, want %s", retrieved.Amount, order.Amount)
}

func TestOrderStore_MarkSubmitted(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testOrder("test-msg-submit")))

	updated, err := store.MarkSubmitted(ctx, "test-msg-submit", "signed-b64", "hash123")
	require.NoError(t, err)

	assert.True(t, updated.Submitted)
	require.NotNil(t, updated.SignedTx)
	assert.Equal(t, "signed-b64", *updated.SignedTx)
	require.NotNil(t, updated.TxHash)
	assert.Equal(t, "hash123", *updated.TxHash)
}

func TestOrderStore_MarkSubmittedTwice(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testOrder("test-msg-twice")))

	_, err := store.MarkSubmitted(ctx, "test-msg-twice", "first", "hash1")
	require.NoError(t, err)

	existing, err := store.MarkSubmitted(ctx, "test-msg-twice", "second", "hash2")
	assert.ErrorIs(t, err, storage.ErrAlreadySubmitted)

	// The winning submission's state is returned to the loser.
	require.NotNil(t, existing)
	require.NotNil(t, existing.TxHash)
	assert.Equal(t, "hash1", *existing.TxHash)
}

func TestOrderStore_MarkSubmittedNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)

	_, err := store.MarkSubmitted(context.Background(), "missing", "tx", "hash")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOrderStore_ConcurrentMarkSubmitted(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testOrder("test-msg-race")))

	const goroutines = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.MarkSubmitted(ctx, "test-msg-race", "tx", "hash")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent transition must win")
}
