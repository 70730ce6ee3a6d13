package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/storage"
)

// OrderStore implements storage.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *Pool
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(pool *Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderStore = (*OrderStore)(nil)

const orderColumns = `
	transaction_message, submitted, last_valid_block_height, trader,
	direction, token, amount::text, signed_tx, tx_hash, created_at
`

// Insert adds a new unsubmitted order. Returns ErrDuplicateKey if the
// transaction message already exists.
func (s *OrderStore) Insert(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (
			transaction_message, submitted, last_valid_block_height, trader,
			direction, token, amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		o.TransactionMessage,
		o.Submitted,
		int64(o.LastValidBlockHeight),
		o.Trader,
		string(o.Direction),
		o.Token,
		o.Amount.String(),
		o.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByMessage retrieves an order by its canonical transaction message.
// Returns ErrNotFound if not exists.
func (s *OrderStore) GetByMessage(ctx context.Context, message string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE transaction_message = $1`

	row := s.pool.QueryRow(ctx, query, message)
	o, err := scanOrder(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order by message: %w", err)
	}
	return o, nil
}

// MarkSubmitted transitions an order to submitted in a single conditional
// update. The submitted = FALSE predicate guarantees at most one caller wins;
// losers are told whether the order was taken or never existed.
func (s *OrderStore) MarkSubmitted(ctx context.Context, message, signedTx, txHash string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET submitted = TRUE, signed_tx = $2, tx_hash = $3
		WHERE transaction_message = $1 AND submitted = FALSE
		RETURNING ` + orderColumns

	row := s.pool.QueryRow(ctx, query, message, signedTx, txHash)
	o, err := scanOrder(row)
	if err == nil {
		return o, nil
	}
	if !isNotFoundError(err) {
		return nil, fmt.Errorf("mark order submitted: %w", err)
	}

	// No row transitioned: either the order is already submitted or it
	// never existed. Distinguish with a point lookup.
	existing, getErr := s.GetByMessage(ctx, message)
	if getErr != nil {
		return nil, getErr
	}
	if existing.Submitted {
		return existing, storage.ErrAlreadySubmitted
	}
	return nil, fmt.Errorf("mark order submitted: conditional update matched no rows")
}

// scanOrder scans a single row into an Order.
func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var directionStr string
	var amountStr string
	var lastValid int64

	err := row.Scan(
		&o.TransactionMessage,
		&o.Submitted,
		&lastValid,
		&o.Trader,
		&directionStr,
		&o.Token,
		&amountStr,
		&o.SignedTx,
		&o.TxHash,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse order amount %q: %w", amountStr, err)
	}

	o.Direction = domain.Direction(directionStr)
	o.Amount = amount
	o.LastValidBlockHeight = uint64(lastValid)
	return &o, nil
}
