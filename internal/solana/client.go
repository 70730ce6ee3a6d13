package solana

import "context"

// NetworkClient defines the Solana network operations the broker consumes.
type NetworkClient interface {
	// GetBlockHeight retrieves the current confirmed block height.
	GetBlockHeight(ctx context.Context) (uint64, error)

	// GetLatestBlockhash retrieves the latest confirmed blockhash and its
	// expiration horizon.
	GetLatestBlockhash(ctx context.Context) (*LatestBlockhash, error)

	// GetMintDecimals retrieves the decimal precision of an SPL token mint.
	// Returns ErrMintNotFound if the mint account does not exist.
	GetMintDecimals(ctx context.Context, mint string) (uint8, error)

	// SendTransaction relays signed transaction bytes exactly once and
	// returns the transaction signature. Never retried.
	SendTransaction(ctx context.Context, signedTx []byte) (string, error)
}

// Compile-time interface check.
var _ NetworkClient = (*HTTPClient)(nil)
