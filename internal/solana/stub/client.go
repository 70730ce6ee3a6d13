package stub

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/mr-tron/base58"

	"solana-swap-broker/internal/solana"
)

// NetworkClient implements solana.NetworkClient for testing.
type NetworkClient struct {
	mu sync.Mutex

	// Height is returned by GetBlockHeight.
	Height uint64
	// Latest is returned by GetLatestBlockhash.
	Latest solana.LatestBlockhash
	// Decimals maps mint address to decimal precision.
	Decimals map[string]uint8

	// Error injection.
	HeightErr error
	LatestErr error
	SendErr   error

	relayed [][]byte
}

// NewNetworkClient creates a new stub network client.
func NewNetworkClient() *NetworkClient {
	return &NetworkClient{
		Decimals: make(map[string]uint8),
	}
}

// GetBlockHeight returns the configured height.
func (c *NetworkClient) GetBlockHeight(_ context.Context) (uint64, error) {
	if c.HeightErr != nil {
		return 0, c.HeightErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Height, nil
}

// SetHeight updates the height returned by GetBlockHeight.
func (c *NetworkClient) SetHeight(h uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Height = h
}

// GetLatestBlockhash returns the configured blockhash and horizon.
func (c *NetworkClient) GetLatestBlockhash(_ context.Context) (*solana.LatestBlockhash, error) {
	if c.LatestErr != nil {
		return nil, c.LatestErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	latest := c.Latest
	return &latest, nil
}

// GetMintDecimals returns the configured decimals for a mint.
func (c *NetworkClient) GetMintDecimals(_ context.Context, mint string) (uint8, error) {
	d, ok := c.Decimals[mint]
	if !ok {
		return 0, solana.ErrMintNotFound
	}
	return d, nil
}

// SendTransaction records the relayed bytes and returns a deterministic
// signature derived from them.
func (c *NetworkClient) SendTransaction(_ context.Context, signedTx []byte) (string, error) {
	if c.SendErr != nil {
		return "", c.SendErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	relayedCopy := make([]byte, len(signedTx))
	copy(relayedCopy, signedTx)
	c.relayed = append(c.relayed, relayedCopy)

	hash := sha256.Sum256(signedTx)
	return base58.Encode(hash[:]), nil
}

// RelayCount returns how many times SendTransaction was invoked.
func (c *NetworkClient) RelayCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.relayed)
}

// Verify interface compliance at compile time.
var _ solana.NetworkClient = (*NetworkClient)(nil)
