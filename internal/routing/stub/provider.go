package stub

import (
	"context"
	"sync"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/routing"
	"solana-swap-broker/internal/solana"
)

// Provider implements routing.Provider for testing.
type Provider struct {
	mu sync.Mutex

	// CollateralLamports maps mint address to the quoted collateral.
	CollateralLamports map[string]uint64
	// Instructions maps mint address to the instructions to return.
	Instructions map[string][]solana.Instruction

	// Error injection.
	CollateralErr error
	BuildErr      error

	// LastParams records the most recent BuildInstructions call.
	LastParams *routing.SwapParams
}

// NewProvider creates a new stub routing provider.
func NewProvider() *Provider {
	return &Provider{
		CollateralLamports: make(map[string]uint64),
		Instructions:       make(map[string][]solana.Instruction),
	}
}

// CollateralFor returns the configured quote for a mint.
func (p *Provider) CollateralFor(_ context.Context, mint string, _ uint64, _ domain.Direction) (uint64, error) {
	if p.CollateralErr != nil {
		return 0, p.CollateralErr
	}

	amount, ok := p.CollateralLamports[mint]
	if !ok {
		return 0, routing.ErrUnknownAsset
	}
	return amount, nil
}

// BuildInstructions returns the configured instructions for a mint.
func (p *Provider) BuildInstructions(_ context.Context, params routing.SwapParams) ([]solana.Instruction, error) {
	if p.BuildErr != nil {
		return nil, p.BuildErr
	}

	p.mu.Lock()
	paramsCopy := params
	p.LastParams = &paramsCopy
	p.mu.Unlock()

	ixs, ok := p.Instructions[params.Mint]
	if !ok {
		return nil, routing.ErrUnknownAsset
	}
	return ixs, nil
}

// Verify interface compliance at compile time.
var _ routing.Provider = (*Provider)(nil)
