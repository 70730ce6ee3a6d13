// Package routing defines the liquidity-routing provider interface the
// broker consumes: collateral quoting and swap instruction building are
// delegated entirely to the provider.
package routing

import (
	"context"
	"errors"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/solana"
)

// ErrUnknownAsset is returned when the provider does not recognize the
// requested mint. Callers reclassify this as caller-input fault.
var ErrUnknownAsset = errors.New("unknown asset")

// SwapParams describes the swap to build instructions for. The token side is
// fixed: slippage tolerance applies to the collateral side only.
type SwapParams struct {
	Mint             string           // token mint address
	TokenQuantity    uint64           // integer token quantity (base units)
	CollateralAmount uint64           // net collateral in lamports
	Direction        domain.Direction // BUY | SELL
	Payer            solana.PublicKey // fee payer and swap participant
	SlippageBps      uint16           // collateral-side slippage tolerance
}

// Provider quotes collateral requirements and builds swap instructions.
type Provider interface {
	// CollateralFor returns the collateral amount in lamports required to
	// trade the given integer token quantity. Returns ErrUnknownAsset if the
	// mint is not routable.
	CollateralFor(ctx context.Context, mint string, tokenQuantity uint64, direction domain.Direction) (uint64, error)

	// BuildInstructions returns the ordered swap instructions for the given
	// parameters. The instructions are opaque to the broker: they are placed
	// into the transaction as returned.
	BuildInstructions(ctx context.Context, params SwapParams) ([]solana.Instruction, error)
}
