package orders

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"solana-swap-broker/internal/domain"
	"solana-swap-broker/internal/routing"
	"solana-swap-broker/internal/solana"
	"solana-swap-broker/internal/storage"
)

// maxTokenQuantity bounds the integer token quantity to what SPL amounts
// can represent.
var maxTokenQuantity = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// Prepare builds an unsigned swap transaction proposal and persists it as an
// unsubmitted order. The returned order carries the canonical message (the
// proposal's identity) and the block height past which it can no longer be
// submitted.
//
// In-flight routing and network calls run to completion even if the caller
// disconnects: aborting midway could leave the routing provider holding
// state for a transaction that was never persisted.
func (s *Service) Prepare(ctx context.Context, token solana.PublicKey, amount decimal.Decimal, direction domain.Direction, trader solana.PublicKey) (*domain.Order, error) {
	ctx = context.WithoutCancel(ctx)

	if !amount.IsPositive() {
		return nil, NewValidationError("amount", "must be positive")
	}

	mint := token.String()

	decimals, err := s.network.GetMintDecimals(ctx, mint)
	if err != nil {
		if errors.Is(err, solana.ErrMintNotFound) {
			return nil, NewValidationError("token", "unknown mint")
		}
		return nil, fmt.Errorf("resolve mint decimals: %w", err)
	}
	s.logger.Printf("mint %s has %d decimals", mint, decimals)

	tokenQuantity, err := scaleToBaseUnits(amount, decimals)
	if err != nil {
		return nil, err
	}

	collateral, err := s.routing.CollateralFor(ctx, mint, tokenQuantity, direction)
	if err != nil {
		if errors.Is(err, routing.ErrUnknownAsset) {
			return nil, NewValidationError("token", "not routable")
		}
		return nil, fmt.Errorf("collateral quote: %w", err)
	}

	// Integer division floors; both fee and net stay non-negative.
	fee := collateral / FeeDivisor
	net := collateral - fee
	s.logger.Printf("quoted %d lamports for %d base units of %s (fee %d, net %d)",
		collateral, tokenQuantity, mint, fee, net)

	swapIxs, err := s.routing.BuildInstructions(ctx, routing.SwapParams{
		Mint:             mint,
		TokenQuantity:    tokenQuantity,
		CollateralAmount: net,
		Direction:        direction,
		Payer:            trader,
		SlippageBps:      SlippageBps,
	})
	if err != nil {
		if errors.Is(err, routing.ErrUnknownAsset) {
			return nil, NewValidationError("token", "not routable")
		}
		return nil, fmt.Errorf("build swap instructions: %w", err)
	}

	latest, err := s.network.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch latest blockhash: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(swapIxs)+2)
	instructions = append(instructions, solana.NewComputeUnitPriceInstruction(ComputeUnitPriceMicroLamports))
	instructions = append(instructions, swapIxs...)
	instructions = append(instructions, solana.NewTransferInstruction(trader, s.treasury, fee))

	messageBytes, err := solana.CompileMessage(trader, latest.Blockhash, instructions)
	if err != nil {
		return nil, fmt.Errorf("compile transaction message: %w", err)
	}
	message := base64.StdEncoding.EncodeToString(messageBytes)

	order := &domain.Order{
		TransactionMessage:   message,
		Submitted:            false,
		LastValidBlockHeight: latest.LastValidBlockHeight,
		Trader:               trader.String(),
		Direction:            direction,
		Token:                mint,
		Amount:               amount,
		CreatedAt:            time.Now().UnixMilli(),
	}

	if err := s.store.Insert(ctx, order); err != nil {
		// A fresh blockhash makes collisions practically impossible;
		// a duplicate here is a store fault, not a caller fault.
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.logger.Printf("prepared order %s (trader %s, horizon %d)", message, order.Trader, order.LastValidBlockHeight)
	s.recordEvent(ctx, message, storage.EventOrderPrepared, "", string(direction))

	return order, nil
}

// scaleToBaseUnits converts a decimal token amount into an integer quantity
// of base units, truncating sub-unit precision.
func scaleToBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	scaled := amount.Shift(int32(decimals)).Floor()
	if !scaled.IsPositive() {
		return 0, NewValidationError("amount", "below one base unit")
	}
	if scaled.Cmp(maxTokenQuantity) > 0 {
		return 0, NewValidationError("amount", "exceeds representable token quantity")
	}
	return scaled.BigInt().Uint64(), nil
}
