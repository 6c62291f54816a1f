package pump

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	curve "github.com/launchkit/pumpfun-go/pump/bonding_curve"
	cmath "github.com/launchkit/pumpfun-go/pump/bonding_curve/math"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

// Quote is the priced outcome of a prospective swap.
type Quote struct {
	AmountIn     uint64
	AmountOut    uint64 // net of fees
	FeeTaken     uint64
	MinAmountOut uint64 // after slippage tolerance
}

// BuyQuote prices a SOL-in buy against the current curve snapshot.
func (p *Pump) BuyQuote(ctx context.Context, mint solana.PublicKey, solIn uint64, slippageBps uint64) (*Quote, error) {
	if solIn == 0 {
		return nil, fmt.Errorf("%w: zero amount", ErrValidation)
	}

	state, err := p.cache.Get(ctx, mint)
	if err != nil {
		return nil, err
	}
	if state.Complete {
		return nil, ErrStaleCurveState
	}

	gross := cmath.TokensForSol(state.VirtualSolReserves, state.VirtualTokenReserves, solIn)
	if gross == 0 {
		return nil, ErrNoLiquidity
	}
	net, fee := cmath.ApplyFees(gross, p.feeBps, p.creatorFeeBps)

	return &Quote{
		AmountIn:     solIn,
		AmountOut:    net,
		FeeTaken:     fee,
		MinAmountOut: cmath.ApplySlippage(net, slippageBps),
	}, nil
}

// BuyInstruction assembles the full instruction sequence for a buy:
// compute budget prelude, ATA creation when missing, then the program buy.
func BuyInstruction(
	ctx context.Context,
	rpcClient *rpc.Client,
	buyer solana.PublicKey,
	mint solana.PublicKey,
	creator solana.PublicKey,
	solIn uint64,
	minTokensOut uint64,
	priorityFee uint64,
) ([]solana.Instruction, error) {
	instructions := solanago.PriorityFeeInstructions(priorityFee, 0)

	buyerATA, err := solanago.PrepareTokenATA(ctx, rpcClient, buyer, mint, buyer, &instructions)
	if err != nil {
		return nil, err
	}

	instructions = append(instructions, curve.BuyExactSolInstruction(buyer, mint, buyerATA, creator, solIn, minTokensOut))
	return instructions, nil
}

// BuildBuyTransaction quotes, assembles and signs a buy without submitting
// it, for bundle composition.
func (p *Pump) BuildBuyTransaction(
	ctx context.Context,
	wallet *solana.Wallet,
	mint solana.PublicKey,
	solIn uint64,
	slippageBps uint64,
) (*solana.Transaction, error) {
	quote, err := p.BuyQuote(ctx, mint, solIn, slippageBps)
	if err != nil {
		return nil, err
	}
	state, err := p.cache.Get(ctx, mint)
	if err != nil {
		return nil, err
	}

	instructions, err := BuyInstruction(ctx, p.mux.Fastest(), wallet.PublicKey(), mint, state.Creator, solIn, quote.MinAmountOut, p.priorityFee)
	if err != nil {
		return nil, err
	}

	return solanago.BuildSignedTransaction(ctx, p.mux.Fastest(), instructions, wallet.PublicKey(),
		func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(wallet.PublicKey()) {
				return &wallet.PrivateKey
			}
			return nil
		},
	)
}

// Buy submits a buy and waits for confirmation.
func (p *Pump) Buy(
	ctx context.Context,
	wallet *solana.Wallet,
	mint solana.PublicKey,
	solIn uint64,
	slippageBps uint64,
) (string, error) {
	quote, err := p.BuyQuote(ctx, mint, solIn, slippageBps)
	if err != nil {
		return "", err
	}
	state, err := p.cache.Get(ctx, mint)
	if err != nil {
		return "", err
	}

	instructions, err := BuyInstruction(ctx, p.mux.Fastest(), wallet.PublicKey(), mint, state.Creator, solIn, quote.MinAmountOut, p.priorityFee)
	if err != nil {
		return "", err
	}
	if cuIx, err := solanago.GetEstimatedComputeUnitIxWithBuffer(ctx, p.mux.Fastest(), instructions, wallet.PublicKey(), 0.1); err == nil {
		instructions = append(instructions, cuIx)
	}

	sig, err := solanago.SendTransaction(ctx, p.mux.Fastest(), p.wsClient, instructions, wallet.PublicKey(),
		func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(wallet.PublicKey()) {
				return &wallet.PrivateKey
			}
			return nil
		},
	)
	if err != nil {
		return "", err
	}

	p.cache.Invalidate(mint)
	p.logger.Info("buy confirmed",
		zap.Stringer("mint", mint),
		zap.Stringer("buyer", wallet.PublicKey()),
		zap.Uint64("solIn", solIn),
		zap.String("signature", sig.String()),
	)
	return sig.String(), nil
}
