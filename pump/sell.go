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

// SellQuote prices a token-in sell against the current curve snapshot.
func (p *Pump) SellQuote(ctx context.Context, mint solana.PublicKey, tokensIn uint64, slippageBps uint64) (*Quote, error) {
	if tokensIn == 0 {
		return nil, fmt.Errorf("%w: zero amount", ErrValidation)
	}

	state, err := p.cache.Get(ctx, mint)
	if err != nil {
		return nil, err
	}
	if state.Complete {
		return nil, ErrStaleCurveState
	}

	gross := cmath.SolForTokens(state.VirtualSolReserves, state.VirtualTokenReserves, tokensIn)
	if gross == 0 {
		return nil, ErrNoLiquidity
	}
	net, fee := cmath.ApplyFees(gross, p.feeBps, p.creatorFeeBps)

	return &Quote{
		AmountIn:     tokensIn,
		AmountOut:    net,
		FeeTaken:     fee,
		MinAmountOut: cmath.ApplySlippage(net, slippageBps),
	}, nil
}

// SellInstruction assembles the instruction sequence for a sell. The seller
// ATA must already exist; a sell without holdings is refused upstream.
func SellInstruction(
	ctx context.Context,
	rpcClient *rpc.Client,
	seller solana.PublicKey,
	mint solana.PublicKey,
	creator solana.PublicKey,
	tokensIn uint64,
	minSolOut uint64,
	priorityFee uint64,
) ([]solana.Instruction, error) {
	sellerATA, _, err := solana.FindAssociatedTokenAddress(seller, mint)
	if err != nil {
		return nil, err
	}

	instructions := solanago.PriorityFeeInstructions(priorityFee, 0)
	instructions = append(instructions, curve.SellInstruction(seller, mint, sellerATA, creator, tokensIn, minSolOut))
	return instructions, nil
}

// BuildSellTransaction quotes, assembles and signs a sell without
// submitting it.
func (p *Pump) BuildSellTransaction(
	ctx context.Context,
	wallet *solana.Wallet,
	mint solana.PublicKey,
	tokensIn uint64,
	slippageBps uint64,
) (*solana.Transaction, error) {
	quote, err := p.SellQuote(ctx, mint, tokensIn, slippageBps)
	if err != nil {
		return nil, err
	}
	state, err := p.cache.Get(ctx, mint)
	if err != nil {
		return nil, err
	}

	instructions, err := SellInstruction(ctx, p.mux.Fastest(), wallet.PublicKey(), mint, state.Creator, tokensIn, quote.MinAmountOut, p.priorityFee)
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

// Sell submits a sell and waits for confirmation. Returns the signature and
// the SOL received net of fees per the executed quote.
func (p *Pump) Sell(
	ctx context.Context,
	wallet *solana.Wallet,
	mint solana.PublicKey,
	tokensIn uint64,
	slippageBps uint64,
) (string, uint64, error) {
	quote, err := p.SellQuote(ctx, mint, tokensIn, slippageBps)
	if err != nil {
		return "", 0, err
	}
	if balance, err := p.TokenBalance(ctx, wallet.PublicKey(), mint); err == nil && balance < tokensIn {
		return "", 0, fmt.Errorf("%w: hold %d, selling %d", ErrInsufficientBalance, balance, tokensIn)
	}
	state, err := p.cache.Get(ctx, mint)
	if err != nil {
		return "", 0, err
	}

	instructions, err := SellInstruction(ctx, p.mux.Fastest(), wallet.PublicKey(), mint, state.Creator, tokensIn, quote.MinAmountOut, p.priorityFee)
	if err != nil {
		return "", 0, err
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
		return "", 0, err
	}

	p.cache.Invalidate(mint)
	p.logger.Info("sell confirmed",
		zap.Stringer("mint", mint),
		zap.Stringer("seller", wallet.PublicKey()),
		zap.Uint64("tokensIn", tokensIn),
		zap.String("signature", sig.String()),
	)
	return sig.String(), quote.AmountOut, nil
}
