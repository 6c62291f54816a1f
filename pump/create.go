package pump

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"go.uber.org/zap"

	curve "github.com/launchkit/pumpfun-go/pump/bonding_curve"
	cmath "github.com/launchkit/pumpfun-go/pump/bonding_curve/math"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

const maxSymbolLen = 10

// CreateToken launches a new asset on the curve. When initialBuySOL is
// non-zero, a first buy rides in the same transaction so the creator holds
// supply before anyone else can trade.
func (p *Pump) CreateToken(
	ctx context.Context,
	payer *solana.Wallet,
	mintWallet *solana.Wallet,
	name string,
	symbol string,
	uri string,
	initialBuySOL uint64,
	slippageBps uint64,
) (string, error) {
	if name == "" || symbol == "" || uri == "" {
		return "", fmt.Errorf("%w: name, symbol and uri are required", ErrValidation)
	}
	if len(symbol) > maxSymbolLen {
		return "", fmt.Errorf("%w: symbol longer than %d chars", ErrValidation, maxSymbolLen)
	}

	mint := mintWallet.PublicKey()
	creator := payer.PublicKey()

	instructions := solanago.PriorityFeeInstructions(p.priorityFee, 0)
	instructions = append(instructions, curve.CreateInstruction(creator, mint, creator, name, symbol, uri))

	if initialBuySOL > 0 {
		// The curve account does not exist yet, so the first buy is quoted
		// against the program's initial virtual reserves.
		gross := cmath.TokensForSol(initialVirtualSolReserves, initialVirtualTokenReserves, initialBuySOL)
		if gross == 0 {
			return "", ErrNoLiquidity
		}
		net, _ := cmath.ApplyFees(gross, p.feeBps, p.creatorFeeBps)
		minOut := cmath.ApplySlippage(net, slippageBps)

		payerATA, _, err := solana.FindAssociatedTokenAddress(creator, mint)
		if err != nil {
			return "", err
		}
		instructions = append(instructions,
			associatedtokenaccount.NewCreateInstruction(creator, creator, mint).Build(),
			curve.BuyExactSolInstruction(creator, mint, payerATA, creator, initialBuySOL, minOut))
	}

	sig, err := solanago.SendTransaction(ctx, p.mux.Fastest(), p.wsClient, instructions, creator,
		func(key solana.PublicKey) *solana.PrivateKey {
			switch {
			case key.Equals(creator):
				return &payer.PrivateKey
			case key.Equals(mint):
				return &mintWallet.PrivateKey
			default:
				return nil
			}
		},
	)
	if err != nil {
		return "", err
	}

	p.logger.Info("token created",
		zap.Stringer("mint", mint),
		zap.String("symbol", symbol),
		zap.String("signature", sig.String()),
	)
	return sig.String(), nil
}

// Initial virtual reserves seeded by the program for every new curve.
const (
	initialVirtualSolReserves   = uint64(30_000_000_000)
	initialVirtualTokenReserves = uint64(1_073_000_000_000_000)
)
