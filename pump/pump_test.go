package pump

import (
	"context"
	"testing"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	curve "github.com/launchkit/pumpfun-go/pump/bonding_curve"
)

func newTestPump(mint solana.PublicKey, state *curve.BondingCurve) *Pump {
	cache := NewCurveCache(nil, zap.NewNop())
	cache.entries[mint] = cacheEntry{state: state, fetchedAt: time.Now()}
	return &Pump{
		logger:        zap.NewNop(),
		cache:         cache,
		priorityFee:   DefaultPriorityFee,
		feeBps:        curve.DefaultFeeBasisPoints,
		creatorFeeBps: curve.DefaultCreatorFeeBasisPoints,
	}
}

func launchState() *curve.BondingCurve {
	return &curve.BondingCurve{
		VirtualSolReserves:   30_000_000_000,
		VirtualTokenReserves: 1_073_000_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		TokenTotalSupply:     1_000_000_000_000_000,
		Creator:              solana.NewWallet().PublicKey(),
	}
}

func TestBuyQuoteLaunchFixture(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	p := newTestPump(mint, launchState())

	quote, err := p.BuyQuote(context.Background(), mint, 1_000_000_000, 500)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000), quote.AmountIn)
	require.Equal(t, uint64(34_093_709_677_420), quote.AmountOut)
	require.Equal(t, uint64(32_389_024_193_549), quote.MinAmountOut)
	require.Equal(t, uint64(34_612_903_225_807), quote.AmountOut+quote.FeeTaken)
}

func TestBuyQuoteValidation(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	p := newTestPump(mint, launchState())

	_, err := p.BuyQuote(context.Background(), mint, 0, 500)
	require.ErrorIs(t, err, ErrValidation)
}

func TestBuyQuoteCompleteCurve(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	state := launchState()
	state.Complete = true
	p := newTestPump(mint, state)

	_, err := p.BuyQuote(context.Background(), mint, 1_000_000_000, 500)
	require.ErrorIs(t, err, ErrStaleCurveState)
}

func TestBuyQuoteNoLiquidity(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	p := newTestPump(mint, &curve.BondingCurve{})

	_, err := p.BuyQuote(context.Background(), mint, 1_000_000_000, 500)
	require.ErrorIs(t, err, ErrNoLiquidity)
}

func TestSellQuoteRoundTripLoses(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	p := newTestPump(mint, launchState())

	buy, err := p.BuyQuote(context.Background(), mint, 1_000_000_000, 0)
	require.NoError(t, err)

	sell, err := p.SellQuote(context.Background(), mint, buy.AmountOut, 0)
	require.NoError(t, err)

	// Fees and truncation guarantee an immediate round trip loses SOL.
	require.Less(t, sell.AmountOut, uint64(1_000_000_000))
	require.Positive(t, sell.AmountOut)
}

func TestSellQuoteCompleteCurve(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	state := launchState()
	state.Complete = true
	p := newTestPump(mint, state)

	_, err := p.SellQuote(context.Background(), mint, 1_000_000, 500)
	require.ErrorIs(t, err, ErrStaleCurveState)
}

func TestCreateTokenValidation(t *testing.T) {
	p := newTestPump(solana.NewWallet().PublicKey(), launchState())
	payer := solana.NewWallet()
	mintWallet := solana.NewWallet()

	_, err := p.CreateToken(context.Background(), payer, mintWallet, "", "TST", "https://example.com", 0, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = p.CreateToken(context.Background(), payer, mintWallet, "Test", "WAYTOOLONGSYM", "https://example.com", 0, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCacheInvalidateForcesRefetch(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	cache := NewCurveCache(nil, zap.NewNop())
	cache.entries[mint] = cacheEntry{state: launchState(), fetchedAt: time.Now()}

	cache.Invalidate(mint)
	_, ok := cache.entries[mint]
	require.False(t, ok)
}
