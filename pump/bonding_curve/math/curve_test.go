package math

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/launchkit/pumpfun-go/pump/bonding_curve"
)

const (
	launchVirtualSol    = uint64(30_000_000_000)
	launchVirtualTokens = uint64(1_073_000_000_000_000)
)

func TestTokensForSolLaunchFixture(t *testing.T) {
	out := TokensForSol(launchVirtualSol, launchVirtualTokens, 1_000_000_000)
	require.Equal(t, uint64(34_612_903_225_807), out)

	net, fee := ApplyFees(out, 100, 50)
	require.Equal(t, uint64(34_093_709_677_420), net)
	require.Equal(t, out-net, fee)

	require.Equal(t, uint64(32_389_024_193_549), ApplySlippage(net, 500))
}

func TestQuoteZeroInputs(t *testing.T) {
	require.Zero(t, Quote(0, launchVirtualTokens, 1))
	require.Zero(t, Quote(launchVirtualSol, 0, 1))
	require.Zero(t, Quote(launchVirtualSol, launchVirtualTokens, 0))
}

func TestQuoteMonotonic(t *testing.T) {
	var prev uint64
	for _, in := range []uint64{1_000_000, 10_000_000, 1_000_000_000, 50_000_000_000, 1 << 62} {
		out := TokensForSol(launchVirtualSol, launchVirtualTokens, in)
		require.Greater(t, out, prev, "input %d", in)
		require.Less(t, out, launchVirtualTokens)
		prev = out
	}
}

func TestQuoteConservesProduct(t *testing.T) {
	for _, in := range []uint64{1, 999, 1_000_000_000, 1 << 40} {
		out := Quote(launchVirtualSol, launchVirtualTokens, in)

		before := new(big.Int).Mul(
			new(big.Int).SetUint64(launchVirtualSol),
			new(big.Int).SetUint64(launchVirtualTokens),
		)
		after := new(big.Int).Mul(
			new(big.Int).SetUint64(launchVirtualSol+in),
			new(big.Int).SetUint64(launchVirtualTokens-out),
		)
		// Truncation only ever leaves value in the pool.
		require.GreaterOrEqual(t, after.Cmp(before), 0, "input %d", in)
	}
}

func TestApplyFees(t *testing.T) {
	net, fee := ApplyFees(10_000, 100, 50)
	require.Equal(t, uint64(9_850), net)
	require.Equal(t, uint64(150), fee)

	net, fee = ApplyFees(10_000, 0, 0)
	require.Equal(t, uint64(10_000), net)
	require.Zero(t, fee)
}

func TestApplySlippageBounds(t *testing.T) {
	require.Equal(t, uint64(9_500), ApplySlippage(10_000, 500))
	require.Equal(t, uint64(10_000), ApplySlippage(10_000, 0))

	// Floors at 1 instead of demanding nothing.
	require.Equal(t, uint64(1), ApplySlippage(1, 500))

	// A full tolerance is the only way to get zero.
	require.Zero(t, ApplySlippage(10_000, 10_000))
	require.Zero(t, ApplySlippage(10_000, 20_000))
}

func TestPrice(t *testing.T) {
	state := &bonding_curve.BondingCurve{
		VirtualSolReserves:   launchVirtualSol,
		VirtualTokenReserves: launchVirtualTokens,
	}
	price := Price(state)
	require.True(t, price.IsPositive())

	// 30 SOL over 1073M tokens.
	require.Equal(t, "0.000000027958993476", price.StringFixed(18))

	require.True(t, Price(nil).IsZero())
}

func TestCurveProgress(t *testing.T) {
	state := &bonding_curve.BondingCurve{
		TokenTotalSupply:  1_000_000_000_000_000,
		RealTokenReserves: 750_000_000_000_000,
	}
	require.Equal(t, "0.25", CurveProgress(state).String())
	require.True(t, CurveProgress(nil).IsZero())
}
