// Package math implements the constant product quoting used by the bonding
// curve. All quoting is integer-only with truncating division, matching
// on-chain semantics; intermediates go through big.Int so the reserve
// product cannot overflow.
package math

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/launchkit/pumpfun-go/pump/bonding_curve"
)

const basisPointMax = 10_000

// Quote returns the output amount for a constant product swap:
// out = reserveOut - (reserveIn*reserveOut)/(reserveIn+amountIn).
// Zero reserves or zero input quote to zero.
func Quote(reserveIn, reserveOut, amountIn uint64) uint64 {
	if reserveIn == 0 || reserveOut == 0 || amountIn == 0 {
		return 0
	}

	k := new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), new(big.Int).SetUint64(reserveOut))
	newReserveIn := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), new(big.Int).SetUint64(amountIn))
	newReserveOut := new(big.Int).Quo(k, newReserveIn)

	return reserveOut - newReserveOut.Uint64()
}

// TokensForSol quotes the token output for a SOL input before fees.
func TokensForSol(virtualSolReserves, virtualTokenReserves, solIn uint64) uint64 {
	return Quote(virtualSolReserves, virtualTokenReserves, solIn)
}

// SolForTokens quotes the SOL output for a token input before fees.
func SolForTokens(virtualSolReserves, virtualTokenReserves, tokensIn uint64) uint64 {
	return Quote(virtualTokenReserves, virtualSolReserves, tokensIn)
}

// ApplyFees deducts the protocol and creator fee from an amount.
func ApplyFees(amount, feeBps, creatorFeeBps uint64) (net uint64, fee uint64) {
	total := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(feeBps+creatorFeeBps))
	fee = new(big.Int).Quo(total, big.NewInt(basisPointMax)).Uint64()
	return amount - fee, fee
}

// ApplySlippage converts a quoted amount into the minimum acceptable amount
// for a given tolerance. The result is floored at 1 so the transaction can
// never demand a zero output, except when the tolerance itself is a full
// 10000 bps or more.
func ApplySlippage(amount, slippageBps uint64) uint64 {
	if slippageBps >= basisPointMax {
		return 0
	}
	min := new(big.Int).Mul(new(big.Int).SetUint64(amount), new(big.Int).SetUint64(basisPointMax-slippageBps))
	min.Quo(min, big.NewInt(basisPointMax))
	if min.Sign() <= 0 {
		return 1
	}
	return min.Uint64()
}

// Price returns the spot price of the curve in SOL per whole token.
func Price(state *bonding_curve.BondingCurve) decimal.Decimal {
	if state == nil || state.VirtualTokenReserves == 0 {
		return decimal.Zero
	}
	sol := decimal.NewFromUint64(state.VirtualSolReserves).
		Div(decimal.NewFromInt(bonding_curve.LamportsPerSOL))
	tokens := decimal.NewFromUint64(state.VirtualTokenReserves).
		Div(decimal.New(1, bonding_curve.TokenDecimals))
	return sol.DivRound(tokens, 18)
}

// CurveProgress reports how much of the sellable supply has been bought,
// in [0,1].
func CurveProgress(state *bonding_curve.BondingCurve) decimal.Decimal {
	if state == nil || state.TokenTotalSupply == 0 {
		return decimal.Zero
	}
	sold := decimal.NewFromUint64(state.TokenTotalSupply - state.RealTokenReserves)
	return sold.DivRound(decimal.NewFromUint64(state.TokenTotalSupply), 6)
}
