package bonding_curve

import (
	"errors"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestBondingCurveRoundTrip(t *testing.T) {
	creator := solanago.NewWallet().PublicKey()
	state := &BondingCurve{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		RealSolReserves:      12_345,
		TokenTotalSupply:     1_000_000_000_000_000,
		Complete:             false,
		Creator:              creator,
	}

	raw, err := state.Encode()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), MinCurveAccountSize)

	decoded, err := ParseBondingCurve(raw)
	require.NoError(t, err)
	require.Equal(t, state, decoded)
}

func TestParseBondingCurveComplete(t *testing.T) {
	state := &BondingCurve{
		VirtualTokenReserves: 1,
		VirtualSolReserves:   1,
		Complete:             true,
	}
	raw, err := state.Encode()
	require.NoError(t, err)

	decoded, err := ParseBondingCurve(raw)
	require.NoError(t, err)
	require.True(t, decoded.Complete)
}

func TestParseBondingCurveMalformed(t *testing.T) {
	for _, size := range []int{0, 8, MinCurveAccountSize - 1} {
		_, err := ParseBondingCurve(make([]byte, size))
		require.Error(t, err, "size %d", size)
		require.True(t, errors.Is(err, ErrMalformedAccount))
	}
}
