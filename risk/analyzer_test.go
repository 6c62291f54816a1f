package risk

import (
	"context"
	"testing"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	curve "github.com/launchkit/pumpfun-go/pump/bonding_curve"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(nil, NewMarketClient(""), zap.NewNop())
}

func TestAnalyzeBlacklistedMint(t *testing.T) {
	a := newTestAnalyzer()
	mint := solana.NewWallet().PublicKey()
	a.Blacklist(mint)

	assessment, err := a.Analyze(context.Background(), mint, "Token", "TKN")
	require.NoError(t, err)
	require.Equal(t, LevelCritical, assessment.Level)
	require.Equal(t, 100.0, assessment.Score)
	require.Equal(t, 100.0, assessment.Confidence)
	require.NotEmpty(t, assessment.Reasons)
}

func TestLevelThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{100, LevelCritical},
		{80, LevelCritical},
		{79.9, LevelHigh},
		{60, LevelHigh},
		{59.9, LevelMedium},
		{40, LevelMedium},
		{39.9, LevelLow},
		{20, LevelLow},
		{19.9, LevelSafe},
		{0, LevelSafe},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, levelFor(tc.score), "score %v", tc.score)
	}
}

func TestWeightsSumToOne(t *testing.T) {
	all := Factors{Age: 100, Creator: 100, Liquidity: 100, Concentration: 100, Contract: 100, Social: 100, Market: 100}
	require.InDelta(t, 100.0, all.weighted(), 1e-9)
	require.Zero(t, Factors{}.weighted())
}

func TestScoreAgeBuckets(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want float64
	}{
		{30 * time.Second, 80},
		{2 * time.Minute, 60},
		{10 * time.Minute, 40},
		{time.Hour, 20},
		{12 * time.Hour, 10},
		{48 * time.Hour, 5},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, scoreAge(tc.age, true), "age %v", tc.age)
	}
	require.Equal(t, 60.0, scoreAge(0, false))
}

func TestScoreLiquidityBuckets(t *testing.T) {
	require.Equal(t, 100.0, scoreLiquidity(MarketSnapshot{}))

	snap := MarketSnapshot{FromDexscreener: true}
	cases := []struct {
		usd  float64
		want float64
	}{
		{0, 100},
		{500, 80},
		{5_000, 60},
		{25_000, 40},
		{75_000, 20},
		{250_000, 10},
	}
	for _, tc := range cases {
		snap.LiquidityUSD = tc.usd
		require.Equal(t, tc.want, scoreLiquidity(snap), "liquidity %v", tc.usd)
	}
}

func TestScoreConcentrationBuckets(t *testing.T) {
	cases := []struct {
		pct  float64
		want float64
	}{
		{60, 90},
		{40, 70},
		{25, 50},
		{15, 30},
		{5, 10},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, scoreConcentration(tc.pct, true), "pct %v", tc.pct)
	}
	require.Equal(t, 50.0, scoreConcentration(0, false))
}

func TestSuspiciousName(t *testing.T) {
	require.True(t, suspiciousName("ElonDoge", "ED"))
	require.True(t, suspiciousName("Safe Presale Gem", "SPG"))
	require.True(t, suspiciousName("Token12345", "TKN"))
	require.False(t, suspiciousName("Orca", "ORCA"))
}

func TestScoreConfidenceFloor(t *testing.T) {
	a := newTestAnalyzer()
	mint := solana.NewWallet().PublicKey()
	g := &gathered{state: &curve.BondingCurve{Creator: solana.NewWallet().PublicKey()}}

	assessment := a.score(mint, "Token", "TKN", g)

	// Every source missing deducts 75 points, but confidence never drops
	// below the floor.
	require.Equal(t, confidenceFloor, assessment.Confidence)
	require.Equal(t, levelFor(assessment.Score), assessment.Level)
}

func TestQuickCheck(t *testing.T) {
	a := newTestAnalyzer()
	mint := solana.NewWallet().PublicKey()
	creator := solana.NewWallet().PublicKey()

	require.Equal(t, LevelMedium, a.QuickCheck(mint, creator, "Orca", "ORCA"))
	require.Equal(t, LevelHigh, a.QuickCheck(mint, creator, "Guaranteed100x", "G100X"))

	a.Trust(creator)
	require.Equal(t, LevelSafe, a.QuickCheck(mint, creator, "Orca", "ORCA"))

	a.Blacklist(creator)
	require.Equal(t, LevelCritical, a.QuickCheck(mint, creator, "Orca", "ORCA"))
}
