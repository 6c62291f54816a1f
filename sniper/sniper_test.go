package sniper

import (
	"context"
	"testing"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/fleet"
	"github.com/launchkit/pumpfun-go/risk"
)

type emptyRegistry struct{}

func (emptyRegistry) ListEligible(ctx context.Context) ([]fleet.WalletRecord, error) {
	return nil, nil
}

func (emptyRegistry) DecryptedKey(ctx context.Context, keyRef string) ([]byte, error) {
	return nil, nil
}

func newTestSniper(analyzer *risk.Analyzer) *Sniper {
	fleetMgr := fleet.NewManager(emptyRegistry{}, nil, nil, zap.NewNop())
	return New(nil, fleetMgr, nil, nil, analyzer, nil, DefaultConfig(), zap.NewNop())
}

func TestClaimRejectsDuplicateWithinTTL(t *testing.T) {
	s := newTestSniper(nil)
	mint := solana.NewWallet().PublicKey()

	require.NoError(t, s.claim(mint))
	require.ErrorIs(t, s.claim(mint), ErrDuplicate)

	// A different mint is unaffected.
	require.NoError(t, s.claim(solana.NewWallet().PublicKey()))
}

func TestClaimExpiresAfterTTL(t *testing.T) {
	s := newTestSniper(nil)
	mint := solana.NewWallet().PublicKey()

	require.NoError(t, s.claim(mint))

	s.mu.Lock()
	s.recent[mint] = time.Now().Add(-dedupTTL - time.Second)
	s.mu.Unlock()

	require.NoError(t, s.claim(mint))
}

func TestReleaseClearsClaim(t *testing.T) {
	s := newTestSniper(nil)
	mint := solana.NewWallet().PublicKey()

	require.NoError(t, s.claim(mint))
	s.release(mint)
	require.NoError(t, s.claim(mint))
}

func TestSnipeDuplicateHasNoSideEffects(t *testing.T) {
	s := newTestSniper(nil)
	asset := NewAssetEvent{Mint: solana.NewWallet().PublicKey(), DetectedAt: time.Now()}

	first, err := s.Snipe(context.Background(), asset)
	require.ErrorIs(t, err, ErrNoWallets)
	require.Equal(t, "failed", first.Outcome)

	// The claim from the first attempt still holds.
	second, err := s.Snipe(context.Background(), asset)
	require.ErrorIs(t, err, ErrDuplicate)
	require.Nil(t, second)
}

func TestGateWalletsFiltersPremiumOnHighRisk(t *testing.T) {
	s := newTestSniper(nil)
	wallets := []*fleet.Wallet{
		{Record: fleet.WalletRecord{KeyRef: "std"}},
		{Record: fleet.WalletRecord{KeyRef: "vip", Premium: true}},
	}

	kept := s.gateWallets(wallets, risk.LevelHigh)
	require.Len(t, kept, 1)
	require.Equal(t, "std", kept[0].Record.KeyRef)

	// Anything below high keeps the full fleet.
	require.Len(t, s.gateWallets(wallets, risk.LevelMedium), 2)
	require.Len(t, s.gateWallets(wallets, risk.LevelSafe), 2)
}

func TestGateWalletsAllPremiumLeavesNone(t *testing.T) {
	s := newTestSniper(nil)
	wallets := []*fleet.Wallet{
		{Record: fleet.WalletRecord{KeyRef: "vip1", Premium: true}},
		{Record: fleet.WalletRecord{KeyRef: "vip2", Premium: true}},
	}
	require.Empty(t, s.gateWallets(wallets, risk.LevelHigh))
}

func TestSnipeRejectsBlacklistedMint(t *testing.T) {
	analyzer := risk.NewAnalyzer(nil, risk.NewMarketClient(""), zap.NewNop())
	s := newTestSniper(analyzer)

	asset := NewAssetEvent{
		Mint:       solana.NewWallet().PublicKey(),
		Creator:    solana.NewWallet().PublicKey(),
		DetectedAt: time.Now(),
	}
	analyzer.Blacklist(asset.Mint)

	attempt, err := s.Snipe(context.Background(), asset)
	require.ErrorIs(t, err, ErrRiskRejected)
	require.Equal(t, "failed", attempt.Outcome)
}
