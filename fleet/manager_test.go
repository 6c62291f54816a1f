package fleet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	solana "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	solanago "github.com/launchkit/pumpfun-go/solana"
)

type stubRegistry struct {
	records      []WalletRecord
	keys         map[string][]byte
	decryptCalls map[string]int
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		keys:         make(map[string][]byte),
		decryptCalls: make(map[string]int),
	}
}

func (r *stubRegistry) addWallet(keyRef string) *solana.Wallet {
	w := solana.NewWallet()
	r.records = append(r.records, WalletRecord{KeyRef: keyRef, Address: w.PublicKey()})
	r.keys[keyRef] = []byte(base58.Encode(w.PrivateKey))
	return w
}

func (r *stubRegistry) addBroken(keyRef string) {
	r.records = append(r.records, WalletRecord{KeyRef: keyRef})
}

func (r *stubRegistry) ListEligible(ctx context.Context) ([]WalletRecord, error) {
	return r.records, nil
}

func (r *stubRegistry) DecryptedKey(ctx context.Context, keyRef string) ([]byte, error) {
	r.decryptCalls[keyRef]++
	key, ok := r.keys[keyRef]
	if !ok {
		return nil, errors.New("hsm unavailable")
	}
	return key, nil
}

func TestAdmitDecodesKey(t *testing.T) {
	registry := newStubRegistry()
	w := registry.addWallet("w1")

	m := NewManager(registry, nil, nil, zap.NewNop())
	wallet, err := m.admit(context.Background(), registry.records[0])
	require.NoError(t, err)
	require.Equal(t, w.PublicKey(), wallet.PublicKey())
}

func TestAdmitRejectsBadMaterial(t *testing.T) {
	registry := newStubRegistry()
	registry.records = append(registry.records, WalletRecord{KeyRef: "short"})
	registry.keys["short"] = []byte(base58.Encode([]byte{1, 2, 3}))

	m := NewManager(registry, nil, nil, zap.NewNop())
	_, err := m.admit(context.Background(), registry.records[0])
	require.ErrorIs(t, err, ErrBadKeyMaterial)
}

func TestRefreshEvictsUndecryptableForever(t *testing.T) {
	registry := newStubRegistry()
	registry.addBroken("broken")

	m := NewManager(registry, nil, nil, zap.NewNop())

	require.NoError(t, m.Refresh(context.Background()))
	tracked, evicted := m.Size()
	require.Zero(t, tracked)
	require.Equal(t, 1, evicted)
	require.Equal(t, 1, registry.decryptCalls["broken"])

	// The eviction is permanent: the next cycle never re-attempts the key.
	require.NoError(t, m.Refresh(context.Background()))
	require.Equal(t, 1, registry.decryptCalls["broken"])
}

func TestEligibleFiltersByBalance(t *testing.T) {
	registry := newStubRegistry()
	registry.addWallet("rich")
	registry.addWallet("poor")

	m := NewManager(registry, nil, nil, zap.NewNop())
	for _, record := range registry.records {
		wallet, err := m.admit(context.Background(), record)
		require.NoError(t, err)
		m.wallets[record.KeyRef] = wallet
	}
	m.wallets["rich"].balance.Store(1_000_000_000)
	m.wallets["poor"].balance.Store(1_000)

	eligible := m.Eligible(100_000_000)
	require.Len(t, eligible, 1)
	require.Equal(t, m.wallets["rich"].PublicKey(), eligible[0].PublicKey())
	require.GreaterOrEqual(t, eligible[0].Balance(), uint64(100_000_000)+DefaultSpendBuffer)
}

func TestRefreshRetiresRevokedWallets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":[{"lamports":1000000000,"owner":"11111111111111111111111111111111","data":["","base64"],"executable":false,"rentEpoch":0}]}}`)
	}))
	defer server.Close()

	registry := newStubRegistry()
	registry.addWallet("w1")

	mux := solanago.NewMultiplexer([]string{server.URL}, zap.NewNop())
	m := NewManager(registry, mux, nil, zap.NewNop())

	require.NoError(t, m.Refresh(context.Background()))
	require.Len(t, m.Eligible(1), 1)

	// The registry revokes the wallet; the next cycle drops it from the
	// active set without touching the eviction list.
	registry.records = nil
	require.NoError(t, m.Refresh(context.Background()))
	require.Empty(t, m.Eligible(1))

	tracked, evicted := m.Size()
	require.Zero(t, tracked)
	require.Zero(t, evicted)

	// Re-listing readmits the wallet, unlike an eviction.
	registry.addWallet("w1")
	require.NoError(t, m.Refresh(context.Background()))
	require.Len(t, m.Eligible(1), 1)
}

func TestBalanceReadDuringRefreshWrite(t *testing.T) {
	registry := newStubRegistry()
	registry.addWallet("w1")

	m := NewManager(registry, nil, nil, zap.NewNop())
	wallet, err := m.admit(context.Background(), registry.records[0])
	require.NoError(t, err)
	m.wallets["w1"] = wallet

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 1000; i++ {
			wallet.balance.Store(uint64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = wallet.Balance()
		}
	}()
	wg.Wait()

	require.Equal(t, uint64(1000), wallet.Balance())
}

func TestSignerOnlyAnswersOwnKey(t *testing.T) {
	registry := newStubRegistry()
	registry.addWallet("w1")

	m := NewManager(registry, nil, nil, zap.NewNop())
	wallet, err := m.admit(context.Background(), registry.records[0])
	require.NoError(t, err)

	sign := wallet.Signer()
	require.NotNil(t, sign(wallet.PublicKey()))
	require.Nil(t, sign(solana.NewWallet().PublicKey()))
}
