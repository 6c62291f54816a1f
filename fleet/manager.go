package fleet

import (
	"context"
	"fmt"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/events"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

// Manager owns the fleet map. It is the only writer; everyone else reads
// snapshots through Eligible.
type Manager struct {
	registry Registry
	mux      *solanago.Multiplexer
	logger   *zap.Logger
	bus      *events.Bus

	mu      sync.Mutex
	wallets map[string]*Wallet
	evicted map[string]struct{}
}

func NewManager(registry Registry, mux *solanago.Multiplexer, bus *events.Bus, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		registry: registry,
		mux:      mux,
		logger:   logger,
		bus:      bus,
		wallets:  make(map[string]*Wallet),
		evicted:  make(map[string]struct{}),
	}
}

// Run drives the refresh loop until ctx is cancelled. Cycles are spaced at
// least 1.5s apart; a failed cycle logs and retries after 5s.
func (m *Manager) Run(ctx context.Context) error {
	for {
		started := time.Now()

		var delay time.Duration
		if err := m.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.Warn("fleet refresh cycle failed", zap.Error(err))
			delay = cycleRetryDelay
		} else if remaining := refreshSpacing - time.Since(started); remaining > 0 {
			delay = remaining
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// Refresh runs one cycle: list records, admit new wallets by decrypting
// their keys, retire wallets the registry stopped listing, and update
// stale balances in one batch call.
func (m *Manager) Refresh(ctx context.Context) error {
	records, err := m.registry.ListEligible(ctx)
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}

	listed := make(map[string]struct{}, len(records))
	for _, record := range records {
		listed[record.KeyRef] = struct{}{}

		m.mu.Lock()
		_, known := m.wallets[record.KeyRef]
		_, banned := m.evicted[record.KeyRef]
		m.mu.Unlock()
		if known || banned {
			continue
		}

		wallet, err := m.admit(ctx, record)
		if err != nil {
			m.evict(record, err)
			continue
		}

		m.mu.Lock()
		m.wallets[record.KeyRef] = wallet
		m.mu.Unlock()
	}

	// The active set mirrors the registry: a wallet that dropped off the
	// list is retired. Unlike eviction this is reversible; the registry
	// can list it again later.
	m.mu.Lock()
	for keyRef, w := range m.wallets {
		if _, ok := listed[keyRef]; ok {
			continue
		}
		delete(m.wallets, keyRef)
		m.logger.Info("wallet retired",
			zap.String("keyRef", keyRef),
			zap.String("label", w.Record.Label),
		)
	}
	m.mu.Unlock()

	return m.refreshBalances(ctx)
}

// admit decrypts and decodes a wallet's signing key.
func (m *Manager) admit(ctx context.Context, record WalletRecord) (*Wallet, error) {
	material, err := m.registry.DecryptedKey(ctx, record.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyDecryption, err)
	}

	raw, err := base58.Decode(string(material))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadKeyMaterial, err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrBadKeyMaterial, len(raw))
	}

	return &Wallet{
		Record: record,
		key:    solana.PrivateKey(raw),
	}, nil
}

// evict bans a wallet permanently. Key problems never clear on retry so
// there is no point re-attempting the decrypt every cycle.
func (m *Manager) evict(record WalletRecord, cause error) {
	m.mu.Lock()
	m.evicted[record.KeyRef] = struct{}{}
	delete(m.wallets, record.KeyRef)
	m.mu.Unlock()

	m.logger.Warn("wallet evicted",
		zap.String("keyRef", record.KeyRef),
		zap.String("label", record.Label),
		zap.Error(cause),
	)
}

// refreshBalances updates wallets whose cached balance is older than 5s,
// in a single multi-account fetch.
func (m *Manager) refreshBalances(ctx context.Context) error {
	m.mu.Lock()
	var stale []*Wallet
	for _, w := range m.wallets {
		if time.Since(w.balanceAt) >= balanceCacheTTL {
			stale = append(stale, w)
		}
	}
	m.mu.Unlock()
	if len(stale) == 0 {
		return nil
	}

	addresses := make([]solana.PublicKey, len(stale))
	for i, w := range stale {
		addresses[i] = w.PublicKey()
	}

	out, err := solanago.GetMultipleAccountInfo(ctx, m.mux.Fastest(), addresses)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}

	now := time.Now()
	m.mu.Lock()
	for i, info := range out.Value {
		w := stale[i]
		prev := w.balance.Load()
		var lamports uint64
		if info != nil {
			lamports = info.Lamports
		}
		w.balance.Store(lamports)
		w.balanceAt = now

		if m.bus != nil && prev == 0 && lamports > 0 {
			m.bus.Publish(events.Event{
				Kind: events.KindWalletFunded,
				WalletFunded: &events.WalletFunded{
					Wallet:   w.PublicKey(),
					Lamports: lamports,
				},
			})
		}
	}
	m.mu.Unlock()
	return nil
}

// Eligible returns a snapshot of wallets able to spend maxSpend plus the
// fee buffer. The returned handles are stable; balances reflect the last
// refresh.
func (m *Manager) Eligible(maxSpend uint64) []*Wallet {
	need := maxSpend + DefaultSpendBuffer

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Wallet
	for _, w := range m.wallets {
		if w.balance.Load() >= need {
			out = append(out, w)
		}
	}
	return out
}

// Size reports tracked and evicted counts, for diagnostics.
func (m *Manager) Size() (tracked, evicted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wallets), len(m.evicted)
}
