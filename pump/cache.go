package pump

import (
	"context"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/backoff"
	curve "github.com/launchkit/pumpfun-go/pump/bonding_curve"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

const (
	curveCacheTTL      = 2 * time.Second
	curveFetchAttempts = 3
	curveFetchBackoff  = 200 * time.Millisecond
)

// CurveCache is a short-TTL cache of curve-state snapshots. It is owned by
// the Pump client; everyone else reads through Get.
type CurveCache struct {
	mux    *solanago.Multiplexer
	logger *zap.Logger

	mu      sync.Mutex
	entries map[solana.PublicKey]cacheEntry
}

type cacheEntry struct {
	state     *curve.BondingCurve
	fetchedAt time.Time
}

func NewCurveCache(mux *solanago.Multiplexer, logger *zap.Logger) *CurveCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurveCache{
		mux:     mux,
		logger:  logger,
		entries: make(map[solana.PublicKey]cacheEntry),
	}
}

// Get returns a fresh snapshot for the mint, serving from cache within the
// TTL and otherwise fetching live with bounded retry.
func (c *CurveCache) Get(ctx context.Context, mint solana.PublicKey) (*curve.BondingCurve, error) {
	c.mu.Lock()
	entry, ok := c.entries[mint]
	c.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < curveCacheTTL {
		return entry.state, nil
	}
	return c.Refresh(ctx, mint)
}

// Refresh bypasses the TTL and fetches the curve state live, retrying up to
// 3 times with a growing delay.
func (c *CurveCache) Refresh(ctx context.Context, mint solana.PublicKey) (*curve.BondingCurve, error) {
	var state *curve.BondingCurve
	err := backoff.Retry(ctx, curveFetchAttempts, backoff.Linear(curveFetchBackoff, curveFetchAttempts*curveFetchBackoff), func() error {
		var err error
		state, err = curve.FetchBondingCurve(ctx, c.mux.Fastest(), mint)
		return err
	})
	if err != nil {
		c.logger.Warn("curve fetch failed", zap.Stringer("mint", mint), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.entries[mint] = cacheEntry{state: state, fetchedAt: time.Now()}
	c.mu.Unlock()
	return state, nil
}

// Invalidate drops the cached snapshot for a mint.
func (c *CurveCache) Invalidate(mint solana.PublicKey) {
	c.mu.Lock()
	delete(c.entries, mint)
	c.mu.Unlock()
}
