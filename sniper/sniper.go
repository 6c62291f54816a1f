// Package sniper reacts to new-asset detections by bundling coordinated
// first buys across the wallet fleet as fast as the relay allows.
package sniper

import (
	"context"
	"errors"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/events"
	"github.com/launchkit/pumpfun-go/fleet"
	"github.com/launchkit/pumpfun-go/jito"
	"github.com/launchkit/pumpfun-go/pump"
	cmath "github.com/launchkit/pumpfun-go/pump/bonding_curve/math"
	"github.com/launchkit/pumpfun-go/risk"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

var (
	// ErrDuplicate rejects a second snipe of the same mint within the
	// dedup window. The first attempt keeps its claim.
	ErrDuplicate = errors.New("snipe already in flight for mint")

	// ErrNoWallets means the fleet had no wallet able to fund the buy.
	ErrNoWallets = errors.New("no eligible wallets")

	// ErrNoTransactions means every wallet failed preparation. The dedup
	// claim is released so a retry can start clean.
	ErrNoTransactions = errors.New("no transactions prepared")

	// ErrRiskRejected blocks a snipe on a critical quick-check verdict.
	ErrRiskRejected = errors.New("risk check rejected asset")
)

const (
	dedupTTL       = 15 * time.Second
	snipesPerSec   = 20 // 50ms between executions
	maxFleetSize   = 20
	maxBundleSlots = jito.MaxBundleSize
)

// NewAssetEvent is the detection input, stamped at observation time so
// attempt latency can be measured end to end.
type NewAssetEvent struct {
	Mint       solana.PublicKey
	Creator    solana.PublicKey
	Name       string
	Symbol     string
	DetectedAt time.Time
}

// Attempt records one snipe execution.
type Attempt struct {
	ID         string
	Mint       solana.PublicKey
	DetectedAt time.Time
	Wallets    int
	BundleID   string
	Outcome    string // "bundled", "fallback" or "failed"
	LatencyMs  int64
}

// Config tunes per-snipe behavior.
type Config struct {
	BuyLamports uint64
	SlippageBps uint64
	TipLamports uint64
}

func DefaultConfig() Config {
	return Config{
		BuyLamports: 100_000_000, // 0.1 SOL per wallet
		SlippageBps: 500,
		TipLamports: jito.RecommendedTipLamports,
	}
}

// Sniper coordinates fleet, risk gate, relay and fallback submission.
type Sniper struct {
	pump     *pump.Pump
	fleet    *fleet.Manager
	relay    *jito.Client
	mux      *solanago.Multiplexer
	analyzer *risk.Analyzer
	bus      *events.Bus
	logger   *zap.Logger
	limiter  ratelimit.Limiter
	cfg      Config

	mu     sync.Mutex
	recent map[solana.PublicKey]time.Time
}

func New(
	p *pump.Pump,
	fleetMgr *fleet.Manager,
	relay *jito.Client,
	mux *solanago.Multiplexer,
	analyzer *risk.Analyzer,
	bus *events.Bus,
	cfg Config,
	logger *zap.Logger,
) *Sniper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sniper{
		pump:     p,
		fleet:    fleetMgr,
		relay:    relay,
		mux:      mux,
		analyzer: analyzer,
		bus:      bus,
		logger:   logger,
		limiter:  ratelimit.New(snipesPerSec),
		cfg:      cfg,
		recent:   make(map[solana.PublicKey]time.Time),
	}
}

// claim reserves the mint for this attempt, rejecting duplicates inside
// the TTL. Expired entries are swept opportunistically.
func (s *Sniper) claim(mint solana.PublicKey) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for m, at := range s.recent {
		if now.Sub(at) > dedupTTL {
			delete(s.recent, m)
		}
	}
	if at, ok := s.recent[mint]; ok && now.Sub(at) <= dedupTTL {
		return ErrDuplicate
	}
	s.recent[mint] = now
	return nil
}

func (s *Sniper) release(mint solana.PublicKey) {
	s.mu.Lock()
	delete(s.recent, mint)
	s.mu.Unlock()
}

// Snipe executes one coordinated buy against a freshly detected asset.
func (s *Sniper) Snipe(ctx context.Context, asset NewAssetEvent) (*Attempt, error) {
	if err := s.claim(asset.Mint); err != nil {
		return nil, err
	}

	s.limiter.Take()

	attempt := &Attempt{
		ID:         uuid.NewString(),
		Mint:       asset.Mint,
		DetectedAt: asset.DetectedAt,
	}

	level := risk.LevelSafe
	if s.analyzer != nil {
		level = s.analyzer.QuickCheck(asset.Mint, asset.Creator, asset.Name, asset.Symbol)
		if level == risk.LevelCritical {
			return s.fail(attempt, ErrRiskRejected, false)
		}
	}

	wallets := s.gateWallets(s.fleet.Eligible(s.cfg.BuyLamports), level)
	if len(wallets) == 0 {
		return s.fail(attempt, ErrNoWallets, false)
	}
	if len(wallets) > maxFleetSize {
		wallets = wallets[:maxFleetSize]
	}
	if len(wallets) > maxBundleSlots {
		wallets = wallets[:maxBundleSlots]
	}

	state, err := s.pump.Cache().Get(ctx, asset.Mint)
	if err != nil {
		return s.fail(attempt, err, true)
	}
	if state.Complete {
		return s.fail(attempt, pump.ErrStaleCurveState, false)
	}

	feeBps, creatorFeeBps := s.pump.FeeSchedule()
	gross := cmath.TokensForSol(state.VirtualSolReserves, state.VirtualTokenReserves, s.cfg.BuyLamports)
	if gross == 0 {
		return s.fail(attempt, pump.ErrNoLiquidity, false)
	}
	net, _ := cmath.ApplyFees(gross, feeBps, creatorFeeBps)
	minOut := cmath.ApplySlippage(net, s.cfg.SlippageBps)

	entries := s.prepare(ctx, wallets, asset.Mint, state.Creator, minOut)
	if len(entries) == 0 {
		return s.fail(attempt, ErrNoTransactions, true)
	}
	attempt.Wallets = len(entries)

	bundle, err := s.relay.SendBundle(ctx, s.mux.Fastest(), entries, s.cfg.TipLamports)
	if err == nil {
		attempt.BundleID = bundle.ID
		attempt.Outcome = "bundled"
	} else {
		s.logger.Warn("bundle submission failed, direct fallback",
			zap.Stringer("mint", asset.Mint), zap.Error(err))
		if fallbackErr := s.fallback(ctx, entries); fallbackErr != nil {
			return s.fail(attempt, fallbackErr, false)
		}
		attempt.Outcome = "fallback"
	}

	attempt.LatencyMs = time.Since(asset.DetectedAt).Milliseconds()
	s.emit(attempt, "")
	s.logger.Info("snipe executed",
		zap.String("attemptID", attempt.ID),
		zap.Stringer("mint", asset.Mint),
		zap.Int("wallets", attempt.Wallets),
		zap.String("outcome", attempt.Outcome),
		zap.Int64("latencyMs", attempt.LatencyMs),
	)
	return attempt, nil
}

// gateWallets applies the per-wallet risk gate. Premium wallets sit out
// assets whose quick verdict comes back high; standard wallets ride
// anything short of critical.
func (s *Sniper) gateWallets(wallets []*fleet.Wallet, level risk.Level) []*fleet.Wallet {
	if level != risk.LevelHigh {
		return wallets
	}
	kept := make([]*fleet.Wallet, 0, len(wallets))
	for _, w := range wallets {
		if w.Record.Premium {
			s.logger.Debug("premium wallet sitting out risky asset",
				zap.String("keyRef", w.Record.KeyRef))
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

// prepare builds one buy entry per wallet concurrently. A wallet that fails
// preparation is dropped without aborting the rest.
func (s *Sniper) prepare(
	ctx context.Context,
	wallets []*fleet.Wallet,
	mint solana.PublicKey,
	creator solana.PublicKey,
	minTokensOut uint64,
) []jito.Entry {
	type prepared struct {
		entry jito.Entry
		err   error
	}
	results := make([]prepared, len(wallets))

	var wg sync.WaitGroup
	for i, w := range wallets {
		wg.Add(1)
		go func(i int, w *fleet.Wallet) {
			defer wg.Done()
			instructions, err := pump.BuyInstruction(
				ctx, s.mux.Fastest(), w.PublicKey(), mint, creator,
				s.cfg.BuyLamports, minTokensOut, pump.DefaultPriorityFee,
			)
			if err != nil {
				results[i] = prepared{err: err}
				return
			}
			results[i] = prepared{entry: jito.Entry{
				Instructions: instructions,
				Payer:        w.PublicKey(),
				Sign:         w.Signer(),
			}}
		}(i, w)
	}
	wg.Wait()

	var entries []jito.Entry
	for i, r := range results {
		if r.err != nil {
			s.logger.Debug("wallet skipped",
				zap.Stringer("wallet", wallets[i].PublicKey()), zap.Error(r.err))
			continue
		}
		entries = append(entries, r.entry)
	}
	return entries
}

// fallback submits the prepared transactions individually, losing
// atomicity but salvaging the attempt.
func (s *Sniper) fallback(ctx context.Context, entries []jito.Entry) error {
	txs := make([]*solana.Transaction, 0, len(entries))
	for _, entry := range entries {
		tx, err := solanago.BuildSignedTransaction(ctx, s.mux.Fastest(), entry.Instructions, entry.Payer, entry.Sign)
		if err != nil {
			continue
		}
		txs = append(txs, tx)
	}
	if len(txs) == 0 {
		return ErrNoTransactions
	}

	results := s.mux.SubmitAll(ctx, txs)
	for _, r := range results {
		if r.Err == nil {
			return nil
		}
	}
	return ErrNoTransactions
}

// fail finalizes an unsuccessful attempt, optionally releasing the dedup
// claim so the mint can be retried.
func (s *Sniper) fail(attempt *Attempt, cause error, releaseClaim bool) (*Attempt, error) {
	if releaseClaim {
		s.release(attempt.Mint)
	}
	attempt.Outcome = "failed"
	attempt.LatencyMs = time.Since(attempt.DetectedAt).Milliseconds()
	s.emit(attempt, cause.Error())
	return attempt, cause
}

func (s *Sniper) emit(attempt *Attempt, errMsg string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Kind: events.KindSnipeExecuted,
		SnipeExecuted: &events.SnipeExecuted{
			AttemptID: attempt.ID,
			Mint:      attempt.Mint,
			Wallets:   attempt.Wallets,
			BundleID:  attempt.BundleID,
			Err:       errMsg,
		},
	})
}
