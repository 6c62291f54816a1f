// Package campaign drives a full launch lifecycle: create the asset, pump
// it through staged buy waves, generate volume, fake organic interest,
// watch for an exit window and extract.
package campaign

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/events"
	"github.com/launchkit/pumpfun-go/fleet"
	"github.com/launchkit/pumpfun-go/jito"
	"github.com/launchkit/pumpfun-go/pump"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

type State string

const (
	StateInit       State = "INIT"
	StatePump       State = "PHASE1_PUMP"
	StateVolume     State = "PHASE2_VOLUME"
	StateOrganic    State = "PHASE3_ORGANIC"
	StateMonitor    State = "MONITOR_EXIT"
	StateExtraction State = "PHASE4_EXTRACTION"
	StateComplete   State = "COMPLETE"
	StateFailed     State = "FAILED"
)

// Config tunes one campaign run.
type Config struct {
	Name   string
	Symbol string
	URI    string

	InitialBuyLamports uint64
	BotBuyMin          uint64
	BotBuyMax          uint64
	SlippageBps        uint64
	TipLamports        uint64

	// MonitorWindow bounds the exit monitor; the time_threshold signal
	// fires at 70% of it.
	MonitorWindow time.Duration

	// ProfitTargets is the take-profit ladder in percent, ascending.
	ProfitTargets []float64

	// TrendingVolume is the turnover, in lamports, the asset should have
	// after the volume phase; falling short triggers an emergency boost.
	TrendingVolume uint64
}

func DefaultConfig() Config {
	return Config{
		InitialBuyLamports: 500_000_000,
		BotBuyMin:          50_000_000,
		BotBuyMax:          200_000_000,
		SlippageBps:        1_000,
		TipLamports:        jito.RecommendedTipLamports,
		MonitorWindow:      10 * time.Minute,
		ProfitTargets:      []float64{30, 50, 80},
		TrendingVolume:     5_000_000_000,
	}
}

// PhaseRecord is one entry of the phase history.
type PhaseRecord struct {
	State     State
	StartedAt time.Time
}

// Result is the terminal campaign outcome.
type Result struct {
	LaunchID         string
	Mint             solana.PublicKey
	Final            State
	PhaseHistory     []PhaseRecord
	CumulativeVolume uint64
	ExitSignal       string
	NetProfit        int64
	ROI              float64
}

// Campaign owns one launch from creation to extraction. Run drives it on a
// single goroutine; all shared components are concurrency-safe.
type Campaign struct {
	pump   *pump.Pump
	fleet  *fleet.Manager
	relay  *jito.Client
	mux    *solanago.Multiplexer
	bus    *events.Bus
	logger *zap.Logger
	cfg    Config

	creator    *solana.Wallet
	mintWallet *solana.Wallet
	mint       solana.PublicKey

	launchID string
	rng      *rand.Rand
	state    State
	history  []PhaseRecord
	roster   []*fleet.Wallet

	volume    uint64
	invested  uint64
	recovered uint64
}

func New(
	p *pump.Pump,
	fleetMgr *fleet.Manager,
	relay *jito.Client,
	mux *solanago.Multiplexer,
	bus *events.Bus,
	creator *solana.Wallet,
	cfg Config,
	logger *zap.Logger,
) *Campaign {
	if logger == nil {
		logger = zap.NewNop()
	}
	mintWallet := solana.NewWallet()
	return &Campaign{
		pump:       p,
		fleet:      fleetMgr,
		relay:      relay,
		mux:        mux,
		bus:        bus,
		logger:     logger,
		cfg:        cfg,
		creator:    creator,
		mintWallet: mintWallet,
		mint:       mintWallet.PublicKey(),
		launchID:   uuid.NewString(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		state:      StateInit,
	}
}

// Run executes the full lifecycle. The campaign fails only when creation or
// the initial pump bundle fails; extraction always runs to COMPLETE
// afterwards, profitable or not.
func (c *Campaign) Run(ctx context.Context) (*Result, error) {
	c.enter(StateInit)

	c.roster = c.fleet.Eligible(c.cfg.BotBuyMax)
	if len(c.roster) == 0 {
		return c.failed(fmt.Errorf("campaign %s: empty fleet", c.launchID))
	}

	sig, err := c.pump.CreateToken(
		ctx, c.creator, c.mintWallet,
		c.cfg.Name, c.cfg.Symbol, c.cfg.URI,
		c.cfg.InitialBuyLamports, c.cfg.SlippageBps,
	)
	if err != nil {
		return c.failed(fmt.Errorf("token creation: %w", err))
	}
	c.invested += c.cfg.InitialBuyLamports
	c.volume += c.cfg.InitialBuyLamports
	c.announce(sig)

	c.enter(StatePump)
	if err := c.phasePump(ctx); err != nil {
		return c.failed(fmt.Errorf("initial pump: %w", err))
	}

	c.enter(StateVolume)
	if err := c.phaseVolume(ctx); err != nil && ctx.Err() != nil {
		return c.failed(err)
	}

	c.enter(StateOrganic)
	if err := c.phaseOrganic(ctx); err != nil && ctx.Err() != nil {
		return c.failed(err)
	}

	c.enter(StateMonitor)
	signal, err := c.monitor(ctx)
	if err != nil {
		return c.failed(err)
	}

	c.enter(StateExtraction)
	if err := c.phaseExtraction(ctx, signal); err != nil && ctx.Err() != nil {
		return c.failed(err)
	}

	c.enter(StateComplete)
	return c.complete(signal), nil
}

func (c *Campaign) enter(next State) {
	prev := c.state
	c.state = next
	c.history = append(c.history, PhaseRecord{State: next, StartedAt: time.Now()})

	c.logger.Info("campaign phase",
		zap.String("launchID", c.launchID),
		zap.Stringer("mint", c.mint),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)
	if c.bus != nil {
		c.bus.Publish(events.Event{
			Kind: events.KindPhaseChanged,
			PhaseChanged: &events.PhaseChanged{
				LaunchID: c.launchID,
				Mint:     c.mint,
				From:     string(prev),
				To:       string(next),
			},
		})
	}
}

func (c *Campaign) announce(signature string) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Kind: events.KindAssetCreated,
		AssetCreated: &events.AssetCreated{
			Mint:      c.mint,
			Creator:   c.creator.PublicKey(),
			Name:      c.cfg.Name,
			Symbol:    c.cfg.Symbol,
			Signature: signature,
		},
	})
}

func (c *Campaign) failed(cause error) (*Result, error) {
	c.enter(StateFailed)
	result := c.result("", StateFailed)
	c.publishCompleted(result)
	return result, cause
}

func (c *Campaign) complete(signal string) *Result {
	result := c.result(signal, StateComplete)
	c.publishCompleted(result)
	return result
}

func (c *Campaign) result(signal string, final State) *Result {
	profit := int64(c.recovered) - int64(c.invested)
	roi := 0.0
	if c.invested > 0 {
		roi = float64(profit) / float64(c.invested)
	}
	return &Result{
		LaunchID:         c.launchID,
		Mint:             c.mint,
		Final:            final,
		PhaseHistory:     c.history,
		CumulativeVolume: c.volume,
		ExitSignal:       signal,
		NetProfit:        profit,
		ROI:              roi,
	}
}

func (c *Campaign) publishCompleted(result *Result) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Kind: events.KindCampaignCompleted,
		CampaignCompleted: &events.CampaignCompleted{
			LaunchID:   result.LaunchID,
			Mint:       result.Mint,
			Final:      string(result.Final),
			ExitSignal: result.ExitSignal,
			NetProfit:  result.NetProfit,
		},
	})
}

// buy routes a bot buy through the client, accounting volume and spend.
func (c *Campaign) buy(ctx context.Context, w *fleet.Wallet, lamports uint64) error {
	wallet := &solana.Wallet{PrivateKey: w.PrivateKey()}
	sig, err := c.pump.Buy(ctx, wallet, c.mint, lamports, c.cfg.SlippageBps)
	if err != nil {
		c.logger.Debug("bot buy failed", zap.Stringer("wallet", w.PublicKey()), zap.Error(err))
		return err
	}
	c.invested += lamports
	c.volume += lamports
	c.trade(w.PublicKey(), "buy", lamports, sig)
	return nil
}

// sellPct sells a percentage of the wallet's current holdings.
func (c *Campaign) sellPct(ctx context.Context, w *fleet.Wallet, pct uint64) error {
	balance, err := c.pump.TokenBalance(ctx, w.PublicKey(), c.mint)
	if err != nil || balance == 0 {
		return err
	}
	tokens := balance * pct / 100
	if tokens == 0 {
		return nil
	}

	wallet := &solana.Wallet{PrivateKey: w.PrivateKey()}
	sig, solOut, err := c.pump.Sell(ctx, wallet, c.mint, tokens, c.cfg.SlippageBps)
	if err != nil {
		c.logger.Debug("bot sell failed", zap.Stringer("wallet", w.PublicKey()), zap.Error(err))
		return err
	}
	c.recovered += solOut
	c.volume += solOut
	c.trade(w.PublicKey(), "sell", tokens, sig)
	return nil
}

func (c *Campaign) trade(wallet solana.PublicKey, side string, amountIn uint64, sig string) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Kind: events.KindTradeExecuted,
		TradeExecuted: &events.TradeExecuted{
			Mint:      c.mint,
			Wallet:    wallet,
			Side:      side,
			AmountIn:  amountIn,
			Signature: sig,
		},
	})
}

// subset picks a random fraction of the roster, at least one wallet.
func (c *Campaign) subset(wallets []*fleet.Wallet, fraction float64) []*fleet.Wallet {
	n := int(float64(len(wallets)) * fraction)
	if n < 1 {
		n = 1
	}
	if n > len(wallets) {
		n = len(wallets)
	}
	shuffled := append([]*fleet.Wallet{}, wallets...)
	c.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func (c *Campaign) randAmount(lo, hi uint64) uint64 {
	if hi <= lo {
		return lo
	}
	return lo + uint64(c.rng.Int63n(int64(hi-lo)))
}

func (c *Campaign) randPct(lo, hi uint64) uint64 {
	return c.randAmount(lo, hi+1)
}

func (c *Campaign) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (c *Campaign) jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(c.rng.Int63n(int64(hi-lo)))
}
