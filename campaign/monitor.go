package campaign

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cmath "github.com/launchkit/pumpfun-go/pump/bonding_curve/math"
)

// Exit signals raised by the monitor.
const (
	SignalPricePeak        = "price_peak"
	SignalVolumeStagnation = "volume_stagnation"
	SignalProfitTarget     = "profit_target"
	SignalTimeThreshold    = "time_threshold"
)

const (
	peakDropExit     = 0.15 // fraction fallen from peak
	stagnantMove     = 0.01 // per-sample move below this counts as stagnant
	stagnantSamples  = 5
	rungGiveBack     = 10.0 // percent of profit surrendered after a rung
	timeThresholdPct = 0.70

	activeSampleDelay = 2 * time.Second
	idleSampleDelay   = 5 * time.Second
	activityWindow    = 30 * time.Second
)

// ExtractionStrategy parameterizes phase 4 per exit signal.
type ExtractionStrategy struct {
	CreatorSellPct uint64
	CreatorWaves   int
	BotSellPct     uint64
	BatchDelay     time.Duration
}

var exitStrategies = map[string]ExtractionStrategy{
	SignalPricePeak:        {CreatorSellPct: 50, CreatorWaves: 4, BotSellPct: 60, BatchDelay: 20 * time.Second},
	SignalVolumeStagnation: {CreatorSellPct: 40, CreatorWaves: 3, BotSellPct: 50, BatchDelay: 30 * time.Second},
	SignalProfitTarget:     {CreatorSellPct: 50, CreatorWaves: 3, BotSellPct: 60, BatchDelay: 25 * time.Second},
	SignalTimeThreshold:    {CreatorSellPct: 30, CreatorWaves: 2, BotSellPct: 40, BatchDelay: 40 * time.Second},
}

func strategyFor(signal string) ExtractionStrategy {
	if s, ok := exitStrategies[signal]; ok {
		return s
	}
	return exitStrategies[SignalTimeThreshold]
}

// monitor samples the curve price until an exit signal fires. Sampling is
// adaptive: 2s while the price is moving, 5s once it goes quiet.
func (c *Campaign) monitor(ctx context.Context) (string, error) {
	start := time.Now()
	deadline := time.Duration(float64(c.cfg.MonitorWindow) * timeThresholdPct)

	var entry, peak, last decimal.Decimal
	stagnant := 0
	rung := 0
	rungHit := -1
	lastActive := start

	for {
		if time.Since(start) >= deadline {
			return c.signal(SignalTimeThreshold, "monitor window 70% elapsed"), nil
		}

		state, err := c.pump.Cache().Refresh(ctx, c.mint)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if err := c.sleep(ctx, idleSampleDelay); err != nil {
				return "", err
			}
			continue
		}
		price := cmath.Price(state)
		if price.IsZero() {
			if err := c.sleep(ctx, idleSampleDelay); err != nil {
				return "", err
			}
			continue
		}
		if entry.IsZero() {
			entry, peak, last = price, price, price
			if err := c.sleep(ctx, activeSampleDelay); err != nil {
				return "", err
			}
			continue
		}

		if price.GreaterThan(peak) {
			peak = price
		}
		drop, _ := peak.Sub(price).Div(peak).Float64()
		if drop >= peakDropExit {
			return c.signal(SignalPricePeak, "price fell from peak"), nil
		}

		move, _ := price.Sub(last).Div(last).Abs().Float64()
		if move < stagnantMove {
			stagnant++
			if stagnant >= stagnantSamples {
				return c.signal(SignalVolumeStagnation, "price flat across samples"), nil
			}
		} else {
			stagnant = 0
			lastActive = time.Now()
		}
		last = price

		profitPct, _ := price.Sub(entry).Div(entry).Mul(decimal.NewFromInt(100)).Float64()
		for rung < len(c.cfg.ProfitTargets) && profitPct >= c.cfg.ProfitTargets[rung] {
			rungHit = rung
			rung++
		}
		if rungHit >= 0 {
			if rungHit == len(c.cfg.ProfitTargets)-1 {
				return c.signal(SignalProfitTarget, "final profit rung reached"), nil
			}
			if profitPct <= c.cfg.ProfitTargets[rungHit]-rungGiveBack {
				return c.signal(SignalProfitTarget, "profit pulled back from rung"), nil
			}
		}

		delay := idleSampleDelay
		if time.Since(lastActive) < activityWindow {
			delay = activeSampleDelay
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (c *Campaign) signal(name, detail string) string {
	c.logger.Info("exit signal",
		zap.String("launchID", c.launchID),
		zap.Stringer("mint", c.mint),
		zap.String("signal", name),
		zap.String("detail", detail),
	)
	return name
}
