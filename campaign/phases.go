package campaign

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/fleet"
	"github.com/launchkit/pumpfun-go/jito"
	"github.com/launchkit/pumpfun-go/pump"
)

// phasePump runs the initial pump: 30% of the fleet buying in three waves
// at 40/40/20%. The first wave rides a relay bundle so the pump lands
// atomically right behind creation; its failure fails the campaign.
func (c *Campaign) phasePump(ctx context.Context) error {
	bots := c.subset(c.roster, 0.30)
	waves := splitWaves(bots, []float64{0.40, 0.40, 0.20})

	if err := c.bundledWave(ctx, waves[0]); err != nil {
		return err
	}

	for _, wave := range waves[1:] {
		for _, w := range wave {
			if err := c.sleep(ctx, c.jitter(50*time.Millisecond, 400*time.Millisecond)); err != nil {
				return err
			}
			c.buy(ctx, w, c.randAmount(c.cfg.BotBuyMin, c.cfg.BotBuyMax))
		}
	}
	return nil
}

// bundledWave submits one wave as an atomic bundle.
func (c *Campaign) bundledWave(ctx context.Context, wave []*fleet.Wallet) error {
	if len(wave) > jito.MaxBundleSize {
		wave = wave[:jito.MaxBundleSize]
	}
	if len(wave) == 0 {
		return fmt.Errorf("empty pump wave")
	}

	state, err := c.pump.Cache().Get(ctx, c.mint)
	if err != nil {
		return err
	}

	var entries []jito.Entry
	var spends []uint64
	for _, w := range wave {
		amount := c.randAmount(c.cfg.BotBuyMin, c.cfg.BotBuyMax)
		quote, err := c.pump.BuyQuote(ctx, c.mint, amount, c.cfg.SlippageBps)
		if err != nil {
			continue
		}
		instructions, err := pump.BuyInstruction(
			ctx, c.mux.Fastest(), w.PublicKey(), c.mint, state.Creator,
			amount, quote.MinAmountOut, pump.DefaultPriorityFee,
		)
		if err != nil {
			continue
		}
		entries = append(entries, jito.Entry{
			Instructions: instructions,
			Payer:        w.PublicKey(),
			Sign:         w.Signer(),
		})
		spends = append(spends, amount)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no wave transactions prepared")
	}

	bundle, err := c.relay.SendBundle(ctx, c.mux.Fastest(), entries, c.cfg.TipLamports)
	if err != nil {
		return err
	}

	for _, amount := range spends {
		c.invested += amount
		c.volume += amount
	}
	c.logger.Info("pump wave bundled",
		zap.String("launchID", c.launchID),
		zap.String("bundleID", bundle.ID),
		zap.Int("wallets", len(entries)),
	)
	return nil
}

// phaseVolume churns turnover: three cycles over a rotating 60% subset,
// each bot buying small and selling back 20-50% shortly after. Falling
// short of the trending threshold triggers one emergency boost cycle.
func (c *Campaign) phaseVolume(ctx context.Context) error {
	for cycle := 0; cycle < 3; cycle++ {
		if err := c.volumeCycle(ctx, 0.60); err != nil {
			return err
		}
	}

	if c.volume < c.cfg.TrendingVolume {
		c.logger.Info("below trending volume, boosting",
			zap.String("launchID", c.launchID),
			zap.Uint64("volume", c.volume),
			zap.Uint64("target", c.cfg.TrendingVolume),
		)
		return c.volumeCycle(ctx, 0.40)
	}
	return nil
}

func (c *Campaign) volumeCycle(ctx context.Context, fraction float64) error {
	smallMax := (c.cfg.BotBuyMin + c.cfg.BotBuyMax) / 2
	for _, w := range c.subset(c.roster, fraction) {
		if err := c.buy(ctx, w, c.randAmount(c.cfg.BotBuyMin, smallMax)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		if err := c.sleep(ctx, c.jitter(500*time.Millisecond, 2*time.Second)); err != nil {
			return err
		}
		c.sellPct(ctx, w, c.randPct(20, 50))
	}
	return nil
}

// phaseOrganic mimics organic discovery: a quiet pause, one or two whale
// entries with partial resale, staggered social-proof waves and a closing
// FOMO burst over a random 30% of the fleet.
func (c *Campaign) phaseOrganic(ctx context.Context) error {
	if err := c.sleep(ctx, c.jitter(20*time.Second, 40*time.Second)); err != nil {
		return err
	}

	whales := c.subset(c.roster, 0.10)
	if len(whales) > 2 {
		whales = whales[:2]
	}
	for _, w := range whales {
		if err := c.buy(ctx, w, c.randAmount(3*c.cfg.BotBuyMax, 5*c.cfg.BotBuyMax)); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.sleep(ctx, c.jitter(2*time.Second, 5*time.Second)); err != nil {
			return err
		}
		c.sellPct(ctx, w, 30)
	}

	proofWaves := 2 + c.rng.Intn(2)
	for i := 0; i < proofWaves; i++ {
		for _, w := range c.subset(c.roster, 0.20) {
			c.buy(ctx, w, c.randAmount(c.cfg.BotBuyMin, c.cfg.BotBuyMax))
		}
		if err := c.sleep(ctx, c.jitter(2*time.Second, 15*time.Second)); err != nil {
			return err
		}
	}

	for _, w := range c.subset(c.roster, 0.30) {
		if err := c.sleep(ctx, c.jitter(50*time.Millisecond, 200*time.Millisecond)); err != nil {
			return err
		}
		c.buy(ctx, w, c.randAmount(c.cfg.BotBuyMin, c.cfg.BotBuyMax))
	}
	return nil
}

// phaseExtraction unwinds per the exit strategy: the creator sells a share
// of holdings across spaced waves, then the bots follow shuffled in
// quarter-fleet batches.
func (c *Campaign) phaseExtraction(ctx context.Context, signal string) error {
	strategy := strategyFor(signal)

	creatorHold, err := c.pump.TokenBalance(ctx, c.creator.PublicKey(), c.mint)
	if err == nil && creatorHold > 0 {
		perWave := creatorHold * strategy.CreatorSellPct / 100 / uint64(strategy.CreatorWaves)
		for wave := 0; wave < strategy.CreatorWaves && perWave > 0; wave++ {
			sig, solOut, err := c.pump.Sell(ctx, c.creator, c.mint, perWave, c.cfg.SlippageBps)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Warn("creator sell wave failed", zap.Int("wave", wave), zap.Error(err))
			} else {
				c.recovered += solOut
				c.volume += solOut
				c.trade(c.creator.PublicKey(), "sell", perWave, sig)
			}
			if wave < strategy.CreatorWaves-1 {
				if err := c.sleep(ctx, c.jitter(15*time.Second, 30*time.Second)); err != nil {
					return err
				}
			}
		}
	}

	bots := c.subset(c.roster, 1.0)
	batchSize := (len(bots) + 3) / 4
	for start := 0; start < len(bots); start += batchSize {
		end := start + batchSize
		if end > len(bots) {
			end = len(bots)
		}
		for _, w := range bots[start:end] {
			c.sellPct(ctx, w, strategy.BotSellPct)
		}
		if end < len(bots) {
			if err := c.sleep(ctx, strategy.BatchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitWaves partitions wallets by the given fractions, keeping every
// wallet in exactly one wave.
func splitWaves(wallets []*fleet.Wallet, fractions []float64) [][]*fleet.Wallet {
	waves := make([][]*fleet.Wallet, len(fractions))
	start := 0
	for i, fraction := range fractions {
		n := int(float64(len(wallets)) * fraction)
		if n < 1 {
			n = 1
		}
		if i == len(fractions)-1 || start+n > len(wallets) {
			n = len(wallets) - start
		}
		if n < 0 {
			n = 0
		}
		waves[i] = wallets[start : start+n]
		start += n
	}
	return waves
}
