package risk

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	curve "github.com/launchkit/pumpfun-go/pump/bonding_curve"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

const (
	gatherTimeout     = 5 * time.Second
	lowCreatorBalance = uint64(100_000_000) // 0.1 SOL

	confidenceFloor = 30.0
)

// Analyzer scores mints. It never returns an error for data-source
// failures; those degrade the confidence instead.
type Analyzer struct {
	mux    *solanago.Multiplexer
	market *MarketClient
	logger *zap.Logger

	mu        sync.RWMutex
	trusted   map[solana.PublicKey]struct{}
	blacklist map[solana.PublicKey]struct{}
}

func NewAnalyzer(mux *solanago.Multiplexer, market *MarketClient, logger *zap.Logger) *Analyzer {
	if market == nil {
		market = NewMarketClient("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		mux:       mux,
		market:    market,
		logger:    logger,
		trusted:   make(map[solana.PublicKey]struct{}),
		blacklist: make(map[solana.PublicKey]struct{}),
	}
}

// Trust marks a creator as known-good; trusted creators score far lower on
// the creator factor.
func (a *Analyzer) Trust(key solana.PublicKey) {
	a.mu.Lock()
	a.trusted[key] = struct{}{}
	a.mu.Unlock()
}

// Blacklist bans a mint or creator outright.
func (a *Analyzer) Blacklist(key solana.PublicKey) {
	a.mu.Lock()
	a.blacklist[key] = struct{}{}
	a.mu.Unlock()
}

func (a *Analyzer) isBlacklisted(key solana.PublicKey) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.blacklist[key]
	return ok
}

func (a *Analyzer) isTrusted(key solana.PublicKey) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.trusted[key]
	return ok
}

// gathered carries the raw inputs collected in parallel before scoring.
type gathered struct {
	state *curve.BondingCurve

	age      time.Duration
	ageKnown bool

	creatorBalance uint64
	creatorKnown   bool

	topHolderPct float64
	holdersKnown bool

	snap MarketSnapshot
}

// Analyze scores a mint. A blacklisted mint or creator short-circuits to
// CRITICAL. When the curve state itself cannot be read, the result degrades
// to HIGH with minimal confidence rather than failing the caller.
func (a *Analyzer) Analyze(ctx context.Context, mint solana.PublicKey, name, symbol string) (*Assessment, error) {
	if a.isBlacklisted(mint) {
		return blacklistedAssessment(mint, "mint is blacklisted"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, gatherTimeout)
	defer cancel()

	state, err := curve.FetchBondingCurve(ctx, a.mux.Fastest(), mint)
	if err != nil {
		a.logger.Warn("risk analysis degraded, curve unreadable",
			zap.Stringer("mint", mint), zap.Error(err))
		return &Assessment{
			Mint:       mint,
			Level:      LevelHigh,
			Score:      70,
			Confidence: 10,
			Reasons:    []string{"curve state unreadable"},
		}, nil
	}
	if a.isBlacklisted(state.Creator) {
		return blacklistedAssessment(mint, "creator is blacklisted"), nil
	}

	g := a.gather(ctx, mint, state)
	return a.score(mint, name, symbol, g), nil
}

// gather collects the factor inputs concurrently; each branch absorbs its
// own failure.
func (a *Analyzer) gather(ctx context.Context, mint solana.PublicKey, state *curve.BondingCurve) *gathered {
	g := &gathered{state: state}
	rpcClient := a.mux.Fastest()

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		if age, ok := a.mintAge(ctx, rpcClient, mint); ok {
			g.age, g.ageKnown = age, true
		}
	}()
	go func() {
		defer wg.Done()
		balance, err := solanago.GetBalance(ctx, rpcClient, state.Creator)
		if err == nil {
			g.creatorBalance, g.creatorKnown = balance, true
		}
	}()
	go func() {
		defer wg.Done()
		if pct, ok := a.topHolder(ctx, rpcClient, mint); ok {
			g.topHolderPct, g.holdersKnown = pct, true
		}
	}()
	go func() {
		defer wg.Done()
		g.snap = a.market.Snapshot(ctx, mint)
	}()

	wg.Wait()
	return g
}

// mintAge estimates the launch age from the oldest signature on the curve
// account.
func (a *Analyzer) mintAge(ctx context.Context, rpcClient *rpc.Client, mint solana.PublicKey) (time.Duration, bool) {
	curveAddr := curve.DeriveBondingCurve(mint)
	limit := 1000
	sigs, err := rpcClient.GetSignaturesForAddressWithOpts(ctx, curveAddr, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil || len(sigs) == 0 {
		return 0, false
	}

	oldest := sigs[len(sigs)-1]
	if oldest.BlockTime == nil {
		return 0, false
	}
	return time.Since(oldest.BlockTime.Time()), true
}

// topHolder returns the largest non-curve holder's share of supply, in
// percent.
func (a *Analyzer) topHolder(ctx context.Context, rpcClient *rpc.Client, mint solana.PublicKey) (float64, bool) {
	token, err := solanago.GetTokenMint(ctx, rpcClient, mint)
	if err != nil || token.Supply == 0 {
		return 0, false
	}

	largest, err := rpcClient.GetTokenLargestAccounts(ctx, mint, rpc.CommitmentConfirmed)
	if err != nil || len(largest.Value) == 0 {
		return 0, false
	}

	curveATA := curve.DeriveAssociatedBondingCurve(curve.DeriveBondingCurve(mint), mint)
	for _, holder := range largest.Value {
		if holder.Address.Equals(curveATA) {
			continue
		}
		amount, err := strconv.ParseFloat(holder.Amount, 64)
		if err != nil {
			continue
		}
		return amount / float64(token.Supply) * 100, true
	}
	return 0, true
}

// score turns the gathered inputs into a weighted assessment.
func (a *Analyzer) score(mint solana.PublicKey, name, symbol string, g *gathered) *Assessment {
	var reasons []string

	factors := Factors{
		Age:           scoreAge(g.age, g.ageKnown),
		Creator:       a.scoreCreator(g.state.Creator, g.creatorBalance, g.creatorKnown),
		Liquidity:     scoreLiquidity(g.snap),
		Concentration: scoreConcentration(g.topHolderPct, g.holdersKnown),
		Contract:      scoreContract(mint, name, symbol),
		Social:        scoreSocial(g.snap),
		Market:        scoreMarket(g.snap),
	}

	if factors.Age >= 60 {
		reasons = append(reasons, "very recent launch")
	}
	if factors.Creator >= 70 {
		reasons = append(reasons, "creator looks disposable")
	}
	if factors.Liquidity >= 60 {
		reasons = append(reasons, "thin liquidity")
	}
	if factors.Concentration >= 70 {
		reasons = append(reasons, "holdings concentrated")
	}
	if factors.Contract >= 70 {
		reasons = append(reasons, "suspicious naming")
	}

	confidence := 100.0
	if !g.snap.FromDexscreener {
		confidence -= 30
	}
	if !g.snap.FromBirdeye {
		confidence -= 20
	}
	if !g.creatorKnown {
		confidence -= 15
	}
	if !g.holdersKnown {
		confidence -= 10
	}
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	score := factors.weighted()
	return &Assessment{
		Mint:       mint,
		Level:      levelFor(score),
		Score:      score,
		Confidence: confidence,
		Factors:    factors,
		Reasons:    reasons,
	}
}

// QuickCheck is the sniper's fast path: blacklist and naming only, no
// network calls.
func (a *Analyzer) QuickCheck(mint, creator solana.PublicKey, name, symbol string) Level {
	if a.isBlacklisted(mint) || a.isBlacklisted(creator) {
		return LevelCritical
	}
	if suspiciousName(name, symbol) {
		return LevelHigh
	}
	if a.isTrusted(creator) {
		return LevelSafe
	}
	return LevelMedium
}

func blacklistedAssessment(mint solana.PublicKey, reason string) *Assessment {
	return &Assessment{
		Mint:       mint,
		Level:      LevelCritical,
		Score:      100,
		Confidence: 100,
		Reasons:    []string{reason},
	}
}

func scoreAge(age time.Duration, known bool) float64 {
	if !known {
		return 60
	}
	switch {
	case age < time.Minute:
		return 80
	case age < 5*time.Minute:
		return 60
	case age < 30*time.Minute:
		return 40
	case age < 2*time.Hour:
		return 20
	case age < 24*time.Hour:
		return 10
	default:
		return 5
	}
}

func (a *Analyzer) scoreCreator(creator solana.PublicKey, balance uint64, known bool) float64 {
	score := 50.0
	if a.isTrusted(creator) {
		score -= 40
	} else {
		score += 20
	}
	if known && balance < lowCreatorBalance {
		score += 30
	}
	return clamp(score)
}

func scoreLiquidity(snap MarketSnapshot) float64 {
	if !snap.FromDexscreener && !snap.FromBirdeye {
		return 100
	}
	switch {
	case snap.LiquidityUSD == 0:
		return 100
	case snap.LiquidityUSD < 1_000:
		return 80
	case snap.LiquidityUSD < 10_000:
		return 60
	case snap.LiquidityUSD < 50_000:
		return 40
	case snap.LiquidityUSD < 100_000:
		return 20
	default:
		return 10
	}
}

func scoreConcentration(topHolderPct float64, known bool) float64 {
	if !known {
		return 50
	}
	switch {
	case topHolderPct > 50:
		return 90
	case topHolderPct > 30:
		return 70
	case topHolderPct > 20:
		return 50
	case topHolderPct > 10:
		return 30
	default:
		return 10
	}
}

func scoreContract(mint solana.PublicKey, name, symbol string) float64 {
	score := 50.0
	if strings.HasSuffix(mint.String(), "pump") {
		score -= 20
	}
	if suspiciousName(name, symbol) {
		score += 30
	}
	return clamp(score)
}

func scoreSocial(snap MarketSnapshot) float64 {
	switch {
	case snap.SocialLinks == 0:
		return 70
	case snap.SocialLinks == 1:
		return 50
	case snap.SocialLinks == 2:
		return 30
	default:
		return 10
	}
}

func scoreMarket(snap MarketSnapshot) float64 {
	score := 50.0
	if snap.VolumeH24USD == 0 {
		score += 30
	}
	if snap.PriceChange > 50 || snap.PriceChange < -50 {
		score += 20
	}
	if snap.PairCount <= 1 {
		score += 10
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
