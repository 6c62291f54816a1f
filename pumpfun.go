package pumpfun

import (
	"context"
	"os"
	"strings"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/campaign"
	"github.com/launchkit/pumpfun-go/events"
	"github.com/launchkit/pumpfun-go/fleet"
	"github.com/launchkit/pumpfun-go/jito"
	"github.com/launchkit/pumpfun-go/pump"
	"github.com/launchkit/pumpfun-go/risk"
	"github.com/launchkit/pumpfun-go/sniper"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

// NewPumpClient creates the bonding curve trading client.
//
// Example:
//
// client := NewPumpClient(mux, wsClient, logger)
//
// client.BuyQuote(ctx1, mint, amountIn, 250)
//
// client.Buy(ctx1, wallet, mint, amountIn, 250)
var NewPumpClient = pump.NewPump

// NewRelayClient creates the bundle relay client with the default
// endpoints and tip accounts.
//
// Example:
//
// relay := NewRelayClient(nil, nil, logger)
//
// relay.SendBundle(ctx1, rpcClient, entries, jito.RecommendedTipLamports)
var NewRelayClient = jito.NewClient

// NewFleetManager creates the wallet fleet manager over a custody registry.
var NewFleetManager = fleet.NewManager

// NewRiskAnalyzer creates the multi-factor risk scorer.
var NewRiskAnalyzer = risk.NewAnalyzer

// NewSniper creates the snipe orchestrator.
var NewSniper = sniper.New

// NewCampaign creates a single-launch campaign orchestrator.
var NewCampaign = campaign.New

// Config wires an Engine. Zero values fall back to the PUMPFUN_RPC_ENDPOINTS
// (comma separated), PUMPFUN_WS_ENDPOINT and BIRDEYE_API_KEY environment
// variables.
type Config struct {
	RPCEndpoints []string
	WSEndpoint   string
	BirdeyeKey   string
	Snipe        sniper.Config
}

// Engine bundles the long-running components with shared wiring.
type Engine struct {
	Mux      *solanago.Multiplexer
	Pump     *pump.Pump
	Relay    *jito.Client
	Fleet    *fleet.Manager
	Analyzer *risk.Analyzer
	Sniper   *sniper.Sniper
	Bus      *events.Bus

	creator *solana.Wallet
	logger  *zap.Logger
}

// NewEngine assembles the full engine. registry supplies the wallet fleet.
func NewEngine(ctx context.Context, cfg Config, registry fleet.Registry, creator *solana.Wallet, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.RPCEndpoints) == 0 {
		cfg.RPCEndpoints = splitEnvList("PUMPFUN_RPC_ENDPOINTS")
	}
	if cfg.WSEndpoint == "" {
		cfg.WSEndpoint = os.Getenv("PUMPFUN_WS_ENDPOINT")
	}
	if cfg.BirdeyeKey == "" {
		cfg.BirdeyeKey = os.Getenv("BIRDEYE_API_KEY")
	}
	if cfg.Snipe == (sniper.Config{}) {
		cfg.Snipe = sniper.DefaultConfig()
	}

	wsClient, err := ws.Connect(ctx, cfg.WSEndpoint)
	if err != nil {
		return nil, err
	}

	mux := solanago.NewMultiplexer(cfg.RPCEndpoints, logger)
	bus := events.NewBus(logger)
	pumpClient := pump.NewPump(mux, wsClient, logger)
	relay := jito.NewClient(nil, nil, logger)
	fleetMgr := fleet.NewManager(registry, mux, bus, logger)
	analyzer := risk.NewAnalyzer(mux, risk.NewMarketClient(cfg.BirdeyeKey), logger)
	snp := sniper.New(pumpClient, fleetMgr, relay, mux, analyzer, bus, cfg.Snipe, logger)

	return &Engine{
		Mux:      mux,
		Pump:     pumpClient,
		Relay:    relay,
		Fleet:    fleetMgr,
		Analyzer: analyzer,
		Sniper:   snp,
		Bus:      bus,
		creator:  creator,
		logger:   logger,
	}, nil
}

// Run starts the background loops and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	go e.Mux.Run(ctx)
	return e.Fleet.Run(ctx)
}

// Campaign creates a campaign bound to the engine's wiring.
func (e *Engine) Campaign(cfg campaign.Config) *campaign.Campaign {
	return campaign.New(e.Pump, e.Fleet, e.Relay, e.Mux, e.Bus, e.creator, cfg, e.logger)
}

func splitEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
