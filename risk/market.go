package risk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"
)

const (
	dexscreenerBase = "https://api.dexscreener.com/latest/dex/tokens/"
	birdeyeBase     = "https://public-api.birdeye.so/defi/price?address="

	marketTimeout = 3 * time.Second
)

// MarketSnapshot is the best-effort aggregate of external market data.
// Source flags mark which upstreams actually answered.
type MarketSnapshot struct {
	LiquidityUSD float64
	VolumeH24USD float64
	PriceChange  float64 // 24h percent move, absolute value used for volatility
	PairCount    int
	SocialLinks  int

	FromDexscreener bool
	FromBirdeye     bool
}

// MarketClient pulls public market-data endpoints. BirdeyeKey is optional;
// without it the birdeye source is skipped.
type MarketClient struct {
	httpClient *http.Client
	BirdeyeKey string
}

func NewMarketClient(birdeyeKey string) *MarketClient {
	return &MarketClient{
		httpClient: &http.Client{Timeout: marketTimeout},
		BirdeyeKey: birdeyeKey,
	}
}

// Snapshot queries the sources in sequence; each failure is absorbed and
// reflected only in the source flags.
func (m *MarketClient) Snapshot(ctx context.Context, mint solana.PublicKey) MarketSnapshot {
	var snap MarketSnapshot

	if body, err := m.get(ctx, dexscreenerBase+mint.String(), ""); err == nil {
		pairs := gjson.GetBytes(body, "pairs")
		if pairs.IsArray() && len(pairs.Array()) > 0 {
			snap.FromDexscreener = true
			snap.PairCount = len(pairs.Array())

			first := pairs.Array()[0]
			snap.LiquidityUSD = first.Get("liquidity.usd").Float()
			snap.VolumeH24USD = first.Get("volume.h24").Float()
			snap.PriceChange = first.Get("priceChange.h24").Float()
			snap.SocialLinks = int(first.Get("info.socials.#").Int())
		}
	}

	if m.BirdeyeKey != "" {
		if body, err := m.get(ctx, birdeyeBase+mint.String(), m.BirdeyeKey); err == nil {
			if gjson.GetBytes(body, "success").Bool() {
				snap.FromBirdeye = true
				if snap.LiquidityUSD == 0 {
					snap.LiquidityUSD = gjson.GetBytes(body, "data.liquidity").Float()
				}
			}
		}
	}

	return snap
}

func (m *MarketClient) get(ctx context.Context, url, apiKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		req.Header.Set("X-API-KEY", apiKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market source status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
