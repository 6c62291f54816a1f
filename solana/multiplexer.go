package solana

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const (
	defaultProbeTimeout  = 2 * time.Second
	defaultProbeInterval = 30 * time.Second
)

// Multiplexer holds several backing RPC connections, probes their latency
// and serves the fastest responding one. Reads, balance checks and the
// non-atomic submission fallback all go through it.
type Multiplexer struct {
	endpoints []string
	clients   []*rpc.Client
	logger    *zap.Logger

	probeTimeout  time.Duration
	probeInterval time.Duration

	mu      sync.RWMutex
	fastest int
}

// NewMultiplexer creates a multiplexer over a fixed endpoint list. The first
// endpoint is the initial pick until a probe completes.
func NewMultiplexer(endpoints []string, logger *zap.Logger) *Multiplexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	clients := make([]*rpc.Client, len(endpoints))
	for i, endpoint := range endpoints {
		clients[i] = rpc.New(endpoint)
	}
	return &Multiplexer{
		endpoints:     endpoints,
		clients:       clients,
		logger:        logger,
		probeTimeout:  defaultProbeTimeout,
		probeInterval: defaultProbeInterval,
	}
}

// Fastest returns the currently fastest-ranked client.
func (m *Multiplexer) Fastest() *rpc.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[m.fastest]
}

// Endpoint returns the URL of the currently fastest-ranked endpoint.
func (m *Multiplexer) Endpoint() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.endpoints[m.fastest]
}

// Probe measures the round-trip latency of every endpoint in parallel and
// re-ranks them. When every probe fails the first configured endpoint
// remains the pick of last resort.
func (m *Multiplexer) Probe(ctx context.Context) {
	type result struct {
		index   int
		latency time.Duration
		ok      bool
	}

	results := make([]result, len(m.clients))
	var wg sync.WaitGroup
	for i, client := range m.clients {
		wg.Add(1)
		go func(i int, client *rpc.Client) {
			defer wg.Done()
			ctx1, cancel := context.WithTimeout(ctx, m.probeTimeout)
			defer cancel()

			start := time.Now()
			_, err := client.GetHealth(ctx1)
			results[i] = result{index: i, latency: time.Since(start), ok: err == nil}
		}(i, client)
	}
	wg.Wait()

	healthy := make([]result, 0, len(results))
	for _, r := range results {
		if r.ok {
			healthy = append(healthy, r)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(healthy) == 0 {
		m.fastest = 0
		m.logger.Warn("all rpc probes failed, using first endpoint", zap.String("endpoint", m.endpoints[0]))
		return
	}
	sort.Slice(healthy, func(i, j int) bool { return healthy[i].latency < healthy[j].latency })
	m.fastest = healthy[0].index
	m.logger.Debug("rpc probe complete",
		zap.String("endpoint", m.endpoints[m.fastest]),
		zap.Duration("latency", healthy[0].latency),
	)
}

// Run re-probes endpoints on a fixed interval until the context is cancelled.
func (m *Multiplexer) Run(ctx context.Context) {
	m.Probe(ctx)
	ticker := time.NewTicker(m.probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// SubmitAll submits each signed transaction individually through the fastest
// endpoint. Order is preserved but atomicity is lost; per-transaction
// failures are reported in the result slice, not as an aggregate error.
func (m *Multiplexer) SubmitAll(ctx context.Context, txs []*solana.Transaction) []SubmitResult {
	client := m.Fastest()
	results := make([]SubmitResult, len(txs))
	for i, tx := range txs {
		sig, err := SubmitSignedTransaction(ctx, client, tx)
		results[i] = SubmitResult{Signature: sig, Err: err}
		if err != nil {
			m.logger.Warn("fallback submission failed", zap.Int("index", i), zap.Error(err))
		}
	}
	return results
}

// SubmitResult is the outcome of one fallback submission.
type SubmitResult struct {
	Signature solana.Signature
	Err       error
}
