// Package jito submits atomic transaction bundles to a block-building relay
// with tip-based prioritization, endpoint rotation and bounded retry.
package jito

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ErrSubmission means every relay endpoint and retry round was exhausted.
// Callers must fall back to direct unbundled submission.
var ErrSubmission = errors.New("bundle submission exhausted all endpoints")

// ErrEmptyBundle rejects a submission with no transactions.
var ErrEmptyBundle = errors.New("bundle has no transactions")

// Relay block engine endpoints, rotated per attempt.
var DefaultEndpoints = []string{
	"https://mainnet.block-engine.jito.wtf/api/v1/bundles",
	"https://ny.mainnet.block-engine.jito.wtf/api/v1/bundles",
	"https://amsterdam.mainnet.block-engine.jito.wtf/api/v1/bundles",
	"https://frankfurt.mainnet.block-engine.jito.wtf/api/v1/bundles",
	"https://tokyo.mainnet.block-engine.jito.wtf/api/v1/bundles",
}

// Relay-designated tip accounts, chosen round-robin per bundle.
var DefaultTipAccounts = []solana.PublicKey{
	solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	solana.MustPublicKeyFromBase58("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	solana.MustPublicKeyFromBase58("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
}

const (
	// MaxBundleSize is the relay's hard cap; larger inputs are truncated.
	MaxBundleSize = 5

	// MinTipLamports is the floor below which the relay ignores a bundle.
	MinTipLamports = uint64(100_000)

	// RecommendedTipLamports is the default tip for competitive inclusion.
	RecommendedTipLamports = uint64(500_000)

	maxRounds         = 3
	backoffBase       = 1 * time.Second
	backoffCap        = 8 * time.Second
	submitTimeout     = 5 * time.Second
	statusPollDelay   = 2 * time.Second
	statusPollTimeout = 3 * time.Second
)

// ConfirmationStatus tracks a bundle through its lifecycle.
type ConfirmationStatus string

const (
	StatusPending   ConfirmationStatus = "pending"
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusFailed    ConfirmationStatus = "failed"
)

// Bundle is the submission record returned to callers. Status is updated
// asynchronously by a best-effort poll after submission.
type Bundle struct {
	ID           string
	TipLamports  uint64
	TipAccount   solana.PublicKey
	EndpointUsed string
	Transactions int

	mu     sync.Mutex
	status ConfirmationStatus
}

func (b *Bundle) Status() ConfirmationStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Bundle) setStatus(s ConfirmationStatus) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

// Client submits bundles against a rotating endpoint set.
type Client struct {
	endpoints   []string
	tipAccounts []solana.PublicKey
	httpClient  *http.Client
	logger      *zap.Logger

	tipCursor atomic.Uint64
}

func NewClient(endpoints []string, tipAccounts []solana.PublicKey, logger *zap.Logger) *Client {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	if len(tipAccounts) == 0 {
		tipAccounts = DefaultTipAccounts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoints:   endpoints,
		tipAccounts: tipAccounts,
		httpClient:  &http.Client{Timeout: submitTimeout},
		logger:      logger,
	}
}

// nextTipAccount rotates through the tip accounts round-robin.
func (c *Client) nextTipAccount() solana.PublicKey {
	n := c.tipCursor.Add(1)
	return c.tipAccounts[(n-1)%uint64(len(c.tipAccounts))]
}
