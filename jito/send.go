package jito

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/launchkit/pumpfun-go/backoff"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

// Entry is one transaction slot in a bundle: instructions plus the payer and
// its signer lookup. All entries share a single blockhash so the relay lands
// them in one slot.
type Entry struct {
	Instructions []solana.Instruction
	Payer        solana.PublicKey
	Sign         func(key solana.PublicKey) *solana.PrivateKey
}

// SendBundle builds, signs and submits a bundle. The tip transfer rides in
// the first transaction, paid by that entry's payer. Inputs beyond
// MaxBundleSize are truncated; tips below MinTipLamports are raised to it.
//
// Endpoints are tried in a shuffled order for up to maxRounds rounds with
// exponential backoff between rounds. A rate-limited endpoint rotates to the
// next immediately. Exhaustion returns ErrSubmission and the caller should
// fall back to direct submission.
func (c *Client) SendBundle(
	ctx context.Context,
	rpcClient *rpc.Client,
	entries []Entry,
	tipLamports uint64,
) (*Bundle, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyBundle
	}
	if tipLamports < MinTipLamports {
		tipLamports = MinTipLamports
	}
	tipAccount := c.nextTipAccount()

	blockhash, err := rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}

	txs, err := buildBundleTransactions(entries, tipLamports, tipAccount, blockhash.Value.Blockhash)
	if err != nil {
		return nil, err
	}
	if len(txs) < len(entries) {
		c.logger.Warn("bundle truncated",
			zap.Int("requested", len(entries)),
			zap.Int("kept", len(txs)),
		)
	}

	encoded := make([]string, len(txs))
	for i, tx := range txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("serialize bundle tx %d: %w", i, err)
		}
		encoded[i] = base58.Encode(raw)
	}

	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "sendBundle",
		"params":  []any{encoded},
	})
	if err != nil {
		return nil, err
	}

	order := rand.Perm(len(c.endpoints))
	policy := backoff.Exponential(backoffBase, backoffCap)

	for round := 0; round < maxRounds; round++ {
		for _, idx := range order {
			endpoint := c.endpoints[idx]
			id, status, err := c.post(ctx, endpoint, payload)
			if err == nil {
				bundle := &Bundle{
					ID:           id,
					TipLamports:  tipLamports,
					TipAccount:   tipAccount,
					EndpointUsed: endpoint,
					Transactions: len(txs),
					status:       StatusPending,
				}
				c.logger.Info("bundle accepted",
					zap.String("bundleID", id),
					zap.String("endpoint", endpoint),
					zap.Int("transactions", len(txs)),
					zap.Uint64("tipLamports", tipLamports),
				)
				go c.pollStatus(bundle)
				return bundle, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if status == http.StatusTooManyRequests {
				c.logger.Debug("relay rate limited, rotating", zap.String("endpoint", endpoint))
				continue
			}
			c.logger.Debug("relay rejected bundle",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}

		if round < maxRounds-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(policy(round)):
			}
		}
	}

	return nil, ErrSubmission
}

// buildBundleTransactions signs one transaction per entry against a shared
// blockhash, appending the tip transfer to the first entry's instructions.
func buildBundleTransactions(
	entries []Entry,
	tipLamports uint64,
	tipAccount solana.PublicKey,
	blockhash solana.Hash,
) ([]*solana.Transaction, error) {
	if len(entries) > MaxBundleSize {
		entries = entries[:MaxBundleSize]
	}

	txs := make([]*solana.Transaction, 0, len(entries))
	for i, entry := range entries {
		instructions := entry.Instructions
		if i == 0 {
			tip := solanago.TransferSOLInstruction(entry.Payer, tipAccount, tipLamports)
			instructions = append(append([]solana.Instruction{}, instructions...), tip)
		}

		tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(entry.Payer))
		if err != nil {
			return nil, fmt.Errorf("build bundle tx %d: %w", i, err)
		}
		if _, err := tx.Sign(entry.Sign); err != nil {
			return nil, fmt.Errorf("sign bundle tx %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// post performs one sendBundle call and returns the bundle id.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", resp.StatusCode, errors.New("rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("relay status %d", resp.StatusCode)
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return "", resp.StatusCode, errors.New(msg.String())
	}
	id := gjson.GetBytes(body, "result").String()
	if id == "" {
		return "", resp.StatusCode, errors.New("relay response missing bundle id")
	}
	return id, resp.StatusCode, nil
}

// pollStatus checks the bundle's confirmation once, shortly after landing.
// Failures here are logged and otherwise ignored.
func (c *Client) pollStatus(b *Bundle) {
	time.Sleep(statusPollDelay)

	ctx, cancel := context.WithTimeout(context.Background(), statusPollTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "getBundleStatuses",
		"params":  []any{[]string{b.ID}},
	})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.EndpointUsed, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("bundle status poll failed", zap.String("bundleID", b.ID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	status := gjson.GetBytes(body, "result.value.0.confirmation_status").String()
	switch status {
	case "confirmed", "finalized":
		b.setStatus(StatusConfirmed)
	case "":
		if gjson.GetBytes(body, "result.value.0.err").Exists() {
			b.setStatus(StatusFailed)
		}
	}
	c.logger.Debug("bundle status",
		zap.String("bundleID", b.ID),
		zap.String("status", string(b.Status())),
	)
}
