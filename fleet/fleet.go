// Package fleet manages the pool of trading wallets: eligibility refresh,
// balance tracking and lazy decryption of signing keys. Key material stays
// inside the manager; callers work with identity handles.
package fleet

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	solana "github.com/gagliardetto/solana-go"
)

// ErrKeyDecryption marks a wallet whose signing key cannot be recovered.
// The wallet is evicted permanently; the condition does not clear on retry.
var ErrKeyDecryption = errors.New("wallet key decryption failed")

// ErrBadKeyMaterial marks decrypted material that is not a 64-byte key.
var ErrBadKeyMaterial = errors.New("decrypted key is not a 64-byte secret")

const (
	refreshSpacing  = 1500 * time.Millisecond
	balanceCacheTTL = 5 * time.Second
	cycleRetryDelay = 5 * time.Second

	// DefaultSpendBuffer is kept on top of the planned spend so a wallet
	// can still pay fees and rent after trading.
	DefaultSpendBuffer = uint64(5_000_000)
)

// WalletRecord is a custody-side wallet listing. KeyRef identifies the
// encrypted key in the registry; the manager never sees the ciphertext.
// Premium wallets opt into stricter per-asset risk filters.
type WalletRecord struct {
	KeyRef  string
	Address solana.PublicKey
	Label   string
	Premium bool
}

// Registry is the external custody collaborator the manager pulls from.
type Registry interface {
	ListEligible(ctx context.Context) ([]WalletRecord, error)
	DecryptedKey(ctx context.Context, keyRef string) ([]byte, error)
}

// Wallet is an identity handle over a decrypted fleet wallet. The private
// key is reachable only through Signer and PrivateKey.
type Wallet struct {
	Record WalletRecord

	key       solana.PrivateKey
	balance   atomic.Uint64
	balanceAt time.Time
}

func (w *Wallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

func (w *Wallet) PrivateKey() solana.PrivateKey {
	return w.key
}

// Signer returns the key-lookup closure used when signing transactions.
func (w *Wallet) Signer() func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	}
}

// Balance returns the lamport balance from the last refresh cycle. Safe to
// call while a refresh cycle is writing.
func (w *Wallet) Balance() uint64 {
	return w.balance.Load()
}
