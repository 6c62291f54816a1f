// Package pump is the high-level client for the bonding curve program:
// launch, buy and sell operations, quoting and the curve-state cache.
package pump

import (
	"context"
	"errors"
	"fmt"

	binary "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	curve "github.com/launchkit/pumpfun-go/pump/bonding_curve"
	solanago "github.com/launchkit/pumpfun-go/solana"
)

var (
	// ErrValidation marks malformed caller input, rejected before any
	// network call.
	ErrValidation = errors.New("invalid input")

	// ErrStaleCurveState means the asset migrated off-curve; buys and sells
	// must be refused.
	ErrStaleCurveState = errors.New("bonding curve is complete")

	// ErrNoLiquidity means the curve quotes to a zero output.
	ErrNoLiquidity = errors.New("no liquidity on curve")

	// ErrInsufficientBalance skips a wallet without failing the batch.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// DefaultPriorityFee is the compute unit price attached to trading
// transactions, in microlamports.
const DefaultPriorityFee = uint64(500_000)

// Pump wraps the multiplexed RPC layer with program-aware operations.
type Pump struct {
	mux      *solanago.Multiplexer
	wsClient *ws.Client
	logger   *zap.Logger
	cache    *CurveCache

	priorityFee   uint64
	feeBps        uint64
	creatorFeeBps uint64
}

func NewPump(mux *solanago.Multiplexer, wsClient *ws.Client, logger *zap.Logger) *Pump {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pump{
		mux:           mux,
		wsClient:      wsClient,
		logger:        logger,
		priorityFee:   DefaultPriorityFee,
		feeBps:        curve.DefaultFeeBasisPoints,
		creatorFeeBps: curve.DefaultCreatorFeeBasisPoints,
	}
	p.cache = NewCurveCache(mux, logger)
	return p
}

// Cache exposes the curve-state cache for components that read snapshots
// directly.
func (p *Pump) Cache() *CurveCache {
	return p.cache
}

// FeeSchedule returns the fee basis points currently in effect.
func (p *Pump) FeeSchedule() (feeBps, creatorFeeBps uint64) {
	return p.feeBps, p.creatorFeeBps
}

type globalLayout struct {
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSolReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// RefreshFees reads the protocol fee from the program's global config
// account. The compiled-in defaults stay in effect when the fetch or decode
// fails; the creator share is not part of the global account and keeps its
// default.
func (p *Pump) RefreshFees(ctx context.Context) error {
	out, err := solanago.GetAccountInfo(ctx, p.mux.Fastest(), curve.DeriveGlobal())
	if err != nil {
		return fmt.Errorf("fetch global config: %w", err)
	}
	data := out.Value.Data.GetBinary()
	if len(data) <= 8 {
		return fmt.Errorf("fetch global config: account too small")
	}

	raw := &globalLayout{}
	if err := binary.NewBinDecoder(data[8:]).Decode(raw); err != nil {
		return fmt.Errorf("decode global config: %w", err)
	}
	if raw.FeeBasisPoints == 0 || raw.FeeBasisPoints > 1_000 {
		return fmt.Errorf("decode global config: implausible fee %d bps", raw.FeeBasisPoints)
	}

	p.feeBps = raw.FeeBasisPoints
	p.logger.Debug("protocol fee refreshed", zap.Uint64("feeBps", p.feeBps))
	return nil
}

// TokenBalance returns the owner's balance of a launched token, zero when
// the ATA does not exist.
func (p *Pump) TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, err
	}
	accounts, err := solanago.GetMultipleTokenAccounts(ctx, p.mux.Fastest(), ata)
	if err != nil {
		return 0, err
	}
	if len(accounts) == 0 || accounts[0] == nil {
		return 0, nil
	}
	return accounts[0].Amount, nil
}
