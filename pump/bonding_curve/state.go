package bonding_curve

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	binary "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/launchkit/pumpfun-go/solana"
)

// ErrMalformedAccount indicates a curve account buffer below the minimum
// valid size or one that fails to decode.
var ErrMalformedAccount = errors.New("malformed bonding curve account")

// ErrCurveNotFound indicates the bonding curve account does not exist yet.
var ErrCurveNotFound = errors.New("bonding curve account not found")

// BondingCurve is the decoded on-chain curve state. The engine holds
// read-only snapshots; only on-chain swaps mutate it.
type BondingCurve struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solanago.PublicKey
}

type bondingCurveLayout struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solanago.PublicKey
}

// ParseBondingCurve decodes a raw curve account buffer, skipping the 8-byte
// account discriminator.
func ParseBondingCurve(data []byte) (*BondingCurve, error) {
	if len(data) < MinCurveAccountSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedAccount, len(data))
	}

	raw := &bondingCurveLayout{}
	if err := binary.NewBinDecoder(data[8:]).Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAccount, err)
	}

	return &BondingCurve{
		VirtualTokenReserves: raw.VirtualTokenReserves,
		VirtualSolReserves:   raw.VirtualSolReserves,
		RealTokenReserves:    raw.RealTokenReserves,
		RealSolReserves:      raw.RealSolReserves,
		TokenTotalSupply:     raw.TokenTotalSupply,
		Complete:             raw.Complete,
		Creator:              raw.Creator,
	}, nil
}

// Encode serializes the curve state back into the on-chain account layout,
// discriminator included. Used for fixtures; the engine never writes state.
func (c *BondingCurve) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(solana.AccountDiscriminator("BondingCurve"))

	raw := &bondingCurveLayout{
		VirtualTokenReserves: c.VirtualTokenReserves,
		VirtualSolReserves:   c.VirtualSolReserves,
		RealTokenReserves:    c.RealTokenReserves,
		RealSolReserves:      c.RealSolReserves,
		TokenTotalSupply:     c.TokenTotalSupply,
		Complete:             c.Complete,
		Creator:              c.Creator,
	}
	if err := binary.NewBinEncoder(buf).Encode(raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FetchBondingCurve reads and decodes the curve account for a mint.
func FetchBondingCurve(ctx context.Context, rpcClient *rpc.Client, mint solanago.PublicKey) (*BondingCurve, error) {
	out, err := solana.GetAccountInfo(ctx, rpcClient, DeriveBondingCurve(mint))
	if err != nil {
		if err == rpc.ErrNotFound {
			return nil, ErrCurveNotFound
		}
		return nil, err
	}
	if out == nil || out.Value == nil {
		return nil, ErrCurveNotFound
	}
	return ParseBondingCurve(out.Value.Data.GetBinary())
}
