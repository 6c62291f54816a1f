package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// Token is a decoded mint account.
type Token struct {
	token.Mint
	// Address of the mint account
	Address solana.PublicKey
}

// TokenLayout provides methods for decoding mint account data
type TokenLayout struct {
}

func (l *TokenLayout) Decode(data []byte) (*Token, error) {
	mint := token.Mint{}

	if err := mint.Decode(data); err != nil {
		return nil, err
	}
	return &Token{Mint: mint}, nil
}

// GetTokenMint fetches and decodes a mint account.
func GetTokenMint(ctx context.Context, rpcClient *rpc.Client, mint solana.PublicKey) (*Token, error) {
	out, err := GetAccountInfo(ctx, rpcClient, mint)
	if err != nil {
		return nil, err
	}

	decoded, err := new(TokenLayout).Decode(out.Value.Data.GetBinary())
	if err != nil {
		return nil, err
	}
	decoded.Address = mint
	return decoded, nil
}
