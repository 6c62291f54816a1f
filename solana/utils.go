package solana

import (
	"context"
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// AccountDiscriminator returns the 8-byte anchor discriminator for an
// account type name.
func AccountDiscriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out[:]
}

// InstructionDiscriminator returns the 8-byte anchor discriminator for an
// instruction name.
func InstructionDiscriminator(name string) []byte {
	hash := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out[:]
}

func GetLatestBlockhash(ctx context.Context, rpcClient *rpc.Client) (solana.Hash, error) {

	recent, err := rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, err
	}
	return recent.Value.Blockhash, nil
}

func GetAccountInfo(ctx context.Context, rpcClient *rpc.Client, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{Commitment: rpc.CommitmentConfirmed})
}

func GetMultipleAccountInfo(ctx context.Context, rpcClient *rpc.Client, accounts []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	return rpcClient.GetMultipleAccountsWithOpts(ctx, accounts, &rpc.GetMultipleAccountsOpts{Commitment: rpc.CommitmentConfirmed, Encoding: solana.EncodingBase64})
}

// GetBalance returns the lamport balance of an account at confirmed commitment.
func GetBalance(ctx context.Context, rpcClient *rpc.Client, account solana.PublicKey) (uint64, error) {
	out, err := rpcClient.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

// GetSlot returns the current slot at confirmed commitment.
func GetSlot(ctx context.Context, rpcClient *rpc.Client) (uint64, error) {
	return rpcClient.GetSlot(ctx, rpc.CommitmentConfirmed)
}

// GetMultipleTokenAccounts fetches and decodes a batch of SPL token accounts
// in one round trip. Missing accounts are returned as nil entries.
func GetMultipleTokenAccounts(ctx context.Context, rpcClient *rpc.Client, accounts ...solana.PublicKey) ([]*Account, error) {
	outs, err := GetMultipleAccountInfo(ctx, rpcClient, accounts)
	if err != nil {
		return nil, err
	}
	list := make([]*Account, len(outs.Value))
	for i, out := range outs.Value {
		if out == nil {
			continue
		}

		account, err := new(AccountLayout).Decode(out.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		account.Address = accounts[i]

		list[i] = account
	}
	return list, nil
}
