package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	sendandconfirmtransaction "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// BuildSignedTransaction assembles instructions into a signed transaction
// without submitting it. Used for bundle composition where several signed
// transactions are shipped together.
func BuildSignedTransaction(
	ctx context.Context,
	rpcClient *rpc.Client,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	sign func(key solana.PublicKey) *solana.PrivateKey,
) (*solana.Transaction, error) {
	latestBlockhash, err := GetLatestBlockhash(ctx, rpcClient)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, latestBlockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, err
	}

	if _, err = tx.Sign(sign); err != nil {
		return nil, err
	}
	return tx, nil
}

// SendTransaction builds, signs, submits and waits for confirmation of a
// transaction. When confirmation via websocket is inconclusive it falls back
// to polling signature statuses.
func SendTransaction(
	ctx context.Context,
	rpcClient *rpc.Client,
	wsClient *ws.Client,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	sign func(key solana.PublicKey) *solana.PrivateKey,
) (solana.Signature, error) {

	tx, err := BuildSignedTransaction(ctx, rpcClient, instructions, payer, sign)
	if err != nil {
		return solana.Signature{}, err
	}

	if IsSimulate {
		if _, err = rpcClient.SimulateTransaction(ctx, tx); err != nil {
			return solana.Signature{}, err
		}
		return tx.Signatures[0], nil
	}

	sig, err := rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		return solana.Signature{}, err
	}

	return waitForConfirmation(ctx, rpcClient, wsClient, sig)
}

// SubmitSignedTransaction ships an already-signed transaction without
// preflight. This is the non-atomic fallback path used when the bundle relay
// is exhausted.
func SubmitSignedTransaction(
	ctx context.Context,
	rpcClient *rpc.Client,
	tx *solana.Transaction,
) (solana.Signature, error) {
	return rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
}

func waitForConfirmation(ctx context.Context, rpcClient *rpc.Client, wsClient *ws.Client, sig solana.Signature) (solana.Signature, error) {
	confirmed, err := sendandconfirmtransaction.WaitForConfirmation(ctx, wsClient, sig, nil)
	if confirmed {
		if err != nil {
			return solana.Signature{}, fmt.Errorf("transaction confirmed but failed: %w", err)
		}
		return sig, nil
	}
	statusResp, err := rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("rpc GetSignatureStatuses error: %w", err)
	}
	status := statusResp.Value[0]
	if status == nil {
		return solana.Signature{}, fmt.Errorf("transaction not found (maybe dropped)")
	}
	if status.Err != nil {
		return solana.Signature{}, fmt.Errorf("transaction confirmed but failed: %v", status.Err)
	}
	txResp, err := rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{Commitment: rpc.CommitmentFinalized})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("rpc GetTransaction error: %w", err)
	}
	if txResp != nil && txResp.Meta != nil && txResp.Meta.Err != nil {
		return solana.Signature{}, fmt.Errorf("transaction finalized but failed: %v", txResp.Meta.Err)
	}
	return sig, nil
}
