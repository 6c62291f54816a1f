package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
)

// PrepareTokenATA checks if ATA exists, creates it if it doesn't exist
func PrepareTokenATA(
	ctx context.Context,
	rpcClient *rpc.Client,
	owner solana.PublicKey,
	tokenMint solana.PublicKey,
	payer solana.PublicKey,
	instructions *[]solana.Instruction,
) (solana.PublicKey, error) {
	tokenATA, _, err := solana.FindAssociatedTokenAddress(
		owner,
		tokenMint,
	)

	if err != nil {
		return solana.PublicKey{}, err
	}

	exists, err := GetAccountInfo(ctx, rpcClient, tokenATA)
	if err != nil && err != rpc.ErrNotFound {
		return solana.PublicKey{}, err
	}

	if exists == nil {
		ix := associatedtokenaccount.NewCreateInstruction(
			payer, owner, tokenMint,
		).Build()
		*instructions = append(*instructions, ix)
	}
	return tokenATA, nil
}

// PriorityFeeInstructions builds the compute budget prelude for a prioritized
// transaction. A zero unitLimit omits the limit instruction.
func PriorityFeeInstructions(microLamports uint64, unitLimit uint32) []solana.Instruction {
	instructions := []solana.Instruction{
		computebudget.NewSetComputeUnitPriceInstructionBuilder().
			SetMicroLamports(microLamports).
			Build(),
	}
	if unitLimit > 0 {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitLimitInstructionBuilder().
				SetUnits(unitLimit).
				Build(),
		)
	}
	return instructions
}
