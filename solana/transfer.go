package solana

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// TransferSOLInstruction builds a plain lamport transfer.
func TransferSOLInstruction(
	sender solana.PublicKey,
	receiver solana.PublicKey,
	lamports uint64,
) solana.Instruction {
	return system.NewTransferInstruction(lamports, sender, receiver).Build()
}
