package solana

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
)

const defaultSimulationUnits uint32 = 1_400_000

// ErrSimulationFailed wraps on-chain dry-run rejections. Callers abort the
// affected transaction only.
type ErrSimulationFailed struct {
	Logs []string
	Err  interface{}
}

func (e *ErrSimulationFailed) Error() string {
	logs := "No logs available"
	if len(e.Logs) > 0 {
		logs = strings.Join(e.Logs, "\n  • ")
	}
	return fmt.Sprintf("transaction simulation failed:\n  •%s%v", logs, e.Err)
}

// GetSimulationComputeUnits simulates a transaction and returns the compute
// units consumed. A high compute limit instruction is prepended so the real
// usage is reported.
func GetSimulationComputeUnits(
	ctx context.Context,
	client *rpc.Client,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	commitment rpc.CommitmentType,
) (*uint64, error) {
	if len(instructions) == 0 {
		return nil, fmt.Errorf("no instructions to simulate")
	}

	limitIx := computebudget.NewSetComputeUnitLimitInstructionBuilder().
		SetUnits(defaultSimulationUnits).
		Build()

	testInstructions := make([]solana.Instruction, 0, len(instructions)+1)
	testInstructions = append(testInstructions, limitIx)
	testInstructions = append(testInstructions, instructions...)

	tx, err := solana.NewTransaction(
		testInstructions,
		solana.Hash{},
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, err
	}

	opts := &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		ReplaceRecentBlockhash: true,
	}
	if commitment != "" {
		opts.Commitment = commitment
	}

	resp, err := client.SimulateTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Value == nil {
		return nil, nil
	}
	if resp.Value.Err != nil {
		return nil, &ErrSimulationFailed{Logs: resp.Value.Logs, Err: resp.Value.Err}
	}
	return resp.Value.UnitsConsumed, nil
}

// GetEstimatedComputeUnitIxWithBuffer builds a SetComputeUnitLimit instruction
// using simulation plus a buffer. If simulation fails, a fallback instruction
// with defaultSimulationUnits is returned along with the error.
func GetEstimatedComputeUnitIxWithBuffer(
	ctx context.Context,
	client *rpc.Client,
	instructions []solana.Instruction,
	payer solana.PublicKey,
	buffer float64,
) (solana.Instruction, error) {
	if buffer < 0 {
		buffer = 0
	}
	if buffer > 1 {
		buffer = 1
	}

	estimated, err := GetSimulationComputeUnits(ctx, client, instructions, payer, rpc.CommitmentConfirmed)
	if err != nil || estimated == nil || *estimated == 0 {
		return computebudget.NewSetComputeUnitLimitInstructionBuilder().
			SetUnits(defaultSimulationUnits).
			Build(), err
	}

	units := uint64(float64(*estimated) * (1 + buffer))
	if units > uint64(^uint32(0)) {
		units = uint64(^uint32(0))
	}
	return computebudget.NewSetComputeUnitLimitInstructionBuilder().
		SetUnits(uint32(units)).
		Build(), nil
}
