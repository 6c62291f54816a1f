package bonding_curve

import (
	solanago "github.com/gagliardetto/solana-go"
)

var (
	// PumpProgramID is the bonding curve program address.
	PumpProgramID = solanago.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// FeeProgramID is the external fee program holding the fee config PDA.
	FeeProgramID = solanago.MustPublicKeyFromBase58("pfeeUxB6jkeY1Hxd7CsFCAjcbHA9rWtchMGdZ6VojVZ")

	// ProtocolFeeRecipient is the hardcoded protocol fee wallet.
	ProtocolFeeRecipient = solanago.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")

	// Token2022ProgramID is used by buy instructions; sells go through the
	// regular token program.
	Token2022ProgramID = solanago.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// MetaplexProgramID owns the token metadata account created at launch.
	MetaplexProgramID = solanago.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// Instruction discriminators from the program IDL.
var (
	createDiscriminator        = []byte{24, 30, 200, 40, 5, 28, 7, 119}
	buyDiscriminator           = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	buyExactSolInDiscriminator = []byte{56, 252, 116, 8, 158, 223, 205, 95}
	sellDiscriminator          = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

const (
	// MinCurveAccountSize is the smallest byte length of an initialized
	// bonding curve account.
	MinCurveAccountSize = 65

	// TokenDecimals is fixed by the program for every launched mint.
	TokenDecimals = 6

	LamportsPerSOL = 1_000_000_000

	// Default fee schedule used when the global config account cannot be
	// fetched live.
	DefaultFeeBasisPoints        = 100
	DefaultCreatorFeeBasisPoints = 50
)

// feeConfigSeed is the fixed 32-byte seed of the fee config PDA under the
// fee program.
var feeConfigSeed = []byte{
	1, 86, 224, 246, 147, 102, 90, 207, 68, 219, 21, 104, 191, 23, 91, 170,
	81, 137, 203, 151, 245, 210, 255, 59, 101, 93, 43, 182, 253, 109, 24, 176,
}
