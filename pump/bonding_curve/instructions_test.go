package bonding_curve

import (
	"encoding/binary"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func testParties() (user, mint, userATA, creator solanago.PublicKey) {
	user = solanago.NewWallet().PublicKey()
	mint = solanago.NewWallet().PublicKey()
	creator = solanago.NewWallet().PublicKey()
	userATA, _, _ = solanago.FindAssociatedTokenAddress(user, mint)
	return
}

func TestCreateInstructionEncoding(t *testing.T) {
	user, mint, _, creator := testParties()

	ix := CreateInstruction(user, mint, creator, "Test Coin", "TEST", "https://example.com/meta.json")
	require.Equal(t, PumpProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 14)
	require.Equal(t, mint, accounts[0].PublicKey)
	require.True(t, accounts[0].IsSigner)
	require.True(t, accounts[0].IsWritable)
	require.Equal(t, user, accounts[7].PublicKey)
	require.True(t, accounts[7].IsSigner)
	require.Equal(t, PumpProgramID, accounts[13].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Equal(t, []byte{24, 30, 200, 40, 5, 28, 7, 119}, data[:8])

	// Borsh string: u32 length prefix then bytes.
	require.Equal(t, uint32(9), binary.LittleEndian.Uint32(data[8:12]))
	require.Equal(t, "Test Coin", string(data[12:21]))

	// Creator pubkey closes the payload.
	require.Equal(t, creator.Bytes(), data[len(data)-32:])
}

func TestBuyInstructionEncoding(t *testing.T) {
	user, mint, userATA, creator := testParties()

	ix := BuyInstruction(user, mint, userATA, creator, 1_000_000, 2_000_000_000)

	accounts := ix.Accounts()
	require.Len(t, accounts, 16)
	require.Equal(t, ProtocolFeeRecipient, accounts[1].PublicKey)
	require.Equal(t, userATA, accounts[5].PublicKey)
	require.Equal(t, user, accounts[6].PublicKey)
	require.True(t, accounts[6].IsSigner)
	require.Equal(t, Token2022ProgramID, accounts[8].PublicKey)
	require.Equal(t, FeeProgramID, accounts[15].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	require.Equal(t, []byte{102, 6, 61, 18, 1, 218, 235, 234}, data[:8])
	require.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[8:16]))
	require.Equal(t, uint64(2_000_000_000), binary.LittleEndian.Uint64(data[16:24]))
}

func TestBuyExactSolInstructionEncoding(t *testing.T) {
	user, mint, userATA, creator := testParties()

	ix := BuyExactSolInstruction(user, mint, userATA, creator, 1_000_000_000, 34_000_000_000_000)

	require.Len(t, ix.Accounts(), 16)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 25)
	require.Equal(t, []byte{56, 252, 116, 8, 158, 223, 205, 95}, data[:8])
	require.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(data[8:16]))
	require.Equal(t, uint64(34_000_000_000_000), binary.LittleEndian.Uint64(data[16:24]))
	require.Equal(t, byte(0), data[24])
}

func TestSellInstructionEncoding(t *testing.T) {
	user, mint, userATA, creator := testParties()

	ix := SellInstruction(user, mint, userATA, creator, 5_000_000, 100_000)

	accounts := ix.Accounts()
	require.Len(t, accounts, 14)
	require.Equal(t, userATA, accounts[5].PublicKey)
	require.True(t, accounts[6].IsSigner)

	// Sells run through the regular token program, not token-2022.
	require.Equal(t, solanago.TokenProgramID, accounts[9].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 24)
	require.Equal(t, []byte{51, 230, 133, 164, 1, 127, 131, 173}, data[:8])
	require.Equal(t, uint64(5_000_000), binary.LittleEndian.Uint64(data[8:16]))
	require.Equal(t, uint64(100_000), binary.LittleEndian.Uint64(data[16:24]))
}

func TestDerivedAddressesDeterministic(t *testing.T) {
	mint := solanago.NewWallet().PublicKey()

	require.Equal(t, DeriveBondingCurve(mint), DeriveBondingCurve(mint))
	require.NotEqual(t, DeriveBondingCurve(mint), DeriveBondingCurve(solanago.NewWallet().PublicKey()))
	require.False(t, DeriveGlobal().IsZero())
	require.False(t, DeriveFeeConfig().IsZero())
}
