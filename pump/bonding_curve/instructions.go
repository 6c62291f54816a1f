package bonding_curve

import (
	"bytes"
	bin "encoding/binary"

	solanago "github.com/gagliardetto/solana-go"
)

// The encoders below must stay byte-exact with the on-chain program: an
// 8-byte discriminator followed by packed little-endian args, with the
// account list in IDL order. A mismatch is rejected on-chain, not locally.

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	bin.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	var b [4]byte
	bin.LittleEndian.PutUint32(b[:], uint32(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}

// CreateInstruction builds the token launch instruction. The mint and the
// creating user both sign.
func CreateInstruction(
	user solanago.PublicKey,
	mint solanago.PublicKey,
	creator solanago.PublicKey,
	name string,
	symbol string,
	uri string,
) solanago.Instruction {
	bondingCurve := DeriveBondingCurve(mint)

	data := new(bytes.Buffer)
	data.Write(createDiscriminator)
	writeString(data, name)
	writeString(data, symbol)
	writeString(data, uri)
	data.Write(creator.Bytes())

	return solanago.NewInstruction(
		PumpProgramID,
		solanago.AccountMetaSlice{
			solanago.Meta(mint).WRITE().SIGNER(),
			solanago.Meta(DeriveMintAuthority()),
			solanago.Meta(bondingCurve).WRITE(),
			solanago.Meta(DeriveAssociatedBondingCurve(bondingCurve, mint)).WRITE(),
			solanago.Meta(DeriveGlobal()),
			solanago.Meta(MetaplexProgramID),
			solanago.Meta(DeriveMintMetadata(mint)).WRITE(),
			solanago.Meta(user).WRITE().SIGNER(),
			solanago.Meta(solanago.SystemProgramID),
			solanago.Meta(solanago.TokenProgramID),
			solanago.Meta(solanago.SPLAssociatedTokenAccountProgramID),
			solanago.Meta(solanago.SysVarRentPubkey),
			solanago.Meta(DeriveEventAuthority()),
			solanago.Meta(PumpProgramID),
		},
		data.Bytes(),
	)
}

// BuyInstruction builds the fixed-token-amount buy. Args are the token
// amount wanted and the maximum SOL cost tolerated.
func BuyInstruction(
	user solanago.PublicKey,
	mint solanago.PublicKey,
	userATA solanago.PublicKey,
	creator solanago.PublicKey,
	amountTokens uint64,
	maxSolCost uint64,
) solanago.Instruction {
	data := new(bytes.Buffer)
	data.Write(buyDiscriminator)
	writeU64(data, amountTokens)
	writeU64(data, maxSolCost)

	return solanago.NewInstruction(PumpProgramID, buyAccounts(user, mint, userATA, creator), data.Bytes())
}

// BuyExactSolInstruction builds the exact-SOL-in buy used by the sniper.
// Args are the SOL spent, the minimum tokens accepted, and an absent
// Option<bool> volume tracking flag.
func BuyExactSolInstruction(
	user solanago.PublicKey,
	mint solanago.PublicKey,
	userATA solanago.PublicKey,
	creator solanago.PublicKey,
	solIn uint64,
	minTokensOut uint64,
) solanago.Instruction {
	data := new(bytes.Buffer)
	data.Write(buyExactSolInDiscriminator)
	writeU64(data, solIn)
	writeU64(data, minTokensOut)
	data.WriteByte(0) // Option<bool> = None

	return solanago.NewInstruction(PumpProgramID, buyAccounts(user, mint, userATA, creator), data.Bytes())
}

// buyAccounts is the 16-account list shared by both buy variants.
func buyAccounts(user, mint, userATA, creator solanago.PublicKey) solanago.AccountMetaSlice {
	bondingCurve := DeriveBondingCurve(mint)
	return solanago.AccountMetaSlice{
		solanago.Meta(DeriveGlobal()),
		solanago.Meta(ProtocolFeeRecipient).WRITE(),
		solanago.Meta(mint),
		solanago.Meta(bondingCurve).WRITE(),
		solanago.Meta(DeriveAssociatedBondingCurve(bondingCurve, mint)).WRITE(),
		solanago.Meta(userATA).WRITE(),
		solanago.Meta(user).WRITE().SIGNER(),
		solanago.Meta(solanago.SystemProgramID),
		solanago.Meta(Token2022ProgramID),
		solanago.Meta(DeriveCreatorVault(creator)).WRITE(),
		solanago.Meta(DeriveEventAuthority()),
		solanago.Meta(PumpProgramID),
		solanago.Meta(DeriveGlobalVolumeAccumulator()).WRITE(),
		solanago.Meta(DeriveUserVolumeAccumulator(user)).WRITE(),
		solanago.Meta(DeriveFeeConfig()),
		solanago.Meta(FeeProgramID),
	}
}

// SellInstruction builds the sell. Args are the token amount sold and the
// minimum SOL accepted. Sells run through the regular token program and a
// 14-account list.
func SellInstruction(
	user solanago.PublicKey,
	mint solanago.PublicKey,
	userATA solanago.PublicKey,
	creator solanago.PublicKey,
	amountTokens uint64,
	minSolOut uint64,
) solanago.Instruction {
	bondingCurve := DeriveBondingCurve(mint)

	data := new(bytes.Buffer)
	data.Write(sellDiscriminator)
	writeU64(data, amountTokens)
	writeU64(data, minSolOut)

	return solanago.NewInstruction(
		PumpProgramID,
		solanago.AccountMetaSlice{
			solanago.Meta(DeriveGlobal()),
			solanago.Meta(ProtocolFeeRecipient).WRITE(),
			solanago.Meta(mint),
			solanago.Meta(bondingCurve).WRITE(),
			solanago.Meta(DeriveAssociatedBondingCurve(bondingCurve, mint)).WRITE(),
			solanago.Meta(userATA).WRITE(),
			solanago.Meta(user).WRITE().SIGNER(),
			solanago.Meta(solanago.SystemProgramID),
			solanago.Meta(DeriveCreatorVault(creator)).WRITE(),
			solanago.Meta(solanago.TokenProgramID),
			solanago.Meta(DeriveEventAuthority()),
			solanago.Meta(PumpProgramID),
			solanago.Meta(DeriveFeeConfig()),
			solanago.Meta(FeeProgramID),
		},
		data.Bytes(),
	)
}
