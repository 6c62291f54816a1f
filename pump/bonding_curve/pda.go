package bonding_curve

import (
	solanago "github.com/gagliardetto/solana-go"
)

var seed = struct {
	Global                  []byte
	BondingCurve            []byte
	CreatorVault            []byte
	EventAuthority          []byte
	GlobalVolumeAccumulator []byte
	UserVolumeAccumulator   []byte
	FeeConfig               []byte
	MintAuthority           []byte
	Metadata                []byte
}{
	Global:                  []byte("global"),
	BondingCurve:            []byte("bonding-curve"),
	CreatorVault:            []byte("creator-vault"),
	EventAuthority:          []byte("__event_authority"),
	GlobalVolumeAccumulator: []byte("global_volume_accumulator"),
	UserVolumeAccumulator:   []byte("user_volume_accumulator"),
	FeeConfig:               []byte("fee_config"),
	MintAuthority:           []byte("mint-authority"),
	Metadata:                []byte("metadata"),
}

func DeriveGlobal() solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.Global}, PumpProgramID)
	return pub
}

func DeriveBondingCurve(mint solanago.PublicKey) solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.BondingCurve, mint.Bytes()}, PumpProgramID)
	return pub
}

// DeriveAssociatedBondingCurve returns the curve's token vault, an ATA owned
// by the bonding curve PDA under the token-2022 program.
func DeriveAssociatedBondingCurve(bondingCurve, mint solanago.PublicKey) solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress(
		[][]byte{bondingCurve.Bytes(), Token2022ProgramID.Bytes(), mint.Bytes()},
		solanago.SPLAssociatedTokenAccountProgramID,
	)
	return pub
}

func DeriveCreatorVault(creator solanago.PublicKey) solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.CreatorVault, creator.Bytes()}, PumpProgramID)
	return pub
}

func DeriveEventAuthority() solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.EventAuthority}, PumpProgramID)
	return pub
}

func DeriveGlobalVolumeAccumulator() solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.GlobalVolumeAccumulator}, PumpProgramID)
	return pub
}

func DeriveUserVolumeAccumulator(user solanago.PublicKey) solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.UserVolumeAccumulator, user.Bytes()}, PumpProgramID)
	return pub
}

// DeriveFeeConfig derives the fee config PDA under the fee program using its
// fixed 32-byte seed.
func DeriveFeeConfig() solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.FeeConfig, feeConfigSeed}, FeeProgramID)
	return pub
}

func DeriveMintAuthority() solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.MintAuthority}, PumpProgramID)
	return pub
}

func DeriveMintMetadata(mint solanago.PublicKey) solanago.PublicKey {
	pub, _, _ := solanago.FindProgramAddress([][]byte{seed.Metadata, MetaplexProgramID.Bytes(), mint.Bytes()}, MetaplexProgramID)
	return pub
}
