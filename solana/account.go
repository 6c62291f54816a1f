package solana

import (
	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type AccountState uint8

const (
	AccountStateUninitialized AccountState = 0
	AccountStateInitialized   AccountState = 1
	AccountStateFrozen        AccountState = 2
)

// Account is the decoded view of an SPL token account, reduced to the fields
// the engine reads.
type Account struct {
	Address solana.PublicKey

	// Mint associated with the account
	Mint solana.PublicKey

	// Owner of the account
	Owner solana.PublicKey

	// Number of tokens the account holds
	Amount uint64

	// True if the account is initialized
	IsInitialized bool

	// True if the account is frozen
	IsFrozen bool

	// True if the account is a native token account
	IsNative bool
}

// tokenAccountLayout https://github.com/solana-labs/solana-program-library/blob/d72289c79a04411c69a8bf1054f7156b6196f9b3/token/js/src/state/account.ts#L69
type tokenAccountLayout struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             *solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             *uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       *solana.PublicKey
}

type AccountLayout struct {
}

func (l *AccountLayout) Decode(data []byte) (*Account, error) {
	rawAccount := &tokenAccountLayout{}
	if err := binary.NewBinDecoder(data).Decode(rawAccount); err != nil {
		return nil, err
	}
	return &Account{
		Mint:          rawAccount.Mint,
		Owner:         rawAccount.Owner,
		Amount:        rawAccount.Amount,
		IsInitialized: AccountState(rawAccount.State) != AccountStateUninitialized,
		IsFrozen:      AccountState(rawAccount.State) == AccountStateFrozen,
		IsNative:      rawAccount.IsNativeOption > 0,
	}, nil
}
