// Package events carries the in-process notification stream shared by the
// snipe and campaign orchestrators. Publishing never blocks; slow
// subscribers lose events rather than stalling the hot path.
package events

import (
	"time"

	solana "github.com/gagliardetto/solana-go"
)

type Kind string

const (
	KindAssetCreated      Kind = "asset_created"
	KindWalletFunded      Kind = "wallet_funded"
	KindTradeExecuted     Kind = "trade_executed"
	KindPhaseChanged      Kind = "phase_changed"
	KindCampaignCompleted Kind = "campaign_completed"
	KindSnipeExecuted     Kind = "snipe_executed"
)

// Event is a closed tagged union. Kind selects which payload pointer is set;
// all others are nil.
type Event struct {
	Kind Kind
	Time time.Time

	AssetCreated      *AssetCreated
	WalletFunded      *WalletFunded
	TradeExecuted     *TradeExecuted
	PhaseChanged      *PhaseChanged
	CampaignCompleted *CampaignCompleted
	SnipeExecuted     *SnipeExecuted
}

// AssetCreated announces a newly launched or newly observed asset.
type AssetCreated struct {
	Mint      solana.PublicKey
	Creator   solana.PublicKey
	Name      string
	Symbol    string
	Signature string
}

// WalletFunded reports a fleet wallet becoming eligible with its balance.
type WalletFunded struct {
	Wallet   solana.PublicKey
	Lamports uint64
}

// TradeExecuted reports a confirmed buy or sell.
type TradeExecuted struct {
	Mint      solana.PublicKey
	Wallet    solana.PublicKey
	Side      string // "buy" or "sell"
	AmountIn  uint64
	Signature string
}

// PhaseChanged marks a campaign state transition.
type PhaseChanged struct {
	LaunchID string
	Mint     solana.PublicKey
	From     string
	To       string
}

// CampaignCompleted carries the terminal outcome of a campaign, including
// the exit signal that triggered extraction.
type CampaignCompleted struct {
	LaunchID   string
	Mint       solana.PublicKey
	Final      string // "COMPLETE" or "FAILED"
	ExitSignal string
	NetProfit  int64
}

// SnipeExecuted reports one snipe attempt outcome, success or failure.
type SnipeExecuted struct {
	AttemptID string
	Mint      solana.PublicKey
	Wallets   int
	BundleID  string
	Err       string
}
