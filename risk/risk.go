// Package risk scores launched assets with a weighted multi-factor model.
// Scores run 0-100 where higher is riskier. Analysis is best-effort: data
// source failures lower confidence instead of failing the call.
package risk

import (
	solana "github.com/gagliardetto/solana-go"
)

type Level string

const (
	LevelSafe     Level = "SAFE"
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Factors holds the per-dimension scores before weighting.
type Factors struct {
	Age           float64
	Creator       float64
	Liquidity     float64
	Concentration float64
	Contract      float64
	Social        float64
	Market        float64
}

// Factor weights; they sum to 1.
const (
	weightAge           = 0.15
	weightCreator       = 0.20
	weightLiquidity     = 0.25
	weightConcentration = 0.15
	weightContract      = 0.10
	weightSocial        = 0.05
	weightMarket        = 0.10
)

// Assessment is the scored outcome for one mint.
type Assessment struct {
	Mint       solana.PublicKey
	Level      Level
	Score      float64
	Confidence float64
	Factors    Factors
	Reasons    []string
}

// weighted collapses the factor vector into the composite score.
func (f Factors) weighted() float64 {
	return f.Age*weightAge +
		f.Creator*weightCreator +
		f.Liquidity*weightLiquidity +
		f.Concentration*weightConcentration +
		f.Contract*weightContract +
		f.Social*weightSocial +
		f.Market*weightMarket
}

func levelFor(score float64) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	case score >= 20:
		return LevelLow
	default:
		return LevelSafe
	}
}
