package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/risk-service/internal/domain/valueobject"
)

// FallbackSummary replaces the narrative summary when the summarizer fails.
const FallbackSummary = "explanation unavailable"

// ScoreResult is the outcome of scoring one transaction.
type ScoreResult struct {
	TransactionID string
	RiskLevel     valueobject.RiskLevel
	Summary       string
	Reasons       []string
	Features      FeatureVector
	RiskScore     float64
}

// ScoreFromProbability converts a fraud probability in [0,1] to a 0-100
// risk score rounded half away from zero to two decimal places.
func ScoreFromProbability(p float64) float64 {
	score, _ := decimal.NewFromFloat(p).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return score
}
