package dto

import (
	"fmt"

	"github.com/bibbank/risk-service/internal/domain/model"
)

// ScoreTransactionRequest is the input DTO for scoring a single transaction.
// Numeric fields are pointers so an absent field is distinguishable from zero.
type ScoreTransactionRequest struct {
	Amount         *float64 `json:"amount"`
	OldBalanceOrg  *float64 `json:"oldbalanceOrg"`
	NewBalanceOrig *float64 `json:"newbalanceOrig"`
	OldBalanceDest *float64 `json:"oldbalanceDest"`
	NewBalanceDest *float64 `json:"newbalanceDest"`
	TransactionID  string   `json:"transaction_id"`
	UserID         string   `json:"user_id"`
	Timestamp      string   `json:"timestamp"`
	DeviceID       string   `json:"device_id"`
}

// ToTransaction validates the request and converts it to the domain model.
func (r ScoreTransactionRequest) ToTransaction() (model.Transaction, error) {
	numbers := []struct {
		name  string
		value *float64
	}{
		{"amount", r.Amount},
		{"oldbalanceOrg", r.OldBalanceOrg},
		{"newbalanceOrig", r.NewBalanceOrig},
		{"oldbalanceDest", r.OldBalanceDest},
		{"newbalanceDest", r.NewBalanceDest},
	}
	for _, n := range numbers {
		if n.value == nil {
			return model.Transaction{}, fmt.Errorf("%w: %s is required", model.ErrInvalidTransaction, n.name)
		}
	}

	return model.NewTransaction(
		r.TransactionID,
		r.UserID,
		r.Timestamp,
		r.DeviceID,
		*r.Amount,
		*r.OldBalanceOrg,
		*r.NewBalanceOrig,
		*r.OldBalanceDest,
		*r.NewBalanceDest,
	)
}

// ScoreResponse is the output DTO for a scored transaction.
type ScoreResponse struct {
	TransactionID string   `json:"transaction_id"`
	RiskLevel     string   `json:"risk_level"`
	Summary       string   `json:"llm_summary"`
	Reasons       []string `json:"reasons"`
	RiskScore     float64  `json:"risk_score"`
}

// FromScoreResult maps a domain score result to the response DTO.
func FromScoreResult(r model.ScoreResult) ScoreResponse {
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return ScoreResponse{
		TransactionID: r.TransactionID,
		RiskScore:     r.RiskScore,
		RiskLevel:     r.RiskLevel.String(),
		Reasons:       reasons,
		Summary:       r.Summary,
	}
}
