package dto

import "github.com/bibbank/risk-service/internal/domain/model"

// RiskHistoryEntry is one point in a user's risk history.
type RiskHistoryEntry struct {
	Timestamp string  `json:"timestamp"`
	RiskScore float64 `json:"risk_score"`
}

// RiskHistoryResponse lists a user's scores in the order they were recorded.
type RiskHistoryResponse struct {
	RiskHistory []RiskHistoryEntry `json:"risk_history"`
}

// FromObservations projects stored observations onto the history response.
func FromObservations(observations []model.Observation) RiskHistoryResponse {
	entries := make([]RiskHistoryEntry, len(observations))
	for i, obs := range observations {
		entries[i] = RiskHistoryEntry{
			Timestamp: model.FormatTimestamp(obs.Timestamp),
			RiskScore: obs.RiskScore,
		}
	}
	return RiskHistoryResponse{RiskHistory: entries}
}

// ResetResponse confirms that all history was cleared.
type ResetResponse struct {
	Status string `json:"status"`
}

// ResetStatus is the confirmation text returned after a reset.
const ResetStatus = "User history cleared successfully"
