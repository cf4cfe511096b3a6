package usecase

import (
	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/domain/port"
)

// GetRiskHistory is the use case for reading a user's score history.
type GetRiskHistory struct {
	history port.HistoryStore
}

// NewGetRiskHistory creates a new GetRiskHistory use case.
func NewGetRiskHistory(history port.HistoryStore) *GetRiskHistory {
	return &GetRiskHistory{history: history}
}

// Execute returns the user's scores in insertion order. Unknown users have
// an empty history.
func (uc *GetRiskHistory) Execute(userID string) dto.RiskHistoryResponse {
	return dto.FromObservations(uc.history.Get(userID))
}
