package usecase

import (
	"log/slog"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/domain/port"
)

// ResetHistory is the use case for discarding every user's history.
type ResetHistory struct {
	history port.HistoryStore
	logger  *slog.Logger
}

// NewResetHistory creates a new ResetHistory use case.
func NewResetHistory(history port.HistoryStore, logger *slog.Logger) *ResetHistory {
	return &ResetHistory{history: history, logger: logger}
}

// Execute clears all history atomically.
func (uc *ResetHistory) Execute() dto.ResetResponse {
	uc.history.ResetAll()
	uc.logger.Info("risk history reset")
	return dto.ResetResponse{Status: dto.ResetStatus}
}
