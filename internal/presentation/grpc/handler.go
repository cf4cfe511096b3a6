package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/application/usecase"
	"github.com/bibbank/risk-service/internal/domain/model"
)

// Compile-time assertion that RiskServiceHandler implements RiskServiceServer.
var _ RiskServiceServer = (*RiskServiceHandler)(nil)

// RiskServiceHandler implements the gRPC RiskServiceServer interface.
type RiskServiceHandler struct {
	UnimplementedRiskServiceServer
	score   *usecase.ScoreTransaction
	history *usecase.GetRiskHistory
	reset   *usecase.ResetHistory
	logger  *slog.Logger
}

// NewRiskServiceHandler creates a new gRPC handler.
func NewRiskServiceHandler(
	score *usecase.ScoreTransaction,
	history *usecase.GetRiskHistory,
	reset *usecase.ResetHistory,
	logger *slog.Logger,
) *RiskServiceHandler {
	return &RiskServiceHandler{
		score:   score,
		history: history,
		reset:   reset,
		logger:  logger,
	}
}

// Proto-aligned request/response message types. Balance and amount fields are
// proto3 optional doubles so an omitted value is reported as missing.

// ScoreTransactionRequest represents the proto ScoreTransactionRequest message.
type ScoreTransactionRequest struct {
	TransactionID  string   `json:"transaction_id"`
	UserID         string   `json:"user_id"`
	Timestamp      string   `json:"timestamp"`
	DeviceID       string   `json:"device_id"`
	Amount         *float64 `json:"amount"`
	OldBalanceOrg  *float64 `json:"old_balance_org"`
	NewBalanceOrig *float64 `json:"new_balance_orig"`
	OldBalanceDest *float64 `json:"old_balance_dest"`
	NewBalanceDest *float64 `json:"new_balance_dest"`
}

// ScoreTransactionResponse represents the proto ScoreTransactionResponse message.
type ScoreTransactionResponse struct {
	TransactionID string   `json:"transaction_id"`
	RiskScore     float64  `json:"risk_score"`
	RiskLevel     string   `json:"risk_level"`
	Reasons       []string `json:"reasons"`
	Summary       string   `json:"summary"`
}

// GetRiskHistoryRequest represents the proto GetRiskHistoryRequest message.
type GetRiskHistoryRequest struct {
	UserID string `json:"user_id"`
}

// RiskHistoryEntryMsg represents the proto RiskHistoryEntry message.
type RiskHistoryEntryMsg struct {
	Timestamp string  `json:"timestamp"`
	RiskScore float64 `json:"risk_score"`
}

// GetRiskHistoryResponse represents the proto GetRiskHistoryResponse message.
type GetRiskHistoryResponse struct {
	Entries []*RiskHistoryEntryMsg `json:"entries"`
}

// ResetHistoryRequest represents the proto ResetHistoryRequest message.
type ResetHistoryRequest struct{}

// ResetHistoryResponse represents the proto ResetHistoryResponse message.
type ResetHistoryResponse struct {
	Status string `json:"status"`
}

// ScoreTransaction scores one transaction against the user's history.
func (h *RiskServiceHandler) ScoreTransaction(ctx context.Context, req *ScoreTransactionRequest) (*ScoreTransactionResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	resp, err := h.score.Execute(ctx, dto.ScoreTransactionRequest{
		TransactionID:  req.TransactionID,
		UserID:         req.UserID,
		Timestamp:      req.Timestamp,
		DeviceID:       req.DeviceID,
		Amount:         req.Amount,
		OldBalanceOrg:  req.OldBalanceOrg,
		NewBalanceOrig: req.NewBalanceOrig,
		OldBalanceDest: req.OldBalanceDest,
		NewBalanceDest: req.NewBalanceDest,
	})
	if err != nil {
		return nil, h.toStatus(err, req.TransactionID)
	}

	return &ScoreTransactionResponse{
		TransactionID: resp.TransactionID,
		RiskScore:     resp.RiskScore,
		RiskLevel:     resp.RiskLevel,
		Reasons:       resp.Reasons,
		Summary:       resp.Summary,
	}, nil
}

// GetRiskHistory returns the user's recorded scores in insertion order.
func (h *RiskServiceHandler) GetRiskHistory(_ context.Context, req *GetRiskHistoryRequest) (*GetRiskHistoryResponse, error) {
	if req == nil || req.UserID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	history := h.history.Execute(req.UserID)
	entries := make([]*RiskHistoryEntryMsg, len(history.RiskHistory))
	for i, e := range history.RiskHistory {
		entries[i] = &RiskHistoryEntryMsg{Timestamp: e.Timestamp, RiskScore: e.RiskScore}
	}
	return &GetRiskHistoryResponse{Entries: entries}, nil
}

// ResetHistory discards every user's history.
func (h *RiskServiceHandler) ResetHistory(context.Context, *ResetHistoryRequest) (*ResetHistoryResponse, error) {
	return &ResetHistoryResponse{Status: h.reset.Execute().Status}, nil
}

func (h *RiskServiceHandler) toStatus(err error, transactionID string) error {
	switch {
	case errors.Is(err, model.ErrInvalidTransaction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrScoringFailed), errors.Is(err, model.ErrExplanationFailed):
		h.logger.Warn("scoring unavailable",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
		return status.Error(codes.Unavailable, err.Error())
	default:
		h.logger.Error("failed to score transaction",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
		return status.Error(codes.Internal, "internal error")
	}
}
