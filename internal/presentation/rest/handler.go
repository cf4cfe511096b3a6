package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/application/usecase"
	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/infrastructure/csvbatch"
)

const (
	maxJSONBody     = 1 << 20  // 1 MB
	maxUploadMemory = 32 << 20 // 32 MB
)

// RiskHandler serves the scoring API.
type RiskHandler struct {
	score   *usecase.ScoreTransaction
	batch   *usecase.ScoreBatch
	history *usecase.GetRiskHistory
	reset   *usecase.ResetHistory
	logger  *slog.Logger
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(
	score *usecase.ScoreTransaction,
	batch *usecase.ScoreBatch,
	history *usecase.GetRiskHistory,
	reset *usecase.ResetHistory,
	logger *slog.Logger,
) *RiskHandler {
	return &RiskHandler{
		score:   score,
		batch:   batch,
		history: history,
		reset:   reset,
		logger:  logger,
	}
}

// RegisterRoutes registers the scoring endpoints on the provided ServeMux.
func (h *RiskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("GET /risk_history/{user_id}", h.RiskHistory)
	mux.HandleFunc("POST /upload_csv", h.UploadCSV)
	mux.HandleFunc("POST /reset", h.Reset)
	mux.HandleFunc("GET /health", h.Health)
}

// Predict scores a single transaction.
func (h *RiskHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreTransactionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.score.Execute(r.Context(), req)
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RiskHistory lists a user's scores in the order they were recorded.
func (h *RiskHandler) RiskHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.history.Execute(r.PathValue("user_id")))
}

// UploadCSV scores every row of an uploaded CSV file.
func (h *RiskHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form file \"file\"")
		return
	}
	defer file.Close()

	rows, err := csvbatch.Parse(file)
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}

	resp, err := h.batch.Execute(r.Context(), dto.ScoreBatchRequest{Rows: rows})
	if err != nil {
		h.writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset clears every user's history.
func (h *RiskHandler) Reset(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.reset.Execute())
}

// Health is the lightweight liveness check kept for existing clients.
func (h *RiskHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *RiskHandler) writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, status, err.Error())
}

// httpStatus maps use case errors to HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidTransaction):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrScoringFailed), errors.Is(err, model.ErrExplanationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, map[string]string{"error": msg})
}
