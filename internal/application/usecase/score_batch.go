package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/domain/model"
)

// ScoreBatch scores an uploaded batch through the same protocol as single
// submissions, one user at a time in timestamp order.
type ScoreBatch struct {
	scorer  *ScoreTransaction
	logger  *slog.Logger
	workers int
}

// NewScoreBatch creates a new ScoreBatch use case. workers bounds how many
// users are scored concurrently; each user's rows are always sequential.
func NewScoreBatch(scorer *ScoreTransaction, workers int, logger *slog.Logger) *ScoreBatch {
	if workers < 1 {
		workers = 1
	}
	return &ScoreBatch{
		scorer:  scorer,
		logger:  logger,
		workers: workers,
	}
}

// Execute validates every row, then scores them in (user, timestamp) order.
// A malformed row rejects the batch before anything is scored. A scoring
// failure aborts the batch; rows scored before it keep their history.
func (uc *ScoreBatch) Execute(ctx context.Context, req dto.ScoreBatchRequest) (dto.ScoreBatchResponse, error) {
	batchID := uuid.New()
	start := time.Now()

	txns := make([]model.Transaction, len(req.Rows))
	for i, row := range req.Rows {
		txn, err := row.ToTransaction()
		if err != nil {
			return dto.ScoreBatchResponse{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		txns[i] = txn
	}

	ordered := SequenceBatch(txns)
	results := make([]dto.BatchResult, len(ordered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for _, run := range splitByUser(ordered) {
		g.Go(func() error {
			for i := run.start; i < run.end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				txn := ordered[i]
				result, err := uc.scorer.score(gctx, txn, false)
				if err != nil {
					return fmt.Errorf("transaction %s: %w", txn.TransactionID, err)
				}
				results[i] = dto.BatchResult{
					TransactionID: result.TransactionID,
					RiskScore:     result.RiskScore,
					RiskLevel:     result.RiskLevel.String(),
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("batch aborted",
			slog.String("batch_id", batchID.String()),
			slog.Int("rows", len(ordered)),
			slog.String("error", err.Error()),
		)
		return dto.ScoreBatchResponse{}, err
	}

	uc.logger.Info("batch scored",
		slog.String("batch_id", batchID.String()),
		slog.Int("rows", len(ordered)),
		slog.Int("users", len(splitByUser(ordered))),
		slog.Duration("duration", time.Since(start)),
	)
	return dto.ScoreBatchResponse{Results: results}, nil
}
