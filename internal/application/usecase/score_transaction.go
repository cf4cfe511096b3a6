package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/domain/event"
	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/port"
	"github.com/bibbank/risk-service/internal/domain/service"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
	"github.com/bibbank/risk-service/pkg/events"
	"github.com/bibbank/risk-service/pkg/observability"
)

// DefaultSummaryTimeout bounds a single summarizer call.
const DefaultSummaryTimeout = 10 * time.Second

// Failure stages reported to the metrics recorder.
const (
	stageValidation = "validation"
	stageHistory    = "history"
	stageScorer     = "scorer"
	stageExplainer  = "explainer"
)

// ScoreOption configures optional collaborators of ScoreTransaction.
type ScoreOption func(*ScoreTransaction)

// WithArchive saves every score result to an audit archive.
func WithArchive(archive port.ScoreArchive) ScoreOption {
	return func(uc *ScoreTransaction) {
		uc.archive = archive
	}
}

// WithMetrics records scoring telemetry.
func WithMetrics(metrics port.MetricsRecorder) ScoreOption {
	return func(uc *ScoreTransaction) {
		uc.metrics = metrics
	}
}

// WithSummaryTimeout overrides DefaultSummaryTimeout.
func WithSummaryTimeout(d time.Duration) ScoreOption {
	return func(uc *ScoreTransaction) {
		if d > 0 {
			uc.summaryTimeout = d
		}
	}
}

// ScoreTransaction is the use case that scores one transaction against the
// user's behavioral history and records the outcome in that history.
type ScoreTransaction struct {
	history        port.HistoryStore
	scorer         port.Scorer
	explainer      port.Explainer
	summarizer     port.Summarizer
	publisher      port.EventPublisher
	archive        port.ScoreArchive
	metrics        port.MetricsRecorder
	deriver        *service.FeatureDeriver
	mapper         *service.ExplanationMapper
	logger         *slog.Logger
	summaryTimeout time.Duration
}

// NewScoreTransaction creates a new ScoreTransaction use case.
func NewScoreTransaction(
	history port.HistoryStore,
	scorer port.Scorer,
	explainer port.Explainer,
	summarizer port.Summarizer,
	publisher port.EventPublisher,
	logger *slog.Logger,
	opts ...ScoreOption,
) *ScoreTransaction {
	uc := &ScoreTransaction{
		history:        history,
		scorer:         scorer,
		explainer:      explainer,
		summarizer:     summarizer,
		publisher:      publisher,
		metrics:        noopMetrics{},
		deriver:        service.NewFeatureDeriver(),
		mapper:         service.NewExplanationMapper(),
		logger:         logger,
		summaryTimeout: DefaultSummaryTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute validates the request, scores the transaction and returns the
// result with a narrative summary.
func (uc *ScoreTransaction) Execute(ctx context.Context, req dto.ScoreTransactionRequest) (dto.ScoreResponse, error) {
	txn, err := req.ToTransaction()
	if err != nil {
		uc.metrics.ScoringFailed(ctx, stageValidation)
		return dto.ScoreResponse{}, err
	}

	result, err := uc.score(ctx, txn, true)
	if err != nil {
		return dto.ScoreResponse{}, err
	}
	return dto.FromScoreResult(result), nil
}

// score runs the scoring protocol for a validated transaction. Derivation,
// scoring, explanation and the history append happen under the user's lock;
// the summarizer runs after the lock is released.
func (uc *ScoreTransaction) score(ctx context.Context, txn model.Transaction, summarize bool) (model.ScoreResult, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "risk.score_transaction",
		attribute.String("transaction.id", txn.TransactionID),
		attribute.String("user.id", txn.UserID),
	)
	defer span.End()

	var result model.ScoreResult
	err := uc.history.Update(ctx, txn.UserID, func(prior []model.Observation) (model.Observation, error) {
		features := uc.deriver.Derive(txn, prior)

		p, err := uc.scorer.PredictProbability(ctx, features)
		if err != nil {
			return model.Observation{}, fmt.Errorf("%w: %w", model.ErrScoringFailed, err)
		}
		if math.IsNaN(p) || p < 0 || p > 1 {
			return model.Observation{}, fmt.Errorf("%w: probability %v outside [0,1]", model.ErrScoringFailed, p)
		}

		contributions, err := uc.explainer.Attribute(ctx, features)
		if err != nil {
			return model.Observation{}, fmt.Errorf("%w: %w", model.ErrExplanationFailed, err)
		}

		riskScore := model.ScoreFromProbability(p)
		top := service.TopContributors(contributions, service.MaxReasons)

		result = model.ScoreResult{
			TransactionID: txn.TransactionID,
			RiskScore:     riskScore,
			RiskLevel:     valueobject.ClassifyRisk(riskScore),
			Reasons:       uc.mapper.Explain(top),
			Features:      features,
		}
		return model.ObservationFrom(txn, riskScore), nil
	})
	if err != nil {
		stage := failureStage(err)
		uc.metrics.ScoringFailed(ctx, stage)
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		uc.logger.Error("transaction scoring failed",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("user_id", txn.UserID),
			slog.String("stage", stage),
			slog.String("error", err.Error()),
		)
		if stage == stageHistory {
			return model.ScoreResult{}, fmt.Errorf("failed to acquire history for user %s: %w", txn.UserID, err)
		}
		return model.ScoreResult{}, err
	}

	span.SetAttributes(
		attribute.Float64("risk.score", result.RiskScore),
		attribute.String("risk.level", result.RiskLevel.String()),
	)

	if summarize {
		result.Summary = uc.summarize(ctx, result)
	}

	uc.publish(ctx, txn, result)
	uc.save(ctx, txn, result)
	uc.metrics.TransactionScored(ctx, result.RiskLevel, time.Since(start).Seconds())

	uc.logger.Info("transaction scored",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("user_id", txn.UserID),
		slog.Float64("risk_score", result.RiskScore),
		slog.String("risk_level", result.RiskLevel.String()),
	)
	return result, nil
}

func (uc *ScoreTransaction) summarize(ctx context.Context, result model.ScoreResult) string {
	ctx, cancel := context.WithTimeout(ctx, uc.summaryTimeout)
	defer cancel()

	summary, err := uc.summarizer.Summarize(ctx, result.RiskScore, result.RiskLevel, result.Reasons)
	if err == nil && summary != "" {
		return summary
	}

	uc.metrics.SummarizerFallback(ctx)
	attrs := []any{slog.String("transaction_id", result.TransactionID)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	uc.logger.Warn("summary unavailable, using fallback", attrs...)
	return model.FallbackSummary
}

func (uc *ScoreTransaction) publish(ctx context.Context, txn model.Transaction, result model.ScoreResult) {
	evts := []events.DomainEvent{
		event.NewTransactionScored(txn.TransactionID, txn.UserID, result.RiskScore, result.RiskLevel.String(), result.Reasons),
	}
	if result.RiskLevel.Equal(valueobject.RiskLevelHigh) {
		evts = append(evts, event.NewHighRiskDetected(txn.TransactionID, txn.UserID, result.RiskScore, result.Reasons))
	}

	if err := uc.publisher.Publish(ctx, evts...); err != nil {
		uc.logger.Warn("failed to publish score events",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()),
		)
	}
}

func (uc *ScoreTransaction) save(ctx context.Context, txn model.Transaction, result model.ScoreResult) {
	if uc.archive == nil {
		return
	}
	if err := uc.archive.Save(ctx, txn, result); err != nil {
		uc.logger.Warn("failed to archive score",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()),
		)
	}
}

func failureStage(err error) string {
	switch {
	case errors.Is(err, model.ErrScoringFailed):
		return stageScorer
	case errors.Is(err, model.ErrExplanationFailed):
		return stageExplainer
	default:
		return stageHistory
	}
}

type noopMetrics struct{}

func (noopMetrics) TransactionScored(context.Context, valueobject.RiskLevel, float64) {}
func (noopMetrics) ScoringFailed(context.Context, string) {}
func (noopMetrics) SummarizerFallback(context.Context) {}
