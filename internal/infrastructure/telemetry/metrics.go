// Package telemetry records scoring metrics through the OpenTelemetry meter API.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/risk-service/internal/domain/port"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
	"github.com/bibbank/risk-service/internal/infrastructure/memory"
)

const meterName = "github.com/bibbank/risk-service"

var _ port.MetricsRecorder = (*ScoringMetrics)(nil)

// ScoringMetrics implements port.MetricsRecorder.
type ScoringMetrics struct {
	scored    metric.Int64Counter
	failures  metric.Int64Counter
	fallbacks metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewScoringMetrics registers the scoring instruments on provider.
func NewScoringMetrics(provider metric.MeterProvider) (*ScoringMetrics, error) {
	meter := provider.Meter(meterName)

	scored, err := meter.Int64Counter("risk_transactions_scored_total",
		metric.WithDescription("Transactions scored, by risk level."))
	if err != nil {
		return nil, fmt.Errorf("failed to create scored counter: %w", err)
	}
	failures, err := meter.Int64Counter("risk_scoring_failures_total",
		metric.WithDescription("Scoring requests that failed, by pipeline stage."))
	if err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}
	fallbacks, err := meter.Int64Counter("risk_summarizer_fallbacks_total",
		metric.WithDescription("Summaries replaced by the fallback text."))
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback counter: %w", err)
	}
	duration, err := meter.Float64Histogram("risk_scoring_duration_seconds",
		metric.WithDescription("Time spent scoring a single transaction."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &ScoringMetrics{
		scored:    scored,
		failures:  failures,
		fallbacks: fallbacks,
		duration:  duration,
	}, nil
}

func (m *ScoringMetrics) TransactionScored(ctx context.Context, level valueobject.RiskLevel, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("risk_level", level.String()))
	m.scored.Add(ctx, 1, attrs)
	m.duration.Record(ctx, seconds, attrs)
}

func (m *ScoringMetrics) ScoringFailed(ctx context.Context, stage string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *ScoringMetrics) SummarizerFallback(ctx context.Context) {
	m.fallbacks.Add(ctx, 1)
}

// HistorySizer reports the behavioral history's size.
type HistorySizer interface {
	Stats() memory.Stats
}

// RegisterHistoryGauges exposes the history's user and observation counts,
// read from history on every collection.
func RegisterHistoryGauges(provider metric.MeterProvider, history HistorySizer) (metric.Registration, error) {
	meter := provider.Meter(meterName)

	users, err := meter.Int64ObservableGauge("risk_history_users",
		metric.WithDescription("Users with at least one recorded observation."))
	if err != nil {
		return nil, fmt.Errorf("failed to create history users gauge: %w", err)
	}
	observations, err := meter.Int64ObservableGauge("risk_history_observations",
		metric.WithDescription("Observations held in the in-memory history."))
	if err != nil {
		return nil, fmt.Errorf("failed to create history observations gauge: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := history.Stats()
		o.ObserveInt64(users, int64(stats.Users))
		o.ObserveInt64(observations, int64(stats.Observations))
		return nil
	}, users, observations)
	if err != nil {
		return nil, fmt.Errorf("failed to register history gauges: %w", err)
	}
	return reg, nil
}
