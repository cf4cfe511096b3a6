package port

import (
	"context"

	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
	"github.com/bibbank/risk-service/pkg/events"
)

// HistoryStore is the per-user log of scored observations.
type HistoryStore interface {
	// Get returns a copy of the user's observations in insertion order.
	// Unknown users yield an empty slice.
	Get(userID string) []model.Observation

	// Append adds an observation, creating the user's log if needed.
	Append(userID string, obs model.Observation)

	// Update runs fn with the user's prior observations while holding the
	// user's lock and appends the observation fn returns. Nothing is appended
	// when fn fails. fn must not call back into the store.
	Update(ctx context.Context, userID string, fn func(prior []model.Observation) (model.Observation, error)) error

	// ResetAll discards every user's history atomically.
	ResetAll()
}

// Scorer produces the fraud probability for a feature vector.
type Scorer interface {
	PredictProbability(ctx context.Context, features model.FeatureVector) (float64, error)
}

// Explainer attributes a score to individual features. Contributions are
// returned in the model's feature order.
type Explainer interface {
	Attribute(ctx context.Context, features model.FeatureVector) ([]model.Contribution, error)
}

// Summarizer writes a short narrative for a scored transaction.
type Summarizer interface {
	Summarize(ctx context.Context, riskScore float64, riskLevel valueobject.RiskLevel, reasons []string) (string, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// ScoreArchive keeps an audit trail of score results. It is write-only;
// nothing in the scoring path reads it back.
type ScoreArchive interface {
	Save(ctx context.Context, txn model.Transaction, result model.ScoreResult) error
}

// MetricsRecorder receives scoring telemetry.
type MetricsRecorder interface {
	TransactionScored(ctx context.Context, level valueobject.RiskLevel, seconds float64)
	ScoringFailed(ctx context.Context, stage string)
	SummarizerFallback(ctx context.Context)
}
