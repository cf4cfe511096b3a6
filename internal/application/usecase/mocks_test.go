package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
	"github.com/bibbank/risk-service/pkg/events"
)

// --- Mock implementations ---

type mockScorer struct {
	mu          sync.Mutex
	seen        []model.FeatureVector
	predictFunc func(fv model.FeatureVector) (float64, error)
}

func (m *mockScorer) PredictProbability(_ context.Context, fv model.FeatureVector) (float64, error) {
	m.mu.Lock()
	m.seen = append(m.seen, fv)
	m.mu.Unlock()
	if m.predictFunc != nil {
		return m.predictFunc(fv)
	}
	return 0.5, nil
}

func (m *mockScorer) features() []model.FeatureVector {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.FeatureVector, len(m.seen))
	copy(out, m.seen)
	return out
}

type mockExplainer struct {
	attributeFunc func(fv model.FeatureVector) ([]model.Contribution, error)
}

func (m *mockExplainer) Attribute(_ context.Context, fv model.FeatureVector) ([]model.Contribution, error) {
	if m.attributeFunc != nil {
		return m.attributeFunc(fv)
	}
	return []model.Contribution{
		{Feature: valueobject.FeatureDeviceChanged, Value: 0.3},
		{Feature: valueobject.FeatureNightFlag, Value: -0.1},
	}, nil
}

type mockSummarizer struct {
	calls         atomic.Int32
	summarizeFunc func(ctx context.Context) (string, error)
}

func (m *mockSummarizer) Summarize(ctx context.Context, _ float64, _ valueobject.RiskLevel, _ []string) (string, error) {
	m.calls.Add(1)
	if m.summarizeFunc != nil {
		return m.summarizeFunc(ctx)
	}
	return "Looks fine.", nil
}

type mockEventPublisher struct {
	mu          sync.Mutex
	published   []events.DomainEvent
	publishFunc func(evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(evts...)
	}
	m.mu.Lock()
	m.published = append(m.published, evts...)
	m.mu.Unlock()
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.published))
	for i, e := range m.published {
		out[i] = e.EventType()
	}
	return out
}

type mockArchive struct {
	mu       sync.Mutex
	saved    []model.ScoreResult
	saveFunc func() error
}

func (m *mockArchive) Save(_ context.Context, _ model.Transaction, result model.ScoreResult) error {
	if m.saveFunc != nil {
		return m.saveFunc()
	}
	m.mu.Lock()
	m.saved = append(m.saved, result)
	m.mu.Unlock()
	return nil
}

type mockMetrics struct {
	mu        sync.Mutex
	scored    map[string]int
	failures  map[string]int
	fallbacks int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{scored: map[string]int{}, failures: map[string]int{}}
}

func (m *mockMetrics) TransactionScored(_ context.Context, level valueobject.RiskLevel, _ float64) {
	m.mu.Lock()
	m.scored[level.String()]++
	m.mu.Unlock()
}

func (m *mockMetrics) ScoringFailed(_ context.Context, stage string) {
	m.mu.Lock()
	m.failures[stage]++
	m.mu.Unlock()
}

func (m *mockMetrics) SummarizerFallback(context.Context) {
	m.mu.Lock()
	m.fallbacks++
	m.mu.Unlock()
}

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

func txnRequest(id, user, ts, device string, amount float64) dto.ScoreTransactionRequest {
	return dto.ScoreTransactionRequest{
		TransactionID:  id,
		UserID:         user,
		Timestamp:      ts,
		DeviceID:       device,
		Amount:         ptr(amount),
		OldBalanceOrg:  ptr(0),
		NewBalanceOrig: ptr(0),
		OldBalanceDest: ptr(0),
		NewBalanceDest: ptr(0),
	}
}
