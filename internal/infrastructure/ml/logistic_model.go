package ml

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/port"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
)

// Compile-time interface checks.
var (
	_ port.Scorer    = (*LogisticModel)(nil)
	_ port.Explainer = (*LogisticModel)(nil)
)

//go:embed default_model.json
var defaultArtifact []byte

// artifact is the on-disk model format. The order of Features is the
// positional ordering the model was trained with.
type artifact struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Features  []featureArtifact `json:"features"`
	Intercept float64           `json:"intercept"`
}

type featureArtifact struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
}

// LogisticModel is a standardized logistic-regression fraud model. It serves
// as both Scorer and Explainer: for a linear margin the attribution of each
// feature against the training mean is exact.
type LogisticModel struct {
	logger    *slog.Logger
	name      string
	version   string
	schema    valueobject.FeatureSchema
	weights   []float64
	means     []float64
	scales    []float64
	intercept float64
}

// LoadModel reads a model artifact from path. An empty path loads the
// bundled default model.
func LoadModel(path string, logger *slog.Logger) (*LogisticModel, error) {
	data := defaultArtifact
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read model artifact: %w", err)
		}
	}

	m, err := ParseModel(data, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("model loaded",
		slog.String("name", m.name),
		slog.String("version", m.version),
		slog.String("features", m.schema.String()),
	)
	return m, nil
}

// ParseModel decodes and validates a model artifact.
func ParseModel(data []byte, logger *slog.Logger) (*LogisticModel, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}

	names := make([]string, len(a.Features))
	for i, f := range a.Features {
		names[i] = f.Name
	}
	schema, err := valueobject.NewFeatureSchema(names)
	if err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	m := &LogisticModel{
		logger:    logger,
		name:      a.Name,
		version:   a.Version,
		schema:    schema,
		intercept: a.Intercept,
		weights:   make([]float64, len(a.Features)),
		means:     make([]float64, len(a.Features)),
		scales:    make([]float64, len(a.Features)),
	}
	for i, f := range a.Features {
		if f.Scale <= 0 || math.IsNaN(f.Scale) {
			return nil, fmt.Errorf("invalid model artifact: feature %q has non-positive scale", f.Name)
		}
		m.weights[i] = f.Weight
		m.means[i] = f.Mean
		m.scales[i] = f.Scale
	}
	return m, nil
}

// Schema returns the feature ordering the model expects.
func (m *LogisticModel) Schema() valueobject.FeatureSchema {
	return m.schema
}

// PredictProbability returns the fraud probability for the feature vector.
func (m *LogisticModel) PredictProbability(ctx context.Context, features model.FeatureVector) (float64, error) {
	margin := m.intercept
	for _, c := range m.contributions(features) {
		margin += c
	}
	if math.IsNaN(margin) {
		return 0, fmt.Errorf("model margin is not a number")
	}

	p := sigmoid(margin)
	m.logger.Debug("model prediction",
		slog.String("model", m.name),
		slog.Float64("margin", margin),
		slog.Float64("probability", p),
	)
	return p, nil
}

// Attribute returns each feature's signed contribution to the log-odds, in
// schema order.
func (m *LogisticModel) Attribute(ctx context.Context, features model.FeatureVector) ([]model.Contribution, error) {
	values := m.contributions(features)
	out := make([]model.Contribution, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			return nil, fmt.Errorf("contribution for %s is not a number", m.schema.At(i))
		}
		out[i] = model.Contribution{Feature: m.schema.At(i), Value: v}
	}
	return out, nil
}

func (m *LogisticModel) contributions(features model.FeatureVector) []float64 {
	x := features.Values(m.schema)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = m.weights[i] * (v - m.means[i]) / m.scales[i]
	}
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
