package valueobject

import (
	"fmt"
	"strings"
)

// Feature names one input column of the scoring model.
type Feature string

const (
	FeatureAmount          Feature = "amount"
	FeatureOldBalanceOrg   Feature = "oldbalanceOrg"
	FeatureNewBalanceOrig  Feature = "newbalanceOrig"
	FeatureOldBalanceDest  Feature = "oldbalanceDest"
	FeatureNewBalanceDest  Feature = "newbalanceDest"
	FeatureUserAvgAmount   Feature = "user_avg_amount"
	FeatureAmountDeviation Feature = "amount_deviation"
	FeatureTimeDiffMinutes Feature = "time_diff_minutes"
	FeatureDeviceChanged   Feature = "device_changed"
	FeatureNightFlag       Feature = "night_flag"
)

// AllFeatures lists every feature the deriver produces, in canonical order.
var AllFeatures = []Feature{
	FeatureAmount,
	FeatureOldBalanceOrg,
	FeatureNewBalanceOrig,
	FeatureOldBalanceDest,
	FeatureNewBalanceDest,
	FeatureUserAvgAmount,
	FeatureAmountDeviation,
	FeatureTimeDiffMinutes,
	FeatureDeviceChanged,
	FeatureNightFlag,
}

// IsKnown reports whether f is one of AllFeatures.
func (f Feature) IsKnown() bool {
	for _, known := range AllFeatures {
		if f == known {
			return true
		}
	}
	return false
}

// String returns the feature name.
func (f Feature) String() string {
	return string(f)
}

// FeatureSchema is the positional feature ordering a model was trained with.
// It always contains every known feature exactly once.
type FeatureSchema struct {
	order []Feature
}

// NewFeatureSchema validates names as a permutation of AllFeatures.
func NewFeatureSchema(names []string) (FeatureSchema, error) {
	if len(names) != len(AllFeatures) {
		return FeatureSchema{}, fmt.Errorf("feature schema has %d features, expected %d", len(names), len(AllFeatures))
	}

	seen := make(map[Feature]bool, len(names))
	order := make([]Feature, 0, len(names))
	for i, name := range names {
		f := Feature(name)
		if !f.IsKnown() {
			return FeatureSchema{}, fmt.Errorf("feature schema position %d: unknown feature %q", i, name)
		}
		if seen[f] {
			return FeatureSchema{}, fmt.Errorf("feature schema position %d: duplicate feature %q", i, name)
		}
		seen[f] = true
		order = append(order, f)
	}

	return FeatureSchema{order: order}, nil
}

// DefaultFeatureSchema returns the schema in canonical order.
func DefaultFeatureSchema() FeatureSchema {
	order := make([]Feature, len(AllFeatures))
	copy(order, AllFeatures)
	return FeatureSchema{order: order}
}

// Features returns a copy of the ordering.
func (s FeatureSchema) Features() []Feature {
	out := make([]Feature, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of features in the schema.
func (s FeatureSchema) Len() int {
	return len(s.order)
}

// At returns the feature at position i.
func (s FeatureSchema) At(i int) Feature {
	return s.order[i]
}

// String renders the ordering as a comma-separated list.
func (s FeatureSchema) String() string {
	names := make([]string, len(s.order))
	for i, f := range s.order {
		names[i] = string(f)
	}
	return strings.Join(names, ",")
}
