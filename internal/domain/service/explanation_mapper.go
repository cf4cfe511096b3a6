package service

import (
	"fmt"
	"sort"

	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
)

// MaxReasons caps how many contributing features are explained per score.
const MaxReasons = 3

var featureExplanations = map[valueobject.Feature]string{
	valueobject.FeatureAmountDeviation: "Transaction amount significantly deviates from user's historical average.",
	valueobject.FeatureDeviceChanged:   "Transaction initiated from a new or different device.",
	valueobject.FeatureTimeDiffMinutes: "Very short time gap between consecutive transactions.",
	valueobject.FeatureOldBalanceOrg:   "Unusual sender balance pattern detected.",
	valueobject.FeatureNewBalanceOrig:  "Suspicious change in sender's account balance.",
	valueobject.FeatureNewBalanceDest:  "Unusual shift in destination account balance.",
	valueobject.FeatureNightFlag:       "Transaction occurred during unusual night hours.",
}

// ExplanationMapper turns feature names into human-readable reasons.
type ExplanationMapper struct{}

// NewExplanationMapper creates a new ExplanationMapper.
func NewExplanationMapper() *ExplanationMapper {
	return &ExplanationMapper{}
}

// Explain maps each feature to its reason, preserving order and length.
func (m *ExplanationMapper) Explain(features []valueobject.Feature) []string {
	reasons := make([]string, 0, len(features))
	for _, f := range features {
		reasons = append(reasons, m.reasonFor(f))
	}
	return reasons
}

func (m *ExplanationMapper) reasonFor(f valueobject.Feature) string {
	if reason, ok := featureExplanations[f]; ok {
		return reason
	}
	return fmt.Sprintf("%s influenced the risk score.", f)
}

// TopContributors returns up to limit features with a strictly positive
// contribution, largest first. Ties keep the explainer's ordering.
func TopContributors(contributions []model.Contribution, limit int) []valueobject.Feature {
	positive := make([]model.Contribution, 0, len(contributions))
	for _, c := range contributions {
		if c.Value > 0 {
			positive = append(positive, c)
		}
	}

	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].Value > positive[j].Value
	})

	if len(positive) > limit {
		positive = positive[:limit]
	}

	top := make([]valueobject.Feature, len(positive))
	for i, c := range positive {
		top[i] = c.Feature
	}
	return top
}
