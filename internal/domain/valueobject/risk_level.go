package valueobject

import "fmt"

// RiskLevel is an immutable value object representing the risk classification.
type RiskLevel struct {
	value string
}

var (
	RiskLevelLow    = RiskLevel{value: "Low"}
	RiskLevelMedium = RiskLevel{value: "Medium"}
	RiskLevelHigh   = RiskLevel{value: "High"}
)

const (
	highRiskThreshold   = 80.0
	mediumRiskThreshold = 40.0
)

// RiskLevelFromString reconstructs a RiskLevel from its string representation.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case "Low":
		return RiskLevelLow, nil
	case "Medium":
		return RiskLevelMedium, nil
	case "High":
		return RiskLevelHigh, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %s", s)
	}
}

// ClassifyRisk derives the RiskLevel for a risk score on the 0-100 scale.
// Each band is closed on its lower bound.
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score >= highRiskThreshold:
		return RiskLevelHigh
	case score >= mediumRiskThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return r.value
}

// IsZero returns true if the RiskLevel has not been set.
func (r RiskLevel) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskLevel.
func (r RiskLevel) Equal(other RiskLevel) bool {
	return r.value == other.value
}
