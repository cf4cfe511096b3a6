package model

import "github.com/bibbank/risk-service/internal/domain/valueobject"

// FeatureVector is the fixed-shape model input derived for one transaction.
type FeatureVector struct {
	Amount          float64
	OldBalanceOrg   float64
	NewBalanceOrig  float64
	OldBalanceDest  float64
	NewBalanceDest  float64
	UserAvgAmount   float64
	AmountDeviation float64
	TimeDiffMinutes float64
	DeviceChanged   int
	NightFlag       int
}

// Value returns the value of a single named feature.
func (v FeatureVector) Value(f valueobject.Feature) float64 {
	switch f {
	case valueobject.FeatureAmount:
		return v.Amount
	case valueobject.FeatureOldBalanceOrg:
		return v.OldBalanceOrg
	case valueobject.FeatureNewBalanceOrig:
		return v.NewBalanceOrig
	case valueobject.FeatureOldBalanceDest:
		return v.OldBalanceDest
	case valueobject.FeatureNewBalanceDest:
		return v.NewBalanceDest
	case valueobject.FeatureUserAvgAmount:
		return v.UserAvgAmount
	case valueobject.FeatureAmountDeviation:
		return v.AmountDeviation
	case valueobject.FeatureTimeDiffMinutes:
		return v.TimeDiffMinutes
	case valueobject.FeatureDeviceChanged:
		return float64(v.DeviceChanged)
	case valueobject.FeatureNightFlag:
		return float64(v.NightFlag)
	default:
		return 0
	}
}

// Values lays the vector out in the positional order of schema.
func (v FeatureVector) Values(schema valueobject.FeatureSchema) []float64 {
	out := make([]float64, schema.Len())
	for i := range out {
		out[i] = v.Value(schema.At(i))
	}
	return out
}

// Contribution attributes a signed share of a score to one feature.
type Contribution struct {
	Feature valueobject.Feature
	Value   float64
}
