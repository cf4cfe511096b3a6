package model

import "time"

// Observation is one previously scored transaction retained in a user's history.
type Observation struct {
	Timestamp time.Time
	DeviceID  string
	Amount    float64
	RiskScore float64
}

// ObservationFrom captures the parts of a scored transaction that later
// feature derivation needs.
func ObservationFrom(txn Transaction, riskScore float64) Observation {
	return Observation{
		Amount:    txn.Amount,
		Timestamp: txn.Timestamp,
		DeviceID:  txn.DeviceID,
		RiskScore: riskScore,
	}
}
