package service

import (
	"github.com/bibbank/risk-service/internal/domain/model"
)

// lastNightHour is the final hour of the day (inclusive) counted as night.
const lastNightHour = 5

// FeatureDeriver computes behavioral features for a transaction from the
// user's prior observations.
type FeatureDeriver struct{}

// NewFeatureDeriver creates a new FeatureDeriver.
func NewFeatureDeriver() *FeatureDeriver {
	return &FeatureDeriver{}
}

// Derive builds the feature vector for txn. history is the user's prior
// observations in insertion order and may be empty. Derive never fails:
// an empty history and a zero average both have defined fallbacks.
func (d *FeatureDeriver) Derive(txn model.Transaction, history []model.Observation) model.FeatureVector {
	userAvgAmount := txn.Amount
	timeDiffMinutes := 0.0
	deviceChanged := 0

	if len(history) > 0 {
		previous := history[len(history)-1]

		var total float64
		for _, obs := range history {
			total += obs.Amount
		}
		userAvgAmount = total / float64(len(history))

		// Out-of-order submissions produce a negative gap; it is passed through.
		timeDiffMinutes = txn.Timestamp.Sub(previous.Timestamp).Minutes()
		if txn.DeviceID != previous.DeviceID {
			deviceChanged = 1
		}
	}

	amountDeviation := 1.0
	if userAvgAmount != 0 {
		amountDeviation = txn.Amount / userAvgAmount
	}

	nightFlag := 0
	if txn.Timestamp.Hour() <= lastNightHour {
		nightFlag = 1
	}

	return model.FeatureVector{
		Amount:          txn.Amount,
		OldBalanceOrg:   txn.OldBalanceOrg,
		NewBalanceOrig:  txn.NewBalanceOrig,
		OldBalanceDest:  txn.OldBalanceDest,
		NewBalanceDest:  txn.NewBalanceDest,
		UserAvgAmount:   userAvgAmount,
		AmountDeviation: amountDeviation,
		TimeDiffMinutes: timeDiffMinutes,
		DeviceChanged:   deviceChanged,
		NightFlag:       nightFlag,
	}
}
