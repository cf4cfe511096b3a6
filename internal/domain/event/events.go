package event

import (
	"github.com/bibbank/risk-service/pkg/events"
)

const (
	// EventTypeTransactionScored is emitted for every successfully scored transaction.
	EventTypeTransactionScored = "risk.transaction.scored"

	// EventTypeHighRiskDetected is emitted when a transaction is classified High.
	EventTypeHighRiskDetected = "risk.high_risk.detected"
)

// TransactionScored is published once a transaction has been scored and
// recorded in the user's history.
type TransactionScored struct {
	events.BaseEvent
	TransactionID string   `json:"transaction_id"`
	UserID        string   `json:"user_id"`
	RiskLevel     string   `json:"risk_level"`
	Reasons       []string `json:"reasons"`
	RiskScore     float64  `json:"risk_score"`
}

// NewTransactionScored creates a TransactionScored event.
func NewTransactionScored(transactionID, userID string, riskScore float64, riskLevel string, reasons []string) TransactionScored {
	return TransactionScored{
		BaseEvent:     events.NewBaseEvent(EventTypeTransactionScored, transactionID),
		TransactionID: transactionID,
		UserID:        userID,
		RiskScore:     riskScore,
		RiskLevel:     riskLevel,
		Reasons:       reasons,
	}
}

// HighRiskDetected is published alongside TransactionScored when the
// transaction lands in the High band, so alerting consumers can subscribe
// without filtering every score.
type HighRiskDetected struct {
	events.BaseEvent
	TransactionID string   `json:"transaction_id"`
	UserID        string   `json:"user_id"`
	Reasons       []string `json:"reasons"`
	RiskScore     float64  `json:"risk_score"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(transactionID, userID string, riskScore float64, reasons []string) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:     events.NewBaseEvent(EventTypeHighRiskDetected, transactionID),
		TransactionID: transactionID,
		UserID:        userID,
		RiskScore:     riskScore,
		Reasons:       reasons,
	}
}
