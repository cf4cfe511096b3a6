package dto

// ScoreBatchRequest carries the rows of one uploaded batch in file order.
type ScoreBatchRequest struct {
	Rows []ScoreTransactionRequest
}

// BatchResult is the per-row projection of a batch score.
type BatchResult struct {
	TransactionID string  `json:"transaction_id"`
	RiskLevel     string  `json:"risk_level"`
	RiskScore     float64 `json:"risk_score"`
}

// ScoreBatchResponse holds results in scoring order: grouped by user, then
// by timestamp.
type ScoreBatchResponse struct {
	Results []BatchResult `json:"results"`
}
