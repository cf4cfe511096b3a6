package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
)

func f(v float64) *float64 { return &v }

func validRequest() dto.ScoreTransactionRequest {
	return dto.ScoreTransactionRequest{
		TransactionID:  "t1",
		UserID:         "u1",
		Timestamp:      "2024-01-01T10:00:00",
		DeviceID:       "d1",
		Amount:         f(100),
		OldBalanceOrg:  f(0),
		NewBalanceOrig: f(0),
		OldBalanceDest: f(0),
		NewBalanceDest: f(0),
	}
}

func TestScoreTransactionRequest_ToTransaction(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		txn, err := validRequest().ToTransaction()
		require.NoError(t, err)
		assert.Equal(t, "u1", txn.UserID)
		assert.Equal(t, 100.0, txn.Amount)
		assert.Equal(t, 10, txn.Timestamp.Hour())
	})

	t.Run("zero balances are not missing", func(t *testing.T) {
		req := validRequest()
		req.Amount = f(0)
		_, err := req.ToTransaction()
		require.NoError(t, err)
	})

	t.Run("missing numeric field", func(t *testing.T) {
		req := validRequest()
		req.NewBalanceDest = nil
		_, err := req.ToTransaction()
		require.ErrorIs(t, err, model.ErrInvalidTransaction)
		assert.Contains(t, err.Error(), "newbalanceDest is required")
	})

	t.Run("missing identifier", func(t *testing.T) {
		req := validRequest()
		req.UserID = ""
		_, err := req.ToTransaction()
		require.ErrorIs(t, err, model.ErrInvalidTransaction)
	})

	t.Run("decodes original field names", func(t *testing.T) {
		body := `{"transaction_id":"t9","user_id":"u9","amount":5,"timestamp":"2024-01-01 01:00:00",
			"device_id":"d","oldbalanceOrg":1,"newbalanceOrig":2,"oldbalanceDest":3,"newbalanceDest":4}`
		var req dto.ScoreTransactionRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		txn, err := req.ToTransaction()
		require.NoError(t, err)
		assert.Equal(t, 4.0, txn.NewBalanceDest)
	})
}

func TestFromScoreResult_UsesSummaryKey(t *testing.T) {
	resp := dto.FromScoreResult(model.ScoreResult{
		TransactionID: "t1",
		RiskScore:     85.5,
		RiskLevel:     valueobject.RiskLevelHigh,
		Summary:       model.FallbackSummary,
	})

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"transaction_id":"t1","risk_score":85.5,"risk_level":"High","reasons":[],"llm_summary":"explanation unavailable"}`,
		string(data))
}

func TestFromObservations(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	resp := dto.FromObservations([]model.Observation{
		{Timestamp: ts, RiskScore: 12.5},
		{Timestamp: ts.Add(time.Minute), RiskScore: 99.1},
	})

	require.Len(t, resp.RiskHistory, 2)
	assert.Equal(t, "2024-01-01 10:00:00", resp.RiskHistory[0].Timestamp)
	assert.Equal(t, 99.1, resp.RiskHistory[1].RiskScore)

	empty := dto.FromObservations(nil)
	data, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"risk_history":[]}`, string(data))
}
