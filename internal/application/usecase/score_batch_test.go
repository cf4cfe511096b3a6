package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/application/usecase"
	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/infrastructure/memory"
	"github.com/bibbank/risk-service/internal/infrastructure/ml"
)

// shuffledRows interleaves two users and lists each user's rows out of
// timestamp order.
func shuffledRows() []dto.ScoreTransactionRequest {
	return []dto.ScoreTransactionRequest{
		txnRequest("b2", "u2", "2024-01-01T09:30:00", "x1", 40),
		txnRequest("a3", "u1", "2024-01-01T10:02:00", "d2", 9000),
		txnRequest("a1", "u1", "2024-01-01T10:00:00", "d1", 100),
		txnRequest("b1", "u2", "2024-01-01T09:00:00", "x1", 50),
		txnRequest("a2", "u1", "2024-01-01T10:01:00", "d1", 120),
		txnRequest("b3", "u2", "2024-01-01T02:00:00", "x2", 4000),
	}
}

func newModelUseCase(t *testing.T, store *memory.HistoryStore, summarizer *mockSummarizer) *usecase.ScoreTransaction {
	t.Helper()
	lm, err := ml.LoadModel("", testLogger())
	require.NoError(t, err)
	return usecase.NewScoreTransaction(store, lm, lm, summarizer, &mockEventPublisher{}, testLogger())
}

func TestScoreBatch_MatchesSequentialSubmission(t *testing.T) {
	ctx := context.Background()

	batchStore := memory.NewHistoryStore(0)
	summarizer := &mockSummarizer{}
	batch := usecase.NewScoreBatch(newModelUseCase(t, batchStore, summarizer), 1, testLogger())

	resp, err := batch.Execute(ctx, dto.ScoreBatchRequest{Rows: shuffledRows()})
	require.NoError(t, err)

	ids := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.TransactionID
	}
	assert.Equal(t, []string{"a1", "a2", "a3", "b3", "b1", "b2"}, ids)
	assert.Equal(t, int32(0), summarizer.calls.Load())

	seqStore := memory.NewHistoryStore(0)
	single := newModelUseCase(t, seqStore, &mockSummarizer{})
	byID := map[string]dto.ScoreTransactionRequest{}
	for _, row := range shuffledRows() {
		byID[row.TransactionID] = row
	}
	for i, id := range ids {
		got, err := single.Execute(ctx, byID[id])
		require.NoError(t, err)
		assert.Equal(t, got.RiskScore, resp.Results[i].RiskScore, id)
		assert.Equal(t, got.RiskLevel, resp.Results[i].RiskLevel, id)
	}

	assert.Equal(t, seqStore.Get("u1"), batchStore.Get("u1"))
	assert.Equal(t, seqStore.Get("u2"), batchStore.Get("u2"))
}

func TestScoreBatch_ParallelUsersMatchSequential(t *testing.T) {
	ctx := context.Background()

	serialStore := memory.NewHistoryStore(0)
	serial := usecase.NewScoreBatch(newModelUseCase(t, serialStore, &mockSummarizer{}), 1, testLogger())
	want, err := serial.Execute(ctx, dto.ScoreBatchRequest{Rows: shuffledRows()})
	require.NoError(t, err)

	parallelStore := memory.NewHistoryStore(0)
	parallel := usecase.NewScoreBatch(newModelUseCase(t, parallelStore, &mockSummarizer{}), 4, testLogger())
	got, err := parallel.Execute(ctx, dto.ScoreBatchRequest{Rows: shuffledRows()})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, serialStore.Get("u1"), parallelStore.Get("u1"))
	assert.Equal(t, serialStore.Get("u2"), parallelStore.Get("u2"))
}

func TestScoreBatch_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("malformed row rejects the whole batch", func(t *testing.T) {
		f := newFixture()
		batch := usecase.NewScoreBatch(f.useCase(), 1, testLogger())

		rows := shuffledRows()
		rows[4].Timestamp = "yesterday"
		_, err := batch.Execute(ctx, dto.ScoreBatchRequest{Rows: rows})
		require.ErrorIs(t, err, model.ErrInvalidTransaction)
		assert.Contains(t, err.Error(), "row 5")
		assert.Empty(t, f.store.Get("u1"))
		assert.Empty(t, f.store.Get("u2"))
		assert.Empty(t, f.scorer.features())
	})

	t.Run("scoring failure aborts at the failing row", func(t *testing.T) {
		f := newFixture()
		f.scorer.predictFunc = func(fv model.FeatureVector) (float64, error) {
			if fv.Amount == 9000 {
				return 0, errors.New("model offline")
			}
			return 0.2, nil
		}
		batch := usecase.NewScoreBatch(f.useCase(), 1, testLogger())

		_, err := batch.Execute(ctx, dto.ScoreBatchRequest{Rows: shuffledRows()})
		require.ErrorIs(t, err, model.ErrScoringFailed)
		assert.Contains(t, err.Error(), "transaction a3")
		assert.Len(t, f.store.Get("u1"), 2)
		assert.Empty(t, f.store.Get("u2"))
	})

	t.Run("empty batch", func(t *testing.T) {
		f := newFixture()
		batch := usecase.NewScoreBatch(f.useCase(), 0, testLogger())

		resp, err := batch.Execute(ctx, dto.ScoreBatchRequest{})
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
	})
}

func TestSequenceBatch(t *testing.T) {
	mk := func(id, user, ts string) model.Transaction {
		txn, err := model.NewTransaction(id, user, ts, "d", 1, 0, 0, 0, 0)
		require.NoError(t, err)
		return txn
	}
	in := []model.Transaction{
		mk("3", "b", "2024-01-01T10:00:00"),
		mk("1", "a", "2024-01-01T11:00:00"),
		mk("2", "a", "2024-01-01T10:00:00"),
		mk("4", "a", "2024-01-01T10:00:00"),
	}

	out := usecase.SequenceBatch(in)

	ids := make([]string, len(out))
	for i, txn := range out {
		ids[i] = txn.TransactionID
	}
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids)
	assert.Equal(t, "3", in[0].TransactionID, "input must not be reordered")
}
