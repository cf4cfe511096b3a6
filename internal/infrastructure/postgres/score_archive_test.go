package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
)

type execCall struct {
	sql  string
	args []any
}

type fakeTx struct {
	pgx.Tx
	calls      []execCall
	failOn     string
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx.failOn != "" && strings.Contains(sql, tx.failOn) {
		return pgconn.CommandTag{}, errors.New("relation does not exist")
	}
	tx.calls = append(tx.calls, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeDB struct{ tx *fakeTx }

func (db fakeDB) Begin(context.Context) (pgx.Tx, error) { return db.tx, nil }

func scoredTransaction(t *testing.T) (model.Transaction, model.ScoreResult) {
	t.Helper()
	txn, err := model.NewTransaction("t2", "u1", "2024-01-01T10:01:00", "d2", 10000.005, 0, 0, 0, 0)
	require.NoError(t, err)
	return txn, model.ScoreResult{
		TransactionID: "t2",
		RiskScore:     99.96,
		RiskLevel:     valueobject.RiskLevelHigh,
		Reasons:       []string{"first", "second"},
		Summary:       "summary",
		Features: model.FeatureVector{
			Amount:          10000.005,
			AmountDeviation: 100,
			DeviceChanged:   1,
		},
	}
}

func TestNewArchiveRecord(t *testing.T) {
	txn, result := scoredTransaction(t)
	scoredAt := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	rec, err := newArchiveRecord(txn, result, scoredAt)
	require.NoError(t, err)

	assert.Equal(t, "t2", rec.TransactionID)
	assert.Equal(t, "10000.01", rec.Amount.String())
	assert.Equal(t, "99.96", rec.RiskScore.String())
	assert.Equal(t, "High", rec.RiskLevel)
	assert.Equal(t, scoredAt, rec.ScoredAt)
	assert.Equal(t, txn.Timestamp, rec.TransactedAt)

	var features map[string]any
	require.NoError(t, json.Unmarshal(rec.Features, &features))
	assert.Equal(t, 100.0, features["amount_deviation"])
	assert.Equal(t, 1.0, features["device_changed"])
	assert.Len(t, features, 10)
}

func TestScoreArchive_Save(t *testing.T) {
	t.Run("writes score and reasons in one transaction", func(t *testing.T) {
		tx := &fakeTx{}
		archive := NewScoreArchive(fakeDB{tx: tx})
		txn, result := scoredTransaction(t)

		require.NoError(t, archive.Save(context.Background(), txn, result))

		require.Len(t, tx.calls, 3)
		assert.Contains(t, tx.calls[0].sql, "INSERT INTO score_archive")
		assert.Equal(t, "u1", tx.calls[0].args[2])
		assert.Contains(t, tx.calls[1].sql, "INSERT INTO score_reasons")
		assert.Equal(t, 0, tx.calls[1].args[1])
		assert.Equal(t, "second", tx.calls[2].args[2])
		assert.Equal(t, tx.calls[0].args[0], tx.calls[2].args[0], "reasons reference the archive row")
		assert.True(t, tx.committed)
	})

	t.Run("rolls back when a reason fails", func(t *testing.T) {
		tx := &fakeTx{failOn: "score_reasons"}
		archive := NewScoreArchive(fakeDB{tx: tx})
		txn, result := scoredTransaction(t)

		err := archive.Save(context.Background(), txn, result)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to archive score reason")
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
	})
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(Migrations, MigrationsDir)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.Contains(t, names, "000001_create_score_archive.up.sql")
	assert.Contains(t, names, "000001_create_score_archive.down.sql")
}
