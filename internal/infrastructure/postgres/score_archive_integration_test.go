//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/valueobject"
	"github.com/bibbank/risk-service/internal/infrastructure/postgres"
	"github.com/bibbank/risk-service/pkg/testutil"
)

func TestScoreArchive_SaveAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	pg := testutil.NewPostgresContainer(ctx, t)
	pg.Migrate(t, postgres.Migrations, postgres.MigrationsDir)
	// Applying twice is a no-op.
	pg.Migrate(t, postgres.Migrations, postgres.MigrationsDir)

	archive := postgres.NewScoreArchive(pg.Pool)

	txn, err := model.NewTransaction("t2", "u1", "2024-01-01T10:01:00", "d2", 10000, 0, 0, 0, 0)
	require.NoError(t, err)
	result := model.ScoreResult{
		TransactionID: "t2",
		RiskScore:     91.27,
		RiskLevel:     valueobject.RiskLevelHigh,
		Reasons: []string{
			"Transaction amount significantly deviates from user's historical average.",
			"Transaction initiated from a new or different device.",
		},
		Summary: model.FallbackSummary,
	}
	require.NoError(t, archive.Save(ctx, txn, result))

	var (
		userID, level string
		score         float64
		reasons       int
	)
	err = pg.Pool.QueryRow(ctx,
		`SELECT user_id, risk_level, risk_score::float8 FROM score_archive WHERE transaction_id = $1`, "t2",
	).Scan(&userID, &level, &score)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "High", level)
	assert.Equal(t, 91.27, score)

	err = pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM score_reasons`).Scan(&reasons)
	require.NoError(t, err)
	assert.Equal(t, 2, reasons)
}
