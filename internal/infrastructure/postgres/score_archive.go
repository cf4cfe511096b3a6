// Package postgres keeps a write-only audit trail of score results.
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/port"
	pkgpostgres "github.com/bibbank/risk-service/pkg/postgres"
)

// Migrations holds the archive schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory within Migrations holding the schema files.
const MigrationsDir = "migrations"

var _ port.ScoreArchive = (*ScoreArchive)(nil)

// ScoreArchive implements port.ScoreArchive using PostgreSQL. Nothing in the
// scoring path reads the archive back.
type ScoreArchive struct {
	db  pkgpostgres.TxBeginner
	now func() time.Time
}

// NewScoreArchive creates a new PostgreSQL-backed score archive.
func NewScoreArchive(db pkgpostgres.TxBeginner) *ScoreArchive {
	return &ScoreArchive{db: db, now: time.Now}
}

// archiveRecord is one score_archive row.
type archiveRecord struct {
	ID            uuid.UUID
	TransactionID string
	UserID        string
	DeviceID      string
	Amount        decimal.Decimal
	TransactedAt  time.Time
	RiskScore     decimal.Decimal
	RiskLevel     string
	Features      []byte
	Summary       string
	ScoredAt      time.Time
	Reasons       []string
}

// featureColumns is the JSON shape of the features column.
type featureColumns struct {
	Amount          float64 `json:"amount"`
	OldBalanceOrg   float64 `json:"oldbalanceOrg"`
	NewBalanceOrig  float64 `json:"newbalanceOrig"`
	OldBalanceDest  float64 `json:"oldbalanceDest"`
	NewBalanceDest  float64 `json:"newbalanceDest"`
	UserAvgAmount   float64 `json:"user_avg_amount"`
	AmountDeviation float64 `json:"amount_deviation"`
	TimeDiffMinutes float64 `json:"time_diff_minutes"`
	DeviceChanged   int     `json:"device_changed"`
	NightFlag       int     `json:"night_flag"`
}

func newArchiveRecord(txn model.Transaction, result model.ScoreResult, scoredAt time.Time) (archiveRecord, error) {
	fv := result.Features
	features, err := json.Marshal(featureColumns{
		Amount:          fv.Amount,
		OldBalanceOrg:   fv.OldBalanceOrg,
		NewBalanceOrig:  fv.NewBalanceOrig,
		OldBalanceDest:  fv.OldBalanceDest,
		NewBalanceDest:  fv.NewBalanceDest,
		UserAvgAmount:   fv.UserAvgAmount,
		AmountDeviation: fv.AmountDeviation,
		TimeDiffMinutes: fv.TimeDiffMinutes,
		DeviceChanged:   fv.DeviceChanged,
		NightFlag:       fv.NightFlag,
	})
	if err != nil {
		return archiveRecord{}, fmt.Errorf("failed to encode features: %w", err)
	}

	return archiveRecord{
		ID:            uuid.New(),
		TransactionID: txn.TransactionID,
		UserID:        txn.UserID,
		DeviceID:      txn.DeviceID,
		Amount:        decimal.NewFromFloat(txn.Amount).Round(2),
		TransactedAt:  txn.Timestamp,
		RiskScore:     decimal.NewFromFloat(result.RiskScore).Round(2),
		RiskLevel:     result.RiskLevel.String(),
		Features:      features,
		Summary:       result.Summary,
		ScoredAt:      scoredAt.UTC(),
		Reasons:       result.Reasons,
	}, nil
}

// Save records one score result and its reasons atomically.
func (a *ScoreArchive) Save(ctx context.Context, txn model.Transaction, result model.ScoreResult) error {
	rec, err := newArchiveRecord(txn, result, a.now())
	if err != nil {
		return err
	}

	return pkgpostgres.WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		return insertRecord(ctx, tx, rec)
	})
}

func insertRecord(ctx context.Context, q pkgpostgres.Querier, rec archiveRecord) error {
	_, err := q.Exec(ctx, `
		INSERT INTO score_archive (
			id, transaction_id, user_id, device_id,
			amount, transacted_at, risk_score, risk_level,
			features, summary, scored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		rec.ID, rec.TransactionID, rec.UserID, rec.DeviceID,
		rec.Amount, rec.TransactedAt, rec.RiskScore, rec.RiskLevel,
		rec.Features, rec.Summary, rec.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive score: %w", err)
	}

	for i, reason := range rec.Reasons {
		_, err = q.Exec(ctx,
			`INSERT INTO score_reasons (archive_id, position, reason) VALUES ($1, $2, $3)`,
			rec.ID, i, reason,
		)
		if err != nil {
			return fmt.Errorf("failed to archive score reason: %w", err)
		}
	}
	return nil
}
