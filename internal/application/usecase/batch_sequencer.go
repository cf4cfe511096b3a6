package usecase

import (
	"sort"

	"github.com/bibbank/risk-service/internal/domain/model"
)

// SequenceBatch returns the transactions in scoring order: by user ID, then
// by timestamp. The sort is stable, so rows with equal keys keep file order.
func SequenceBatch(txns []model.Transaction) []model.Transaction {
	ordered := make([]model.Transaction, len(txns))
	copy(ordered, txns)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].UserID != ordered[j].UserID {
			return ordered[i].UserID < ordered[j].UserID
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered
}

// userRun is a contiguous block of one user's rows within a sequenced batch.
type userRun struct {
	userID string
	start  int
	end    int
}

// splitByUser partitions a sequenced batch into per-user runs.
func splitByUser(ordered []model.Transaction) []userRun {
	var runs []userRun
	for i, txn := range ordered {
		if len(runs) == 0 || runs[len(runs)-1].userID != txn.UserID {
			runs = append(runs, userRun{userID: txn.UserID, start: i})
		}
		runs[len(runs)-1].end = i + 1
	}
	return runs
}
