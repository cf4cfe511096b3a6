// Package csvbatch decodes uploaded transaction batches.
package csvbatch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bibbank/risk-service/internal/application/dto"
	"github.com/bibbank/risk-service/internal/domain/model"
)

// Column names expected in the header row. Column order is free and extra
// columns are ignored.
const (
	colTransactionID  = "transaction_id"
	colUserID         = "user_id"
	colAmount         = "amount"
	colTimestamp      = "timestamp"
	colDeviceID       = "device_id"
	colOldBalanceOrg  = "oldbalanceOrg"
	colNewBalanceOrig = "newbalanceOrig"
	colOldBalanceDest = "oldbalanceDest"
	colNewBalanceDest = "newbalanceDest"
)

var requiredColumns = []string{
	colTransactionID, colUserID, colAmount, colTimestamp, colDeviceID,
	colOldBalanceOrg, colNewBalanceOrig, colOldBalanceDest, colNewBalanceDest,
}

// Parse reads a CSV batch with a header row into score requests in file
// order. Empty numeric cells are left unset so validation reports them as
// missing. Errors name the 1-based file line.
func Parse(r io.Reader) ([]dto.ScoreTransactionRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: csv file is empty", model.ErrInvalidTransaction)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read csv header: %w", model.ErrInvalidTransaction, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: csv is missing columns: %s", model.ErrInvalidTransaction, strings.Join(missing, ", "))
	}

	var rows []dto.ScoreTransactionRequest
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrInvalidTransaction, err)
		}
		line, _ := reader.FieldPos(0)

		row, err := decodeRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(record []string, index map[string]int) (dto.ScoreTransactionRequest, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[index[col]])
	}

	row := dto.ScoreTransactionRequest{
		TransactionID: field(colTransactionID),
		UserID:        field(colUserID),
		Timestamp:     field(colTimestamp),
		DeviceID:      field(colDeviceID),
	}

	numbers := []struct {
		col string
		dst **float64
	}{
		{colAmount, &row.Amount},
		{colOldBalanceOrg, &row.OldBalanceOrg},
		{colNewBalanceOrig, &row.NewBalanceOrig},
		{colOldBalanceDest, &row.OldBalanceDest},
		{colNewBalanceDest, &row.NewBalanceDest},
	}
	for _, n := range numbers {
		raw := field(n.col)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return dto.ScoreTransactionRequest{}, fmt.Errorf("%w: %s %q is not a number", model.ErrInvalidTransaction, n.col, raw)
		}
		*n.dst = &v
	}
	return row, nil
}
