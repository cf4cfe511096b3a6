package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Accepted ISO-8601 shapes for transaction timestamps. Naive layouts carry no
// offset and are read as wall-clock time, kept as supplied.
var (
	awareLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// zeroOffset marks a timestamp that was supplied with a UTC offset, so it
// stays distinguishable from a naive one, which parses into time.UTC.
var zeroOffset = time.FixedZone("UTC", 0)

// Transaction is a single payment submitted for risk scoring.
type Transaction struct {
	Timestamp      time.Time
	TransactionID  string
	UserID         string
	DeviceID       string
	Amount         float64
	OldBalanceOrg  float64
	NewBalanceOrig float64
	OldBalanceDest float64
	NewBalanceDest float64
}

// NewTransaction builds a Transaction from raw fields, parsing the timestamp
// and validating the identifiers and amounts.
func NewTransaction(
	transactionID, userID, rawTimestamp, deviceID string,
	amount, oldBalanceOrg, newBalanceOrig, oldBalanceDest, newBalanceDest float64,
) (Transaction, error) {
	ts, err := ParseTimestamp(rawTimestamp)
	if err != nil {
		return Transaction{}, err
	}

	txn := Transaction{
		TransactionID:  transactionID,
		UserID:         userID,
		Timestamp:      ts,
		DeviceID:       deviceID,
		Amount:         amount,
		OldBalanceOrg:  oldBalanceOrg,
		NewBalanceOrig: newBalanceOrig,
		OldBalanceDest: oldBalanceDest,
		NewBalanceDest: newBalanceDest,
	}
	if err := txn.Validate(); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// Validate checks the invariants the scoring pipeline relies on.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.TransactionID) == "" {
		return fmt.Errorf("%w: transaction_id is required", ErrInvalidTransaction)
	}
	if strings.TrimSpace(t.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidTransaction)
	}
	if t.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalidTransaction)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidTransaction)
	}
	if !isFinite(t.Amount) || t.Amount < 0 {
		return fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidTransaction)
	}

	balances := []struct {
		name  string
		value float64
	}{
		{"oldbalanceOrg", t.OldBalanceOrg},
		{"newbalanceOrig", t.NewBalanceOrig},
		{"oldbalanceDest", t.OldBalanceDest},
		{"newbalanceDest", t.NewBalanceDest},
	}
	for _, b := range balances {
		if !isFinite(b.value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidTransaction, b.name)
		}
	}
	return nil
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without an offset keep
// their wall-clock reading; no timezone normalization is applied.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: timestamp is required", ErrInvalidTransaction)
	}
	for _, layout := range awareLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			if ts.Location() == time.UTC {
				ts = ts.In(zeroOffset)
			}
			return ts, nil
		}
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrInvalidTransaction, raw)
}

// FormatTimestamp renders a timestamp the way history responses expose it:
// space-separated date and time, with microseconds only when present and an
// offset only when the timestamp was parsed with one.
func FormatTimestamp(ts time.Time) string {
	layout := "2006-01-02 15:04:05"
	if ts.Nanosecond() != 0 {
		layout += ".000000"
	}
	if ts.Location() != time.UTC {
		layout += "-07:00"
	}
	return ts.Format(layout)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
