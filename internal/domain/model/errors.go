package model

import "errors"

var (
	// ErrInvalidTransaction marks malformed input: a missing field, an
	// unparseable timestamp or an out-of-range amount.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrScoringFailed is returned when the model could not produce a probability.
	ErrScoringFailed = errors.New("scoring failed")

	// ErrExplanationFailed is returned when feature attribution failed.
	ErrExplanationFailed = errors.New("explanation failed")
)
