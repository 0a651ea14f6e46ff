package repository

import "errors"

// Sentinel kinds for tally store errors.
var (
	ErrInvalidLimit   = errors.New("invalid limit")
	ErrDuplicateBatch = errors.New("batch already recorded")
)
