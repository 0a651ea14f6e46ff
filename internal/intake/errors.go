package intake

import "errors"

// Sentinel kinds for intake errors.
var (
	// ErrValidation marks input that cannot form a roster.
	ErrValidation = errors.New("invalid roster")
	// ErrAborted means the input stream ended before intake completed.
	ErrAborted = errors.New("input aborted")
	// ErrCanceled means the user backed out of JSON entry.
	ErrCanceled = errors.New("entry canceled")
)
