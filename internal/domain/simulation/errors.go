package simulation

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidArgument = errors.New("invalid argument")
)
