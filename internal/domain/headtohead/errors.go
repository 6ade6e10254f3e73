package headtohead

import "errors"

// Sentinel kinds for comparison errors.
var (
	ErrEmptyComparison  = errors.New("empty comparison")
	ErrInvalidThreshold = errors.New("invalid tie threshold")
)
