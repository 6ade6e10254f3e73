package relative

import "errors"

// Sentinel kinds for normalization errors.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrInvalidBands   = errors.New("invalid band edges")
)
