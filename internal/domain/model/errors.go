package model

import "errors"

// ErrUnknownColumn is returned when a computation names a column the table lacks.
var ErrUnknownColumn = errors.New("unknown column")
