package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidTable = errors.New("session requires a table")
)
