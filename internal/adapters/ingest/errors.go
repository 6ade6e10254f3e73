package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for ingestion errors.
var (
	ErrMissingColumns    = errors.New("missing required columns")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoRows            = errors.New("no usable rows")
)

// MissingColumnsError names every required column absent from the header row.
type MissingColumnsError struct {
	// Columns are canonical keys.
	Columns []string
	// Headers are the spreadsheet headers accepted for each entry of Columns.
	Headers [][]string
}

func (e *MissingColumnsError) Error() string {
	parts := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		if i < len(e.Headers) && len(e.Headers[i]) > 0 {
			parts[i] = fmt.Sprintf("%s (%s)", c, strings.Join(e.Headers[i], " or "))
			continue
		}
		parts[i] = c
	}
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match ErrMissingColumns.
func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }
