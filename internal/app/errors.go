package service

import (
	"errors"

	"github.com/okian/fieldtrials/internal/adapters/charts"
	"github.com/okian/fieldtrials/internal/adapters/ingest"
	"github.com/okian/fieldtrials/internal/adapters/repository"
	"github.com/okian/fieldtrials/internal/domain/aggregate"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/model"
	"github.com/okian/fieldtrials/internal/domain/relative"
	"github.com/okian/fieldtrials/internal/domain/scoring"
)

// ErrInvalidQuery reports a missing or malformed request parameter.
var ErrInvalidQuery = errors.New("invalid query")

// Error kinds reported in metrics and API error bodies.
const (
	KindNotFound          = "not_found"
	KindInvalidQuery      = "invalid_query"
	KindInvalidWeights    = "invalid_weights"
	KindInvalidThreshold  = "invalid_threshold"
	KindUnknownColumn     = "unknown_column"
	KindMissingColumns    = "missing_columns"
	KindUnsupportedFormat = "unsupported_format"
	KindNoRows            = "no_rows"
	KindEmptyInput        = "empty_input"
	KindEmptyComparison   = "empty_comparison"
	KindDivisionByZero    = "division_by_zero"
	KindNothingToRender   = "nothing_to_render"
	KindNotStarted        = "not_started"
	KindInternal          = "internal"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidQuery):
		return KindInvalidQuery
	case errors.Is(err, scoring.ErrInvalidWeights):
		return KindInvalidWeights
	case errors.Is(err, headtohead.ErrInvalidThreshold):
		return KindInvalidThreshold
	case errors.Is(err, model.ErrUnknownColumn):
		return KindUnknownColumn
	case errors.Is(err, ingest.ErrMissingColumns):
		return KindMissingColumns
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ingest.ErrNoRows):
		return KindNoRows
	case errors.Is(err, aggregate.ErrEmptyInput), errors.Is(err, scoring.ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, headtohead.ErrEmptyComparison):
		return KindEmptyComparison
	case errors.Is(err, aggregate.ErrDivisionByZero), errors.Is(err, relative.ErrDivisionByZero):
		return KindDivisionByZero
	case errors.Is(err, charts.ErrNothingToRender):
		return KindNothingToRender
	case errors.Is(err, ErrNotStarted):
		return KindNotStarted
	default:
		return KindInternal
	}
}
