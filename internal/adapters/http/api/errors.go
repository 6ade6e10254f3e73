package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/fieldtrials/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrMissingFile     = errors.New(`missing multipart field "file"`)
	ErrPayloadTooLarge = errors.New("payload too large")
)

// errInvalidQuery is the kind of every malformed request parameter.
var errInvalidQuery = service.ErrInvalidQuery

// codeTooLarge is the only error code that does not come from the service.
const codeTooLarge = "payload_too_large"

// KindError tags an error with the handler operation and a sentinel kind.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Is matches the kind so callers can use errors.Is with the sentinel.
func (e *KindError) Is(target error) bool { return errors.Is(e.Kind, target) }

func (e *KindError) Unwrap() error { return e.Err }

// NewKind returns a KindError without a cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind returns a KindError around err.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind string) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidQuery, service.KindInvalidWeights, service.KindInvalidThreshold,
		service.KindUnknownColumn, service.KindUnsupportedFormat:
		return http.StatusBadRequest
	case service.KindMissingColumns, service.KindNoRows, service.KindEmptyInput,
		service.KindEmptyComparison, service.KindDivisionByZero, service.KindNothingToRender:
		return http.StatusUnprocessableEntity
	case service.KindNotStarted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError classifies err and writes the matching error body.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrPayloadTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, err)
		return
	}
	kind := service.ErrorKind(err)
	writeError(w, statusFor(kind), kind, err)
}
