// Package errors defines the failure taxonomy of the analysis pipeline and
// its mapping to HTTP status codes for the API surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSourceUnavailable is returned when the document cannot be fetched
	// after the source's bounded retry policy is exhausted.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSourceEmpty is returned when the fetched document has zero length.
	ErrSourceEmpty = errors.New("source is empty")
	// ErrSourceTooLarge is returned when the document exceeds the configured
	// size limit.
	ErrSourceTooLarge = errors.New("source exceeds size limit")
	// ErrInvalidWorkerCount is returned for a non-positive worker count,
	// before any fetch or partition work starts.
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	// ErrInvalidTopK is returned for a non-positive top-K, before any fetch
	// or partition work starts.
	ErrInvalidTopK = errors.New("invalid top-k")
	// ErrWorkerFailed is returned when a counting worker fails; the whole
	// run is aborted and no partial report is produced.
	ErrWorkerFailed = errors.New("worker failed")
)

// WorkerError identifies which segment's worker aborted the run and why.
type WorkerError struct {
	SegmentIndex int
	Cause        error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker for segment %d failed: %v", e.SegmentIndex, e.Cause)
}

func (e *WorkerError) Unwrap() []error {
	return []error{ErrWorkerFailed, e.Cause}
}

// AppError pairs a sentinel error with a human-readable message and the HTTP
// status the API should respond with.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode resolves the response status for any pipeline error.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidWorkerCount), errors.Is(err, ErrInvalidTopK):
		return http.StatusBadRequest
	case errors.Is(err, ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrSourceEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrSourceTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
