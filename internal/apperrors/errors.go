// Package apperrors defines the error kinds shared across services and the
// HTTP status they map to. Services wrap these sentinels with fmt.Errorf and
// %w so handlers can classify failures with errors.Is without string matching.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed or missing request fields.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized marks requests without a usable identity.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden marks access gate denials for authenticated actors.
	ErrForbidden = errors.New("access denied")

	// ErrNotFound marks dangling id references.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable marks generation service timeouts and non-200
	// responses. Never retried automatically.
	ErrUpstreamUnavailable = errors.New("generation service unavailable")

	// ErrExtraction marks unreadable or unusable uploaded documents.
	ErrExtraction = errors.New("document extraction failed")

	// ErrEmptyQuiz marks an attempt to grade a quiz with zero questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
)

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyQuiz):
		return http.StatusBadRequest
	case errors.Is(err, ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
