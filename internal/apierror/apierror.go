// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}

// InternalMessage is the only text a client sees for a 5xx that is not a
// known domain error.
const InternalMessage = "internal server error"

// Status maps a domain error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidPricing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNotAMembershipOrder):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrPeriodAlreadyOpen), errors.Is(err, model.ErrNoOpenPeriod),
		errors.Is(err, model.ErrOrderCanceled):
		return http.StatusConflict
	case errors.Is(err, model.ErrSequenceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrOrderNotFound), errors.Is(err, model.ErrPeriodNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// From builds the response envelope for err. Unknown errors are reduced to
// InternalMessage; the caller is expected to log err.
func From(err error) (int, *APIError) {
	status := Status(err)
	switch {
	case status == http.StatusInternalServerError:
		return status, New(InternalMessage)
	case status == http.StatusServiceUnavailable:
		return status, New(model.ErrSequenceUnavailable.Error())
	default:
		return status, New(err.Error())
	}
}
