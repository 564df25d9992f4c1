package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/mcoot/shootout/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeUnknownField         = "UNKNOWN_FIELD"
	CodeInsufficientResource = "INSUFFICIENT_RESOURCE"
	CodeInvalidState         = "INVALID_STATE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeExternalApplyFailed  = "EXTERNAL_APPLY_FAILED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status     int
	apiError   APIError
	retryAfter time.Duration
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	if he.retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(he.retryAfter)))
	}
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var insufficient *model.InsufficientResourceError
	if errors.As(err, &insufficient) {
		return &httpError{status: http.StatusConflict, apiError: APIError{CodeInsufficientResource, fmt.Sprintf("Not enough %s", insufficient.Field)}}
	}
	var invalid *model.InvalidStateError
	if errors.As(err, &invalid) {
		return &httpError{status: http.StatusConflict, apiError: APIError{CodeInvalidState, fmt.Sprintf("Invalid state: %s", invalid.Reason)}}
	}
	var limited *model.RateLimitedError
	if errors.As(err, &limited) {
		return &httpError{
			status:     http.StatusTooManyRequests,
			apiError:   APIError{CodeRateLimited, fmt.Sprintf("On cooldown, try again in %.2f seconds", limited.RetryAfter.Seconds())},
			retryAfter: limited.RetryAfter,
		}
	}
	var applyFailed *model.ExternalApplyFailedError
	if errors.As(err, &applyFailed) {
		msg := "Marker change failed; charge kept"
		switch {
		case applyFailed.NoCharge:
			msg = "Marker change failed; no outstanding charge for this outcome"
		case applyFailed.Refunded:
			msg = "Marker change failed; charge refunded"
		}
		return &httpError{status: http.StatusBadGateway, apiError: APIError{CodeExternalApplyFailed, msg}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{status: http.StatusNotFound, apiError: APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrUnknownField):
		return &httpError{status: http.StatusBadRequest, apiError: APIError{CodeUnknownField, "Unknown field"}}
	case errors.Is(err, model.ErrInvalidPlayerID),
		errors.Is(err, model.ErrInvalidFloor),
		errors.Is(err, model.ErrInvalidAmount):
		return &httpError{status: http.StatusBadRequest, apiError: APIError{CodeInvalidRequest, err.Error()}}
	default:
		return &httpError{status: http.StatusInternalServerError, apiError: APIError{CodeInternalError, "Internal server error"}}
	}
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{status: http.StatusBadRequest, apiError: APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{status: http.StatusUnauthorized, apiError: APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{status: http.StatusInternalServerError, apiError: APIError{CodeInternalError, "Internal server error"}}
}
