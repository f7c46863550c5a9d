package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeMalformedGame = "MALFORMED_GAME"
	ErrCodeAttribution   = "ATTRIBUTION_ERROR"
	ErrCodeEvaluation    = "EVALUATION_ERROR"
	ErrCodeAggregation   = "AGGREGATION_ERROR"
	ErrCodeDelivery      = "DELIVERY_ERROR"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
)

// AppError represents an application error with a machine-readable code and
// an HTTP status for the API surface.
type AppError struct {
	Code    string // Error code (e.g., "EVALUATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// NewMalformedGameError marks a game whose notation could not be parsed into
// a legal move sequence. The game is skipped and the batch continues.
func NewMalformedGameError(gameURL string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedGame,
		Message: fmt.Sprintf("cannot parse game %s", gameURL),
		Status:  422,
		Err:     err,
	}
}

// NewAttributionError marks a game where the tracked player matches neither
// side (or both sides), so no side can be tiered.
func NewAttributionError(username, white, black string) *AppError {
	return &AppError{
		Code:    ErrCodeAttribution,
		Message: fmt.Sprintf("tracked player %q is not exactly one of white=%q black=%q", username, white, black),
		Status:  422,
	}
}

// NewEvaluationError marks an engine failure for a reachable position. The
// current game's classification is aborted, never patched with a guess.
func NewEvaluationError(ply int, err error) *AppError {
	return &AppError{
		Code:    ErrCodeEvaluation,
		Message: fmt.Sprintf("engine produced no score at ply %d", ply),
		Status:  502,
		Err:     err,
	}
}

// NewAggregationError marks a tally invariant violation. Only possible on
// implementation bugs and therefore fatal, never suppressed.
func NewAggregationError(detail string) *AppError {
	return &AppError{
		Code:    ErrCodeAggregation,
		Message: detail,
		Status:  500,
	}
}

// NewDeliveryError marks a failed report delivery. Non-fatal: the caller
// logs it and leaves the checkpoint unadvanced.
func NewDeliveryError(channel string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDelivery,
		Message: fmt.Sprintf("delivery via %s failed", channel),
		Status:  502,
		Err:     err,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Status:  500,
		Err:     err,
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}
