package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Histofy error code.
type ErrorCode string

const (
	ErrValidation             ErrorCode = "VALIDATION_ERROR"          // 400
	ErrInvalidMediaType       ErrorCode = "INVALID_MEDIA_TYPE"        // 415
	ErrMediaTooLarge          ErrorCode = "MEDIA_TOO_LARGE"           // 413
	ErrNotFound               ErrorCode = "NOT_FOUND"                 // 404
	ErrIllegalTransition      ErrorCode = "ILLEGAL_TRANSITION"        // 409
	ErrRequestAlreadyInFlight ErrorCode = "REQUEST_ALREADY_IN_FLIGHT" // 409
	ErrNoResultToSave         ErrorCode = "NO_RESULT_TO_SAVE"         // 409
	ErrServiceUnavailable     ErrorCode = "SERVICE_UNAVAILABLE"       // 503
	ErrNoMatchFound           ErrorCode = "NO_MATCH_FOUND"            // 404
	ErrTimeout                ErrorCode = "TIMEOUT"                   // 504
	ErrInternal               ErrorCode = "INTERNAL"                  // 500
)

// HistofyError represents a structured error with code, status, and details.
type HistofyError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *HistofyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for malformed input to a mutating call.
func NewValidation(msg string) *HistofyError {
	return &HistofyError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidMediaType creates a 415 error for payloads that are not images.
func NewInvalidMediaType(detected string) *HistofyError {
	return &HistofyError{
		Code:    ErrInvalidMediaType,
		Status:  415,
		Message: fmt.Sprintf("payload is not an image (detected %s)", detected),
		Details: map[string]any{"detected_type": detected},
	}
}

// NewMediaTooLarge creates a 413 error when an image exceeds the size ceiling.
func NewMediaTooLarge(max, actual int64) *HistofyError {
	return &HistofyError{
		Code:    ErrMediaTooLarge,
		Status:  413,
		Message: fmt.Sprintf("image exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewNotFound creates a 404 error for an id-based lookup miss.
func NewNotFound(id string) *HistofyError {
	return &HistofyError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("journal entry not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewIllegalTransition creates a 409 error for an operation invalid in the
// current workflow state. The triggering operation must not mutate anything.
func NewIllegalTransition(state, op string) *HistofyError {
	return &HistofyError{
		Code:    ErrIllegalTransition,
		Status:  409,
		Message: fmt.Sprintf("operation %q is not legal in state %q", op, state),
		Details: map[string]any{"state": state, "operation": op},
	}
}

// NewRequestAlreadyInFlight creates a 409 error for a second recognition
// submission while one is still pending on the same session.
func NewRequestAlreadyInFlight() *HistofyError {
	return &HistofyError{
		Code:    ErrRequestAlreadyInFlight,
		Status:  409,
		Message: "a recognition request is already in flight for this session",
	}
}

// NewNoResultToSave creates a 409 error for saving from a request that has no
// usable result (not succeeded, or stale).
func NewNoResultToSave() *HistofyError {
	return &HistofyError{
		Code:    ErrNoResultToSave,
		Status:  409,
		Message: "no recognition result available to save",
	}
}

// NewServiceUnavailable creates a 503 error for a recognition service outage.
func NewServiceUnavailable(msg string) *HistofyError {
	if msg == "" {
		msg = "recognition service unavailable"
	}
	return &HistofyError{
		Code:    ErrServiceUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewNoMatchFound creates a 404 error for an image the service could not match.
func NewNoMatchFound() *HistofyError {
	return &HistofyError{
		Code:    ErrNoMatchFound,
		Status:  404,
		Message: "no matching cultural site found for this image",
	}
}

// NewTimeout creates a 504 error for a recognition call that timed out.
func NewTimeout() *HistofyError {
	return &HistofyError{
		Code:    ErrTimeout,
		Status:  504,
		Message: "recognition service did not respond in time",
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message is generic; the original error is kept in Details for logging.
func NewInternal(err error) *HistofyError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &HistofyError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (possibly wrapped) is a HistofyError with the given code.
func Is(err error, code ErrorCode) bool {
	var hErr *HistofyError
	if stderrors.As(err, &hErr) {
		return hErr.Code == code
	}
	return false
}

// IsRecoverable reports whether the error is an expected, retryable
// recognition failure rather than a programming or integration error.
func IsRecoverable(err error) bool {
	var hErr *HistofyError
	if !stderrors.As(err, &hErr) {
		return false
	}
	switch hErr.Code {
	case ErrServiceUnavailable, ErrNoMatchFound, ErrTimeout:
		return true
	}
	return false
}
