package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so sentinel values
// survive Wrap.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether err matches target. It mirrors the standard library
// so callers don't need two errors imports.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// CodeOf returns the code of the outermost AppError in err's chain.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Common error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// Round engine
	ErrCodeMalformedQuestion   = "MALFORMED_QUESTION"
	ErrCodeSourceUnavailable   = "SOURCE_UNAVAILABLE"
	ErrCodePresentationFailure = "PRESENTATION_FAILURE"
	ErrCodeRoundClosed         = "ROUND_CLOSED"
	ErrCodeScoringFailure      = "SCORING_FAILURE"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeSessionActive       = "SESSION_ACTIVE"
)
