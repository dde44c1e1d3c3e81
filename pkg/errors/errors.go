package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error. The HTTP layer maps kinds to status codes.
type Kind string

const (
	KindMissingField       Kind = "MISSING_FIELD"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindInvalid            Kind = "INVALID"
	KindPersistenceFailure Kind = "PERSISTENCE_FAILURE"
	KindNoContent          Kind = "NO_CONTENT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInternal           Kind = "INTERNAL"
)

// Severity is the marker shipped to clients alongside the message.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// AppError represents an application error
type AppError struct {
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Err      error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithSeverity returns a copy of e carrying the given severity.
func (e *AppError) WithSeverity(s Severity) *AppError {
	cp := *e
	cp.Severity = s
	return &cp
}

func newError(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:     kind,
		Message:  message,
		Severity: SeverityError,
		Err:      err,
	}
}

// MissingField reports an absent or blank required field. The message is
// used verbatim when provided, otherwise one is derived from field.
func MissingField(field, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("%s field is required", field)
	}
	return newError(KindMissingField, message, nil)
}

func NotFound(message string) *AppError {
	return newError(KindNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return newError(KindConflict, message, nil)
}

func Invalid(message string) *AppError {
	return newError(KindInvalid, message, nil)
}

func PersistenceFailure(message string, err error) *AppError {
	return newError(KindPersistenceFailure, message, err)
}

// NoContent signals an empty result that is not an error for the caller.
func NoContent(message string) *AppError {
	return newError(KindNoContent, message, nil).WithSeverity(SeverityInfo)
}

func Unauthorized(err error) *AppError {
	return newError(KindUnauthorized, "unauthorized", err)
}

func Internal(err error) *AppError {
	return newError(KindInternal, "internal server error", err)
}

// As extracts an *AppError from anywhere in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
