package shared

import "errors"

// ErrorKind classifies a domain error so the transport layer can map it
// to a status code without knowing every individual error code.
type ErrorKind string

const (
	KindValidation      ErrorKind = "VALIDATION"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindAuthorization   ErrorKind = "AUTHORIZATION"
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	KindConflict        ErrorKind = "CONFLICT"
	KindUpstreamFetch   ErrorKind = "UPSTREAM_FETCH"
	KindParse           ErrorKind = "PARSE"
	KindInternal        ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code.
// It lets callers compare against the sentinel values below after a message
// has been customised with WithMessage.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithMessage returns a copy of the error with a different message
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Kind: e.Kind, Code: e.Code, Message: message}
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with the given code
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewNotFoundError creates a not-found error with the given code
func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewConflictError creates a state conflict error with the given code
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewAuthorizationError creates an authorization error with the given code
func NewAuthorizationError(code, message string) *DomainError {
	return NewDomainError(KindAuthorization, code, message)
}

// KindOf returns the kind of err, or KindInternal when err is not a DomainError
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrNotFound           = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists      = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput       = NewValidationError("VALIDATION_ERROR", "Invalid input provided")
	ErrForbidden          = NewAuthorizationError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState       = NewConflictError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidCredentials = NewDomainError(KindUnauthenticated, "INVALID_CREDENTIALS", "Invalid email or password")
)
