package shared

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates the request carries no valid identity.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden indicates the identity is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates a rejected payload.
	ErrValidation = errors.New("validation failed")
)

// NonFieldKey collects rejections that arise from relationships between
// fields rather than a single input.
const NonFieldKey = "non_field_errors"

// FieldErrors maps an input field to its rejection message.
type FieldErrors map[string]string

// Set records a message for a field, keeping the first one reported.
func (f FieldErrors) Set(field, message string) {
	if _, ok := f[field]; !ok {
		f[field] = message
	}
}

// ValidationError is a rejected payload with per-field detail. It matches
// ErrValidation under errors.Is so handlers can map it uniformly.
type ValidationError struct {
	Fields FieldErrors
}

// NewValidationError builds a ValidationError with an empty field map.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(FieldErrors)}
}

// FieldError builds a ValidationError scoped to a single field.
func FieldError(field, message string) *ValidationError {
	e := NewValidationError()
	e.Fields.Set(field, message)
	return e
}

// RecordError builds a ValidationError not attributable to one field.
func RecordError(message string) *ValidationError {
	return FieldError(NonFieldKey, message)
}

// Empty reports whether any field was rejected.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// ErrOrNil returns the error when fields were rejected, nil otherwise.
func (e *ValidationError) ErrOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error()
}

// Is lets errors.Is(err, ErrValidation) match the detailed form.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError is a uniqueness violation attributable to a single field.
type ConflictError struct {
	Field   string
	Message string
}

// Conflict builds a ConflictError for the given field.
func Conflict(field, message string) *ConflictError {
	return &ConflictError{Field: field, Message: message}
}

func (e *ConflictError) Error() string {
	return ErrDuplicate.Error()
}

// Is lets errors.Is(err, ErrDuplicate) match the detailed form.
func (e *ConflictError) Is(target error) bool {
	return target == ErrDuplicate
}
