package status

import "errors"

var (
	ErrItemNotFound = errors.New("item: item not found")
	ErrValidation   = errors.New("item: validation failed")
	ErrIDExhausted  = errors.New("item: could not allocate a unique id")
)

// ValidationError carries the client-facing reason for a rejected request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Required(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
