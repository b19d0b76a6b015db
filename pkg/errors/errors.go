package errors

import "fmt"

// ErrNotFound indicates a resource lookup that matched nothing.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInvalidStateTransition indicates an order status change that the
// lifecycle does not permit.
type ErrInvalidStateTransition struct {
	From interface{}
	To   interface{}
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %v to %v", e.From, e.To)
}

// ErrSignature indicates a webhook request that failed authentication.
// The reason is logged server-side only; callers get a generic 401.
type ErrSignature struct {
	Reason string
}

func (e *ErrSignature) Error() string {
	return fmt.Sprintf("webhook signature rejected: %s", e.Reason)
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field-level failures so a caller can render
// them all at once instead of fixing one field per round trip.
type ValidationErrors struct {
	Fields []FieldError
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// Add appends a field failure and returns the receiver for chaining.
func (e *ValidationErrors) Add(field, message string) *ValidationErrors {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field failed.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Fields) > 0
}
