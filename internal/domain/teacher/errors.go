package teacher

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("teacher not found")
	ErrDuplicateEmail = errors.New("a teacher with this email already exists")
	ErrIDMismatch     = errors.New("payload id does not match path id")
)

// FieldError describes one field that failed one constraint.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError is returned when a payload violates field constraints.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewFieldError builds a single-field ValidationError.
func NewFieldError(field, rule, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}
