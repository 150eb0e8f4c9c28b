package schema

import (
	"fmt"
	"strings"
)

// Reasons attached to a FieldError.
const (
	ReasonMissing     = "missing"
	ReasonEmpty       = "empty"
	ReasonWrongType   = "wrong type"
	ReasonNotInEnum   = "not in enum"
	ReasonOutOfRange  = "out of range"
	ReasonUnsupported = "unsupported file type"
	ReasonTooLarge    = "too large"
)

// FieldError names one violated field constraint.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every field that failed validation. Message is
// meant for display as-is.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func Invalid(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
}

// WithMessage returns a copy of e carrying a different display message.
func (e *ValidationError) WithMessage(message string) *ValidationError {
	fields := make([]FieldError, len(e.Fields))
	copy(fields, e.Fields)
	return &ValidationError{Message: message, Fields: fields}
}

// Reason returns the failure reason for field, or "" when it passed.
func (e *ValidationError) Reason(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Reason
		}
	}
	return ""
}
