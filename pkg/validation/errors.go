package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// builtinMessages are format strings for the stock tags our requests use.
// They receive the field name and, where present, the tag parameter.
var builtinMessages = map[string]string{
	"required": "%s is required",
	"max":      "%s must be at most %s characters long",
	"oneof":    "%s must be one of: %s",
	"uuid":     "%s must be a valid UUID",
}

// ValidationError carries one message per offending field, keyed by the
// name the client used (JSON or query parameter).
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error implements the error interface. Fields are sorted so the message is stable.
func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Errors))
	for field := range v.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v.Errors[field])
	}
	return strings.Join(parts, "; ")
}

// NewValidationError converts validator output into a ValidationError
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	v := &ValidationError{Errors: make(map[string]string, len(errs))}
	for _, fe := range errs {
		v.Errors[fe.Field()] = describe(fe)
	}
	return v
}

func describe(fe validator.FieldError) string {
	if msg, ok := customMessages[fe.Tag()]; ok {
		return fmt.Sprintf(msg, fe.Field())
	}
	msg, ok := builtinMessages[fe.Tag()]
	if !ok {
		return fe.Field() + " is invalid"
	}
	if fe.Param() != "" {
		return fmt.Sprintf(msg, fe.Field(), fe.Param())
	}
	return fmt.Sprintf(msg, fe.Field())
}

// AddError records a message for field, replacing any earlier one
func (v *ValidationError) AddError(field, message string) {
	if v.Errors == nil {
		v.Errors = make(map[string]string)
	}
	v.Errors[field] = message
}

// GetFieldError returns the message recorded for field
func (v *ValidationError) GetFieldError(field string) (string, bool) {
	msg, exists := v.Errors[field]
	return msg, exists
}
