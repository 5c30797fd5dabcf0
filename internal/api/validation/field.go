// Package validation holds pure request validators. Each returns every
// field error it finds so a handler can report them together.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Merge concatenates field error lists.
func Merge(lists ...[]FieldError) []FieldError {
	var errs []FieldError
	for _, l := range lists {
		errs = append(errs, l...)
	}
	return errs
}

func requiredText(field, value string, maxLen int) []FieldError {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return []FieldError{{Field: field, Message: field + " is required"}}
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, maxLen)}}
	}
	return nil
}

func optionalText(field string, value *string, maxLen int) []FieldError {
	if value == nil {
		return nil
	}
	if utf8.RuneCountInString(*value) > maxLen {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, maxLen)}}
	}
	return nil
}

func position(field string, value *int) []FieldError {
	if value != nil && *value < 0 {
		return []FieldError{{Field: field, Message: field + " must not be negative"}}
	}
	return nil
}
