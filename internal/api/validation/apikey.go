package validation

import (
	"fmt"
	"strings"

	"github.com/sharedlists/sharedlists/internal/apikey"
)

// MaxAPIKeyNameLength bounds the optional key label.
const MaxAPIKeyNameLength = 100

// CreateAPIKeyRequest mirrors the fields needed for create API key validation.
type CreateAPIKeyRequest struct {
	Name   *string
	Scopes []string
}

// ValidateCreateAPIKeyRequest validates the fields of a create API key request.
func ValidateCreateAPIKeyRequest(req CreateAPIKeyRequest) []FieldError {
	errs := optionalText("name", req.Name, MaxAPIKeyNameLength)

	if len(req.Scopes) == 0 {
		return append(errs, FieldError{Field: "scopes", Message: "scopes must contain at least one scope"})
	}
	for i, s := range req.Scopes {
		if !apikey.IsValidScope(strings.TrimSpace(s)) {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("scopes[%d]", i),
				Message: "scope must be lowercase letters only",
			})
		}
	}
	return errs
}
