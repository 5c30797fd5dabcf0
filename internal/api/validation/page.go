package validation

import "regexp"

// Limits for page fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]{3,50}$`)

// CreatePageRequest mirrors the fields needed for create page validation.
type CreatePageRequest struct {
	Title       string
	Description *string
}

// ValidateCreatePageRequest validates the fields of a create page request.
func ValidateCreatePageRequest(req CreatePageRequest) []FieldError {
	return Merge(
		requiredText("title", req.Title, MaxTitleLength),
		optionalText("description", req.Description, MaxDescriptionLength),
	)
}

// UpdatePageRequest mirrors a partial page update; nil fields are unchanged.
type UpdatePageRequest struct {
	Title       *string
	Description *string
}

// ValidateUpdatePageRequest validates the fields present in a page update.
func ValidateUpdatePageRequest(req UpdatePageRequest) []FieldError {
	var errs []FieldError
	if req.Title != nil {
		errs = append(errs, requiredText("title", *req.Title, MaxTitleLength)...)
	}
	return Merge(errs, optionalText("description", req.Description, MaxDescriptionLength))
}

// ValidatePublicSlug validates a public slug. A nil slug clears it and is
// always valid.
func ValidatePublicSlug(slug *string) []FieldError {
	if slug == nil {
		return nil
	}
	if !slugRegex.MatchString(*slug) {
		return []FieldError{{Field: "publicSlug", Message: "publicSlug must be 3-50 characters of lowercase letters, digits and hyphens"}}
	}
	return nil
}
