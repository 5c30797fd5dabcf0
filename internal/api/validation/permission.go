package validation

import "github.com/google/uuid"

// GrantPermissionRequest mirrors the fields needed for grant validation.
type GrantPermissionRequest struct {
	UserID string
}

// ValidateGrantPermissionRequest validates the fields of a grant request.
func ValidateGrantPermissionRequest(req GrantPermissionRequest) []FieldError {
	if req.UserID == "" {
		return []FieldError{{Field: "userId", Message: "userId is required"}}
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return []FieldError{{Field: "userId", Message: "userId must be a valid UUID"}}
	}
	return nil
}

// UpdatePermissionRequest mirrors the fields needed for update validation.
type UpdatePermissionRequest struct {
	CanEdit *bool
}

// ValidateUpdatePermissionRequest validates the fields of an update request.
func ValidateUpdatePermissionRequest(req UpdatePermissionRequest) []FieldError {
	if req.CanEdit == nil {
		return []FieldError{{Field: "canEdit", Message: "canEdit is required"}}
	}
	return nil
}
