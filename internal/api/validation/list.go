package validation

// MaxContentLength bounds item content.
const MaxContentLength = 2000

// CreateListRequest mirrors the fields needed for create list validation.
type CreateListRequest struct {
	Title    string
	Position *int
}

// ValidateCreateListRequest validates the fields of a create list request.
func ValidateCreateListRequest(req CreateListRequest) []FieldError {
	return Merge(
		requiredText("title", req.Title, MaxTitleLength),
		position("position", req.Position),
	)
}

// UpdateListRequest mirrors a partial list update.
type UpdateListRequest struct {
	Title    *string
	Position *int
}

// ValidateUpdateListRequest validates the fields present in a list update.
func ValidateUpdateListRequest(req UpdateListRequest) []FieldError {
	var errs []FieldError
	if req.Title != nil {
		errs = requiredText("title", *req.Title, MaxTitleLength)
	}
	return Merge(errs, position("position", req.Position))
}

// CreateItemRequest mirrors the fields needed for create item validation.
type CreateItemRequest struct {
	Content  string
	Position *int
}

// ValidateCreateItemRequest validates the fields of a create item request.
func ValidateCreateItemRequest(req CreateItemRequest) []FieldError {
	return Merge(
		requiredText("content", req.Content, MaxContentLength),
		position("position", req.Position),
	)
}

// UpdateItemRequest mirrors a partial item update.
type UpdateItemRequest struct {
	Content  *string
	Position *int
}

// ValidateUpdateItemRequest validates the fields present in an item update.
func ValidateUpdateItemRequest(req UpdateItemRequest) []FieldError {
	var errs []FieldError
	if req.Content != nil {
		errs = requiredText("content", *req.Content, MaxContentLength)
	}
	return Merge(errs, position("position", req.Position))
}
