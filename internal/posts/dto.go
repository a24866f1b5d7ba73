package posts

import "github.com/tradepost/tradepost/internal/shared"

// CreateRequest is the full payload for create and full-update.
type CreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Content     string `json:"content" validate:"required"`
	IsPublished bool   `json:"is_published"`
}

// UpdateRequest is the partial-update payload; nil fields keep their
// stored values.
type UpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

// ListResponse pairs summaries with pagination metadata.
type ListResponse struct {
	Items      []Summary         `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}
