package posts

import (
	"strings"

	"github.com/tradepost/tradepost/internal/shared"
)

const maxTitleLength = 200

// validatePost checks the merged record ahead of persistence.
func validatePost(p Post) error {
	ve := shared.NewValidationError()
	if strings.TrimSpace(p.Title) == "" {
		ve.Fields.Set("title", "this field may not be blank")
	} else if len(p.Title) > maxTitleLength {
		ve.Fields.Set("title", "title must be at most 200 characters")
	}
	if strings.TrimSpace(p.Content) == "" {
		ve.Fields.Set("content", "this field may not be blank")
	}
	return ve.ErrOrNil()
}
