package products

import "github.com/tradepost/tradepost/internal/shared"

// CreateRequest is the full payload for create and full-update. Range
// rules live in the validation layer so create and partial-update share
// one rule set.
type CreateRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required"`
	Cost        float64 `json:"cost" validate:"required"`
	Tax         float64 `json:"tax" validate:"required"`
	Stock       int     `json:"stock"`
	Status      *bool   `json:"status"`
}

// UpdateRequest is the partial-update payload; nil fields keep their
// stored values.
type UpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	Tax         *float64 `json:"tax"`
	Stock       *int     `json:"stock"`
	Status      *bool    `json:"status"`
}

// Detail is the full representation plus computed fields.
type Detail struct {
	Product
	TotalPrice float64 `json:"total_price"`
}

func detailOf(p Product) Detail {
	return Detail{Product: p, TotalPrice: p.TotalPrice()}
}

// ListResponse pairs summaries with pagination metadata.
type ListResponse struct {
	Items      []Summary         `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}
