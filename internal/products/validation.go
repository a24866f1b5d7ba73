package products

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradepost/tradepost/internal/shared"
)

// Tax rate bounds, inclusive.
var (
	minTax = decimal.NewFromFloat(0.01)
	maxTax = decimal.NewFromInt(1)
)

// validateProduct checks the merged record ahead of persistence. All
// rules are field-scoped except cost vs price, which concerns the
// relationship between two fields and is reported under
// non_field_errors.
func validateProduct(p Product) error {
	ve := shared.NewValidationError()

	if strings.TrimSpace(p.Name) == "" {
		ve.Fields.Set("name", "this field may not be blank")
	}
	if p.Price <= 0 {
		ve.Fields.Set("price", "price must be greater than zero")
	}
	if p.Cost <= 0 {
		ve.Fields.Set("cost", "cost must be greater than zero")
	}
	if p.Stock < 0 {
		ve.Fields.Set("stock", "stock cannot be negative")
	}

	tax := decimal.NewFromFloat(p.Tax)
	if tax.LessThan(minTax) || tax.GreaterThan(maxTax) {
		ve.Fields.Set("tax", "tax must be between 0.01 and 1.00")
	}

	if p.Price > 0 && p.Cost > 0 {
		cost := decimal.NewFromFloat(p.Cost)
		price := decimal.NewFromFloat(p.Price)
		if cost.GreaterThan(price) {
			ve.Fields.Set(shared.NonFieldKey, "cost cannot exceed price")
		}
	}
	return ve.ErrOrNil()
}
