package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/tradepost/internal/shared"
)

func validProduct() Product {
	return Product{
		Name:      "Widget",
		Price:     100,
		Cost:      50,
		Tax:       0.06,
		Stock:     10,
		Status:    true,
		CreatedBy: 1,
	}
}

func TestValidateProductAccepts(t *testing.T) {
	require.NoError(t, validateProduct(validProduct()))

	edge := validProduct()
	edge.Tax = 0.01
	require.NoError(t, validateProduct(edge))
	edge.Tax = 1.00
	require.NoError(t, validateProduct(edge))

	equal := validProduct()
	equal.Cost = equal.Price
	require.NoError(t, validateProduct(equal))
}

func TestValidateProductFieldRules(t *testing.T) {
	p := validProduct()
	p.Name = "   "
	p.Price = 0
	p.Cost = -1
	p.Stock = -5
	p.Tax = 0

	err := validateProduct(p)
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "this field may not be blank", ve.Fields["name"])
	assert.Equal(t, "price must be greater than zero", ve.Fields["price"])
	assert.Equal(t, "cost must be greater than zero", ve.Fields["cost"])
	assert.Equal(t, "stock cannot be negative", ve.Fields["stock"])
	assert.Equal(t, "tax must be between 0.01 and 1.00", ve.Fields["tax"])
	assert.NotContains(t, ve.Fields, shared.NonFieldKey)
}

func TestValidateProductTaxBounds(t *testing.T) {
	p := validProduct()
	p.Tax = 0.009
	err := validateProduct(p)
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "tax")

	p.Tax = 1.01
	err = validateProduct(p)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "tax")
}

func TestValidateProductCostCannotExceedPrice(t *testing.T) {
	p := validProduct()
	p.Price = 100
	p.Cost = 150

	err := validateProduct(p)
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "cost cannot exceed price", ve.Fields[shared.NonFieldKey])
	assert.NotContains(t, ve.Fields, "price")
	assert.NotContains(t, ve.Fields, "cost")
}

func TestTotalPriceRoundsExactly(t *testing.T) {
	p := Product{Price: 100, Tax: 0.06}
	assert.Equal(t, 106.00, p.TotalPrice())

	p = Product{Price: 19.99, Tax: 0.2}
	assert.Equal(t, 23.99, p.TotalPrice())
}
