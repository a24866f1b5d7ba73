package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product entity owned by its creator.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost"`
	Tax         float64   `json:"tax"`
	Stock       int       `json:"stock"`
	Status      bool      `json:"status"`
	CreatedBy   int64     `json:"created_by"`
	OwnerName   string    `json:"owner_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TotalPrice computes price incl. tax, rounded to 2 decimal places.
// Decimal arithmetic keeps 100 * 1.06 at exactly 106.00.
func (p Product) TotalPrice() float64 {
	price := decimal.NewFromFloat(p.Price)
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(p.Tax))
	total, _ := price.Mul(factor).Round(2).Float64()
	return total
}

// Summary is the abbreviated projection returned by list endpoints.
type Summary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerName string    `json:"owner_name"`
	CreatedAt time.Time `json:"created_at"`
	Status    bool      `json:"status"`
}
