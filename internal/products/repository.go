package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/tradepost/internal/shared"
)

// ListQuery scopes a product listing.
type ListQuery struct {
	// OwnerID restricts results to one owner when non-zero.
	OwnerID int64
	// MaxCost keeps only products with cost strictly below it when set.
	MaxCost *float64
	Filters shared.ListFilters
}

// Repository defines product persistence operations.
type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Summary, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (int64, error)
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, q ListQuery) ([]Summary, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if q.OwnerID > 0 {
		argCount++
		where += ` AND p.created_by = $` + strconv.Itoa(argCount)
		args = append(args, q.OwnerID)
	}
	if q.MaxCost != nil {
		argCount++
		where += ` AND p.cost < $` + strconv.Itoa(argCount)
		args = append(args, *q.MaxCost)
	}
	if q.Filters.Search != "" {
		argCount++
		where += ` AND (p.name ILIKE $` + strconv.Itoa(argCount) + ` OR p.description ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+q.Filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT p.id, p.name, u.first_name || ' ' || u.last_name, p.created_at, p.status
		FROM products p JOIN users u ON u.id = p.created_by` + where +
		` ORDER BY ` + sortOrder(q.Filters.SortBy, q.Filters.SortDir)

	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, q.Filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, q.Filters.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerName, &s.CreatedAt, &s.Status); err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	query := `SELECT p.id, p.name, p.description, p.price, p.cost, p.tax, p.stock, p.status, p.created_by,
		u.first_name || ' ' || u.last_name, p.created_at, p.updated_at
		FROM products p JOIN users u ON u.id = p.created_by WHERE p.id = $1`
	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Cost, &p.Tax,
		&p.Stock, &p.Status, &p.CreatedBy, &p.OwnerName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, cost, tax, stock, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`,
		product.Name, product.Description, product.Price, product.Cost, product.Tax,
		product.Stock, product.Status, product.CreatedBy, now).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, product Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $1, description = $2, price = $3, cost = $4, tax = $5, stock = $6, status = $7, updated_at = $8 WHERE id = $9`,
		product.Name, product.Description, product.Price, product.Cost, product.Tax,
		product.Stock, product.Status, time.Now().UTC(), product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir != shared.SortAsc {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "p.name " + dir
	case "price":
		return "p.price " + dir
	case "cost":
		return "p.cost " + dir
	case "updated_at":
		return "p.updated_at " + dir
	default:
		return "p.created_at " + dir
	}
}
