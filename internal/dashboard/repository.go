package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CountPosts(ctx context.Context, ownerID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, ownerID)
}

func (r *repository) CountPublishedPosts(ctx context.Context, ownerID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = $1 AND is_published = TRUE`, ownerID)
}

func (r *repository) CountProducts(ctx context.Context, ownerID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM products WHERE created_by = $1`, ownerID)
}

func (r *repository) TotalStock(ctx context.Context, ownerID int64) (int, error) {
	return r.count(ctx, `SELECT COALESCE(SUM(stock), 0) FROM products WHERE created_by = $1`, ownerID)
}

func (r *repository) count(ctx context.Context, query string, ownerID int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
