package posts

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/tradepost/internal/shared"
)

// ListQuery scopes a post listing.
type ListQuery struct {
	// AuthorID restricts results to one owner when non-zero.
	AuthorID int64
	// PublishedOnly restricts results to published posts.
	PublishedOnly bool
	Filters       shared.ListFilters
}

// Repository defines post persistence operations.
type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Summary, int, error)
	Get(ctx context.Context, id int64) (Post, error)
	Create(ctx context.Context, post Post) (int64, error)
	Update(ctx context.Context, post Post) error
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

	if q.AuthorID > 0 {
		argCount++
		where += ` AND p.author_id = $` + strconv.Itoa(argCount)
		args = append(args, q.AuthorID)
	}
	if q.PublishedOnly {
		where += ` AND p.is_published = TRUE`
	}
	if q.Filters.Search != "" {
		argCount++
		where += ` AND (p.title ILIKE $` + strconv.Itoa(argCount) + ` OR p.content ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+q.Filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT p.id, p.title, u.first_name || ' ' || u.last_name, p.created_at, p.is_published
		FROM posts p JOIN users u ON u.id = p.author_id` + where +
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
		if err := rows.Scan(&s.ID, &s.Title, &s.AuthorName, &s.CreatedAt, &s.IsPublished); err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Post, error) {
	query := `SELECT p.id, p.title, p.content, p.author_id, u.first_name || ' ' || u.last_name, p.is_published, p.created_at, p.updated_at
		FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1`
	var p Post
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorName, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, shared.ErrNotFound
		}
		return Post{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, post Post) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO posts (title, content, author_id, is_published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		post.Title, post.Content, post.AuthorID, post.IsPublished, now).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, post Post) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE posts SET title = $1, content = $2, is_published = $3, updated_at = $4 WHERE id = $5`,
		post.Title, post.Content, post.IsPublished, time.Now().UTC(), post.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
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
	case "title":
		return "p.title " + dir
	case "updated_at":
		return "p.updated_at " + dir
	default:
		return "p.created_at " + dir
	}
}
