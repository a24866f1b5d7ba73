package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/tradepost/internal/platform/db"
	"github.com/tradepost/tradepost/internal/shared"
)

// Repository defines profile persistence operations.
type Repository interface {
	Get(ctx context.Context, id int64) (Profile, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone string) (Profile, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const profileQuery = `SELECT id, email, first_name, last_name, phone, last_login_at, created_at FROM users WHERE id = $1`

func (r *repository) Get(ctx context.Context, id int64) (Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx, profileQuery, id))
}

// UpdateProfile writes the new values and reloads the row in one
// transaction so the returned profile reflects exactly what was stored.
func (r *repository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone string) (Profile, error) {
	var profile Profile
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET first_name = $1, last_name = $2, phone = $3, updated_at = $4 WHERE id = $5`,
			firstName, lastName, phone, time.Now().UTC(), id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		profile, err = scanProfile(tx.QueryRow(ctx, profileQuery, id))
		return err
	})
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Phone, &p.LastLoginAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, err
	}
	p.FullName = fullName(p.FirstName, p.LastName)
	return p, nil
}

func fullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
