package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/tradepost/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error

	CreateToken(ctx context.Context, record TokenRecord) error
	GetToken(ctx context.Context, jti uuid.UUID) (*TokenRecord, error)
	RevokeToken(ctx context.Context, jti uuid.UUID, at time.Time) error
	PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, first_name, last_name, phone, password_hash, is_active, is_staff, last_login_at, created_at, updated_at`

// CreateUser inserts a new account. A duplicate email surfaces as a
// field-scoped conflict.
func (r *PGRepository) CreateUser(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, first_name, last_name, phone, password_hash, is_active, is_staff, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		user.Email, user.FirstName, user.LastName, user.Phone, user.PasswordHash, user.IsActive, user.IsStaff, now,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.Conflict("email", "a user with this email already exists")
		}
		return err
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// FindByEmail fetches a user by normalized email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PGRepository) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone, &u.PasswordHash,
		&u.IsActive, &u.IsStaff, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePassword replaces the stored hash.
func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// TouchLastLogin stamps the latest successful authentication.
func (r *PGRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at.UTC(), id)
	return err
}

// CreateToken records an issued refresh token.
func (r *PGRepository) CreateToken(ctx context.Context, record TokenRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_tokens (jti, user_id, issued_at, expires_at, ip, user_agent)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))`,
		record.JTI, record.UserID, record.IssuedAt.UTC(), record.ExpiresAt.UTC(), record.IP, record.UserAgent)
	return err
}

// GetToken loads an issued token row by JTI.
func (r *PGRepository) GetToken(ctx context.Context, jti uuid.UUID) (*TokenRecord, error) {
	var rec TokenRecord
	var ip, ua *string
	err := r.pool.QueryRow(ctx,
		`SELECT jti, user_id, issued_at, expires_at, revoked_at, ip, user_agent FROM auth_tokens WHERE jti = $1`,
		jti).Scan(&rec.JTI, &rec.UserID, &rec.IssuedAt, &rec.ExpiresAt, &rec.RevokedAt, &ip, &ua)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if ip != nil {
		rec.IP = *ip
	}
	if ua != nil {
		rec.UserAgent = *ua
	}
	return &rec, nil
}

// RevokeToken marks an issued token revoked. Already-revoked rows keep
// their original timestamp.
func (r *PGRepository) RevokeToken(ctx context.Context, jti uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auth_tokens SET revoked_at = $1 WHERE jti = $2 AND revoked_at IS NULL`,
		at.UTC(), jti)
	return err
}

// PurgeExpiredTokens deletes token rows expired before the cutoff.
func (r *PGRepository) PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
