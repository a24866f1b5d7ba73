package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/tradepost/internal/shared"
)

type mockRepository struct {
	users        map[int64]*User
	usersByEmail map[string]*User
	tokens       map[uuid.UUID]*TokenRecord
	nextUserID   int64

	// Error injection
	createUserError  error
	findByEmailError error
	createTokenError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:        make(map[int64]*User),
		usersByEmail: make(map[string]*User),
		tokens:       make(map[uuid.UUID]*TokenRecord),
		nextUserID:   1,
	}
}

func (m *mockRepository) CreateUser(ctx context.Context, user *User) error {
	if m.createUserError != nil {
		return m.createUserError
	}
	if _, exists := m.usersByEmail[user.Email]; exists {
		return shared.Conflict("email", "a user with this email already exists")
	}
	user.ID = m.nextUserID
	m.nextUserID++
	copied := *user
	m.users[user.ID] = &copied
	m.usersByEmail[user.Email] = &copied
	return nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailError != nil {
		return nil, m.findByEmailError
	}
	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if u, ok := m.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *mockRepository) CreateToken(ctx context.Context, record TokenRecord) error {
	if m.createTokenError != nil {
		return m.createTokenError
	}
	m.tokens[record.JTI] = &record
	return nil
}

func (m *mockRepository) GetToken(ctx context.Context, jti uuid.UUID) (*TokenRecord, error) {
	rec, ok := m.tokens[jti]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *mockRepository) RevokeToken(ctx context.Context, jti uuid.UUID, at time.Time) error {
	if rec, ok := m.tokens[jti]; ok && rec.RevokedAt == nil {
		rec.RevokedAt = &at
	}
	return nil
}

func (m *mockRepository) PurgeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	for jti, rec := range m.tokens {
		if rec.ExpiresAt.Before(before) {
			delete(m.tokens, jti)
			deleted++
		}
	}
	return deleted, nil
}

var _ Repository = (*mockRepository)(nil)

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockRepository()
	tokens := newTestTokenManager(15*time.Minute, 24*time.Hour)
	svc := NewService(nil, repo, tokens, NewRevoker(client), nil, nil)
	return svc, repo
}

func registerUser(t *testing.T, svc *Service, email string) (*User, TokenPair) {
	t.Helper()
	user, pair, err := svc.Register(context.Background(), RegisterInput{
		Email:           email,
		FirstName:       "Alice",
		LastName:        "Doe",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
	}, RequestMeta{IP: "127.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	return user, pair
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, repo := newTestService(t)

	user, pair := registerUser(t, svc, "Alice@Example.COM")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Len(t, repo.tokens, 1)

	// Stored hash is not the raw password.
	stored := repo.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:           "not-an-email",
		Password:        "short",
		PasswordConfirm: "short",
	}, RequestMeta{})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be a valid email address", ve.Fields["email"])
	assert.Equal(t, "this field is required", ve.Fields["first_name"])
	assert.Contains(t, ve.Fields["password"], "at least 8")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:           "bob@example.com",
		FirstName:       "Bob",
		LastName:        "Doe",
		Password:        "password-one",
		PasswordConfirm: "password-two",
	}, RequestMeta{})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password fields didn't match", ve.Fields["password"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	registerUser(t, svc, "alice@example.com")

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:           "alice@example.com",
		FirstName:       "Another",
		LastName:        "Alice",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
	}, RequestMeta{})
	var conflict *shared.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService(t)
	user, _ := registerUser(t, svc, "alice@example.com")

	got, pair, err := svc.Login(context.Background(), "ALICE@example.com", "s3cret-pass", RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotNil(t, repo.users[user.ID].LastLoginAt)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, repo := newTestService(t)
	user, _ := registerUser(t, svc, "alice@example.com")

	_, _, err := svc.Login(context.Background(), "alice@example.com", "wrong-password", RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "unknown@example.com", "s3cret-pass", RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	repo.users[user.ID].IsActive = false
	repo.usersByEmail[user.Email].IsActive = false
	_, _, err = svc.Login(context.Background(), "alice@example.com", "s3cret-pass", RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, pair := registerUser(t, svc, "alice@example.com")

	next, err := svc.Refresh(context.Background(), pair.RefreshToken, RequestMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The rotated-out token is no longer accepted.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken, RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// The fresh one still is.
	_, err = svc.Refresh(context.Background(), next.RefreshToken, RequestMeta{})
	require.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token", RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, pair := registerUser(t, svc, "alice@example.com")

	_, err := svc.Refresh(context.Background(), pair.AccessToken, RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	user, pair := registerUser(t, svc, "alice@example.com")

	require.NoError(t, svc.Logout(context.Background(), user.ID, pair.RefreshToken))

	_, err := svc.Refresh(context.Background(), pair.RefreshToken, RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, alicePair := registerUser(t, svc, "alice@example.com")
	bob, _ := registerUser(t, svc, "bob@example.com")

	err := svc.Logout(context.Background(), bob.ID, alicePair.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestLogoutRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestService(t)
	user, _ := registerUser(t, svc, "alice@example.com")

	err := svc.Logout(context.Background(), user.ID, "nonsense")
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "token is invalid", ve.Fields["refresh_token"])
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	user, _ := registerUser(t, svc, "alice@example.com")

	err := svc.ChangePassword(context.Background(), user.ID, "s3cret-pass", "brand-new-pass", "brand-new-pass")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "brand-new-pass", RequestMeta{})
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), "alice@example.com", "s3cret-pass", RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestChangePasswordRejectsWrongOldPassword(t *testing.T) {
	svc, _ := newTestService(t)
	user, _ := registerUser(t, svc, "alice@example.com")

	err := svc.ChangePassword(context.Background(), user.ID, "wrong-old", "brand-new-pass", "brand-new-pass")
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "old password is not correct", ve.Fields["old_password"])
}

func TestChangePasswordCollectsAllErrors(t *testing.T) {
	svc, _ := newTestService(t)
	user, _ := registerUser(t, svc, "alice@example.com")

	err := svc.ChangePassword(context.Background(), user.ID, "wrong-old", "new-pass-one", "new-pass-two")
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password fields didn't match", ve.Fields["new_password"])
	assert.Equal(t, "old password is not correct", ve.Fields["old_password"])
}
