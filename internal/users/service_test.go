package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/tradepost/internal/shared"
)

type mockRepository struct {
	profiles map[int64]Profile

	updateError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{profiles: make(map[int64]Profile)}
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) UpdateProfile(ctx context.Context, id int64, firstName, lastName, phone string) (Profile, error) {
	if m.updateError != nil {
		return Profile{}, m.updateError
	}
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, shared.ErrNotFound
	}
	p.FirstName = firstName
	p.LastName = lastName
	p.Phone = phone
	p.FullName = firstName + " " + lastName
	m.profiles[id] = p
	return p, nil
}

var _ Repository = (*mockRepository)(nil)

func strPtr(s string) *string { return &s }

func seedProfile(repo *mockRepository) Profile {
	p := Profile{
		ID:        1,
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Doe",
		FullName:  "Alice Doe",
		Phone:     "12345",
	}
	repo.profiles[p.ID] = p
	return p
}

func TestGetProfile(t *testing.T) {
	repo := newMockRepository()
	seedProfile(repo)
	svc := NewService(repo)

	p, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Email)

	_, err = svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateProfileFull(t *testing.T) {
	repo := newMockRepository()
	seedProfile(repo)
	svc := NewService(repo)

	p, err := svc.Update(context.Background(), 1, UpdateInput{
		FirstName: strPtr("  Alicia "),
		LastName:  strPtr("Smith"),
		Phone:     strPtr("98765"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", p.FirstName)
	assert.Equal(t, "Smith", p.LastName)
	assert.Equal(t, "98765", p.Phone)
}

func TestUpdateProfilePartialKeepsStoredValues(t *testing.T) {
	repo := newMockRepository()
	seedProfile(repo)
	svc := NewService(repo)

	p, err := svc.Update(context.Background(), 1, UpdateInput{Phone: strPtr("555")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.FirstName)
	assert.Equal(t, "Doe", p.LastName)
	assert.Equal(t, "555", p.Phone)
}

func TestUpdateProfileRejectsBlankNames(t *testing.T) {
	repo := newMockRepository()
	seedProfile(repo)
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), 1, UpdateInput{
		FirstName: strPtr("   "),
		LastName:  strPtr(""),
	})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "this field may not be blank", ve.Fields["first_name"])
	assert.Equal(t, "this field may not be blank", ve.Fields["last_name"])

	// Stored profile is untouched.
	p, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.FirstName)
}

func TestUpdateProfileRequiresAuth(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Update(context.Background(), 0, UpdateInput{Phone: strPtr("555")})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
