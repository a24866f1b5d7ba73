package users

import (
	"context"

	"github.com/tradepost/tradepost/internal/shared"
)

// UpdateInput carries profile mutations. Nil fields are left untouched
// on partial updates.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// Service handles profile business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context, userID int64) (Profile, error) {
	if userID <= 0 {
		return Profile{}, shared.ErrUnauthorized
	}
	return s.repo.Get(ctx, userID)
}

// Update merges the input onto the stored profile and persists the
// result. Name fields must stay non-blank.
func (s *Service) Update(ctx context.Context, userID int64, in UpdateInput) (Profile, error) {
	if userID <= 0 {
		return Profile{}, shared.ErrUnauthorized
	}
	current, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	firstName := current.FirstName
	lastName := current.LastName
	phone := current.Phone
	if in.FirstName != nil {
		firstName = shared.NormalizeName(*in.FirstName)
	}
	if in.LastName != nil {
		lastName = shared.NormalizeName(*in.LastName)
	}
	if in.Phone != nil {
		phone = shared.NormalizeName(*in.Phone)
	}

	ve := shared.NewValidationError()
	if firstName == "" {
		ve.Fields.Set("first_name", "this field may not be blank")
	}
	if lastName == "" {
		ve.Fields.Set("last_name", "this field may not be blank")
	}
	if err := ve.ErrOrNil(); err != nil {
		return Profile{}, err
	}

	return s.repo.UpdateProfile(ctx, userID, firstName, lastName, phone)
}
