package posts

import (
	"context"
	"strings"

	"github.com/tradepost/tradepost/internal/shared"
)

// Service mediates ownership-scoped post operations.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the caller's posts. Anonymous callers get an empty page
// rather than an error.
func (s *Service) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Summary, shared.Pagination, error) {
	filters.Normalize()
	if ownerID <= 0 {
		return []Summary{}, shared.NewPagination(filters.Page, filters.Limit, 0), nil
	}
	items, total, err := s.repo.List(ctx, ListQuery{AuthorID: ownerID, Filters: filters})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

// Mine returns the caller's posts, requiring authentication.
func (s *Service) Mine(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Summary, shared.Pagination, error) {
	if ownerID <= 0 {
		return nil, shared.Pagination{}, shared.ErrUnauthorized
	}
	return s.List(ctx, ownerID, filters)
}

// Published returns published posts across all authors.
func (s *Service) Published(ctx context.Context, filters shared.ListFilters) ([]Summary, shared.Pagination, error) {
	filters.Normalize()
	items, total, err := s.repo.List(ctx, ListQuery{PublishedOnly: true, Filters: filters})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

// Get returns the full representation. Reads are unrestricted.
func (s *Service) Get(ctx context.Context, id int64) (Post, error) {
	if id <= 0 {
		return Post{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create stores a new post owned by the caller.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateRequest) (Post, error) {
	if ownerID <= 0 {
		return Post{}, shared.ErrUnauthorized
	}
	post := Post{
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		AuthorID:    ownerID,
		IsPublished: req.IsPublished,
	}
	if err := validatePost(post); err != nil {
		return Post{}, err
	}
	id, err := s.repo.Create(ctx, post)
	if err != nil {
		return Post{}, err
	}
	return s.repo.Get(ctx, id)
}

// Update merges the payload onto the stored post and persists the
// result. Only the author may mutate; the ownership check runs before
// validation so a forbidden request never reports field errors.
func (s *Service) Update(ctx context.Context, ownerID, id int64, req UpdateRequest) (Post, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if err := s.authorize(ownerID, current); err != nil {
		return Post{}, err
	}

	if req.Title != nil {
		current.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		current.Content = *req.Content
	}
	if req.IsPublished != nil {
		current.IsPublished = *req.IsPublished
	}
	if err := validatePost(current); err != nil {
		return Post{}, err
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Post{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the post. Only the author may delete.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ownerID, current); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorize(ownerID int64, post Post) error {
	if ownerID <= 0 {
		return shared.ErrUnauthorized
	}
	if post.AuthorID != ownerID {
		return shared.ErrForbidden
	}
	return nil
}
