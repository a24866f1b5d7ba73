package products

import (
	"context"
	"strings"

	"github.com/tradepost/tradepost/internal/shared"
)

// Service mediates ownership-scoped product operations.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the caller's products. Anonymous callers get an empty
// page rather than an error.
func (s *Service) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Summary, shared.Pagination, error) {
	filters.Normalize()
	if ownerID <= 0 {
		return []Summary{}, shared.NewPagination(filters.Page, filters.Limit, 0), nil
	}
	items, total, err := s.repo.List(ctx, ListQuery{OwnerID: ownerID, Filters: filters})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

// Mine returns the caller's products, requiring authentication.
func (s *Service) Mine(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Summary, shared.Pagination, error) {
	if ownerID <= 0 {
		return nil, shared.Pagination{}, shared.ErrUnauthorized
	}
	return s.List(ctx, ownerID, filters)
}

// LowCost returns the caller's products with cost strictly below the
// threshold. Cost is the owner's private figure, so the query is
// owner-scoped like the standard list.
func (s *Service) LowCost(ctx context.Context, ownerID int64, maxCost float64, filters shared.ListFilters) ([]Summary, shared.Pagination, error) {
	filters.Normalize()
	if ownerID <= 0 {
		return []Summary{}, shared.NewPagination(filters.Page, filters.Limit, 0), nil
	}
	items, total, err := s.repo.List(ctx, ListQuery{OwnerID: ownerID, MaxCost: &maxCost, Filters: filters})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

// Get returns the full representation. Reads are unrestricted.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create stores a new product owned by the caller.
func (s *Service) Create(ctx context.Context, ownerID int64, req CreateRequest) (Product, error) {
	if ownerID <= 0 {
		return Product{}, shared.ErrUnauthorized
	}
	status := true
	if req.Status != nil {
		status = *req.Status
	}
	product := Product{
		Name:        shared.NormalizeName(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Cost:        req.Cost,
		Tax:         req.Tax,
		Stock:       req.Stock,
		Status:      status,
		CreatedBy:   ownerID,
	}
	if err := validateProduct(product); err != nil {
		return Product{}, err
	}
	id, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Update merges the payload onto the stored product and validates the
// merged view, so partial updates respect cross-field rules against
// unchanged stored values. Only the owner may mutate; the ownership
// check runs before validation.
func (s *Service) Update(ctx context.Context, ownerID, id int64, req UpdateRequest) (Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.authorize(ownerID, current); err != nil {
		return Product{}, err
	}

	if req.Name != nil {
		current.Name = shared.NormalizeName(*req.Name)
	}
	if req.Description != nil {
		current.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		current.Price = *req.Price
	}
	if req.Cost != nil {
		current.Cost = *req.Cost
	}
	if req.Tax != nil {
		current.Tax = *req.Tax
	}
	if req.Stock != nil {
		current.Stock = *req.Stock
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if err := validateProduct(current); err != nil {
		return Product{}, err
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes the product. Only the owner may delete.
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

func (s *Service) authorize(ownerID int64, product Product) error {
	if ownerID <= 0 {
		return shared.ErrUnauthorized
	}
	if product.CreatedBy != ownerID {
		return shared.ErrForbidden
	}
	return nil
}
