// Package dashboard aggregates per-account resource counts for the
// overview endpoint.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tradepost/tradepost/internal/shared"
)

// Overview is the account summary returned by /api/dashboard.
type Overview struct {
	PostCount      int `json:"post_count"`
	PublishedCount int `json:"published_count"`
	ProductCount   int `json:"product_count"`
	StockOnHand    int `json:"stock_on_hand"`
}

// Repository defines the aggregate queries behind the overview.
type Repository interface {
	CountPosts(ctx context.Context, ownerID int64) (int, error)
	CountPublishedPosts(ctx context.Context, ownerID int64) (int, error)
	CountProducts(ctx context.Context, ownerID int64) (int, error)
	TotalStock(ctx context.Context, ownerID int64) (int, error)
}

// Service fans the overview queries out concurrently.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Overview collects the caller's counts. The four aggregates are
// independent, so they run in parallel.
func (s *Service) Overview(ctx context.Context, ownerID int64) (Overview, error) {
	if ownerID <= 0 {
		return Overview{}, shared.ErrUnauthorized
	}

	var out Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountPosts(ctx, ownerID)
		out.PostCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountPublishedPosts(ctx, ownerID)
		out.PublishedCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountProducts(ctx, ownerID)
		out.ProductCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.TotalStock(ctx, ownerID)
		out.StockOnHand = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}
