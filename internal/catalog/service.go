// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog is the single read path for templates. It fetches both
// template stores, normalizes and merges the rows, sorts and paginates the
// result and attaches review statistics.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"giftora/internal/models"
)

// ErrNotFound is returned by Get when no visible template has the id.
var ErrNotFound = errors.New("template not found")

// FetchError wraps a failure of one of the backing stores. No partial
// result is ever returned alongside it.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Sort fields accepted by List.
const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
)

// ReactStore reads component templates.
type ReactStore interface {
	List(ctx context.Context, f models.TemplateFilter) ([]*models.ReactTemplate, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReactTemplate, error)
}

// HTMLStore reads raw HTML templates.
type HTMLStore interface {
	List(ctx context.Context, f models.TemplateFilter) ([]*models.HTMLTemplate, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error)
}

// CategoryStore reads the category tree used to resolve filters.
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	ListSubcategories(ctx context.Context) ([]models.Subcategory, error)
}

// ReviewStore aggregates review ratings.
type ReviewStore interface {
	Aggregates(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RatingStats, error)
}

// OrderStore counts paid purchases per template.
type OrderStore interface {
	PurchaseCounts(ctx context.Context) (map[uuid.UUID]int, error)
}

// Stores groups the collaborators of a Service.
type Stores struct {
	React      ReactStore
	HTML       HTMLStore
	Categories CategoryStore
	Reviews    ReviewStore
	Orders     OrderStore
}

// Service merges and enriches templates from both stores.
type Service struct {
	stores Stores
}

// NewService creates a Service reading from the given stores.
func NewService(stores Stores) *Service {
	return &Service{stores: stores}
}

// ListOptions controls a listing. Limit <= 0 means no limit.
type ListOptions struct {
	Category        string
	SortBy          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// List returns the merged, sorted, paginated and enriched listing.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.NormalizedTemplate, error) {
	filter, err := s.resolveFilter(ctx, opts.Category, opts.IncludeInactive)
	if err != nil {
		return nil, err
	}

	items, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}

	sortTemplates(items, opts.SortBy)
	items = paginate(items, opts.Offset, opts.Limit)
	return s.enrich(ctx, items)
}

// Latest returns the most recently created visible templates.
func (s *Service) Latest(ctx context.Context, limit int) ([]models.NormalizedTemplate, error) {
	return s.List(ctx, ListOptions{SortBy: SortCreatedAt, Limit: limit})
}

// ByCategory returns visible templates matching a category id or name,
// newest first.
func (s *Service) ByCategory(ctx context.Context, category string, limit int) ([]models.NormalizedTemplate, error) {
	return s.List(ctx, ListOptions{Category: category, SortBy: SortCreatedAt, Limit: limit})
}

// Trending ranks visible templates by paid purchases. Without any purchase
// history it returns the same result as Latest.
func (s *Service) Trending(ctx context.Context, limit int) ([]models.NormalizedTemplate, error) {
	counts, err := s.stores.Orders.PurchaseCounts(ctx)
	if err != nil {
		return nil, &FetchError{Source: "orders", Err: err}
	}
	if len(counts) == 0 {
		slog.Debug("no purchase history, trending falls back to latest")
		return s.Latest(ctx, limit)
	}

	items, err := s.fetch(ctx, models.TemplateFilter{})
	if err != nil {
		return nil, err
	}

	sortTemplates(items, SortCreatedAt)
	// Stable sort keeps the recency order among templates with equal counts.
	sort.SliceStable(items, func(i, j int) bool {
		return counts[items[i].ID] > counts[items[j].ID]
	})
	items = paginate(items, 0, limit)
	return s.enrich(ctx, items)
}

// Get returns one template by id. Inactive templates are only returned
// when includeInactive is set.
func (s *Service) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.NormalizedTemplate, error) {
	var (
		react *models.ReactTemplate
		html  *models.HTMLTemplate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.stores.React.FindByID(gctx, id)
		if err != nil {
			return &FetchError{Source: "react templates", Err: err}
		}
		react = r
		return nil
	})
	g.Go(func() error {
		h, err := s.stores.HTML.FindByID(gctx, id)
		if err != nil {
			return &FetchError{Source: "html templates", Err: err}
		}
		html = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rec models.TemplateRecord
	switch {
	case react != nil:
		rec = react
	case html != nil:
		rec = html
	default:
		return nil, ErrNotFound
	}

	n, err := Normalize(rec)
	if err != nil {
		return nil, &FetchError{Source: "normalize", Err: err}
	}
	if !n.IsActive && !includeInactive {
		return nil, ErrNotFound
	}

	enriched, err := s.enrich(ctx, []models.NormalizedTemplate{n})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// resolveFilter expands a category filter value into the category and
// subcategory ids whose own id or name equals it. The match is inclusive:
// a name that collides with another category's id selects both.
func (s *Service) resolveFilter(ctx context.Context, category string, includeInactive bool) (models.TemplateFilter, error) {
	f := models.TemplateFilter{IncludeInactive: includeInactive, Category: category}
	if category == "" {
		return f, nil
	}

	var (
		cats []models.Category
		subs []models.Subcategory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.stores.Categories.List(gctx)
		if err != nil {
			return &FetchError{Source: "categories", Err: err}
		}
		cats = c
		return nil
	})
	g.Go(func() error {
		sc, err := s.stores.Categories.ListSubcategories(gctx)
		if err != nil {
			return &FetchError{Source: "subcategories", Err: err}
		}
		subs = sc
		return nil
	})
	if err := g.Wait(); err != nil {
		return f, err
	}

	for _, c := range cats {
		if c.ID == category || c.Name == category {
			f.CategoryIDs = append(f.CategoryIDs, c.ID)
		}
	}
	for _, sc := range subs {
		if sc.ID == category || sc.Name == category {
			f.SubcategoryIDs = append(f.SubcategoryIDs, sc.ID)
		}
	}
	return f, nil
}

// fetch reads both stores concurrently and normalizes every row. Either
// store failing fails the whole fetch.
func (s *Service) fetch(ctx context.Context, f models.TemplateFilter) ([]models.NormalizedTemplate, error) {
	var (
		reacts []*models.ReactTemplate
		htmls  []*models.HTMLTemplate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.stores.React.List(gctx, f)
		if err != nil {
			return &FetchError{Source: "react templates", Err: err}
		}
		reacts = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.stores.HTML.List(gctx, f)
		if err != nil {
			return &FetchError{Source: "html templates", Err: err}
		}
		htmls = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.NormalizedTemplate, 0, len(reacts)+len(htmls))
	for _, r := range reacts {
		n, err := Normalize(r)
		if err != nil {
			return nil, &FetchError{Source: "normalize", Err: err}
		}
		items = append(items, n)
	}
	for _, h := range htmls {
		n, err := Normalize(h)
		if err != nil {
			return nil, &FetchError{Source: "normalize", Err: err}
		}
		items = append(items, n)
	}
	return items, nil
}

// enrich returns copies of items with rating statistics attached. The
// input slice is not modified.
func (s *Service) enrich(ctx context.Context, items []models.NormalizedTemplate) ([]models.NormalizedTemplate, error) {
	out := make([]models.NormalizedTemplate, len(items))
	copy(out, items)
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(out))
	for i, t := range out {
		ids[i] = t.ID
	}
	stats, err := s.stores.Reviews.Aggregates(ctx, ids)
	if err != nil {
		return nil, &FetchError{Source: "reviews", Err: err}
	}

	for i := range out {
		st := stats[out[i].ID]
		out[i].Rating = models.RoundRating(st.AvgRating)
		out[i].ReviewsCount = st.ReviewsCount
	}
	return out, nil
}

// sortTemplates orders items newest first by the given field, breaking
// ties by id so the order is total.
func sortTemplates(items []models.NormalizedTemplate, field string) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].CreatedAt, items[j].CreatedAt
		if field == SortUpdatedAt {
			a, b = items[i].UpdatedAt, items[j].UpdatedAt
		}
		if !a.Equal(b) {
			return a.After(b)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

func paginate(items []models.NormalizedTemplate, offset, limit int) []models.NormalizedTemplate {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
