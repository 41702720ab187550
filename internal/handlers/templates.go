// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"giftora/internal/cache"
	"giftora/internal/catalog"
	"giftora/internal/models"
)

const (
	defaultShortLimit = 10
	maxLimit          = 100
)

// Catalog is the template read path.
type Catalog interface {
	List(ctx context.Context, opts catalog.ListOptions) ([]models.NormalizedTemplate, error)
	Latest(ctx context.Context, limit int) ([]models.NormalizedTemplate, error)
	Trending(ctx context.Context, limit int) ([]models.NormalizedTemplate, error)
	ByCategory(ctx context.Context, category string, limit int) ([]models.NormalizedTemplate, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.NormalizedTemplate, error)
}

// CategoryLister lists the category tree.
type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
	ListSubcategories(ctx context.Context) ([]models.Subcategory, error)
}

// Templates serves the JSON template read API. Customer-facing listings
// are cached in Valkey; the admin listing and details are not.
type Templates struct {
	catalog    Catalog
	categories CategoryLister
	listings   *cache.ListingCache
	obs        FetchObserver
}

// NewTemplates creates the read API handlers. listings and obs may be nil.
func NewTemplates(c Catalog, categories CategoryLister, listings *cache.ListingCache, obs FetchObserver) *Templates {
	return &Templates{catalog: c, categories: categories, listings: listings, obs: obs}
}

// List handles GET /api/templates.
func (h *Templates) List(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r.URL.Query())
	if !ok {
		return
	}
	h.cached(w, r, "templates", func(ctx context.Context) (any, error) {
		return h.catalog.List(ctx, opts)
	})
}

// Admin handles GET /api/templates/admin: the same listing including
// inactive templates.
func (h *Templates) Admin(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r.URL.Query())
	if !ok {
		return
	}
	opts.IncludeInactive = true
	items, err := h.catalog.List(r.Context(), opts)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	writeData(w, http.StatusOK, items)
}

// Latest handles GET /api/templates/latest.
func (h *Templates) Latest(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r.URL.Query(), defaultShortLimit)
	if !ok {
		return
	}
	h.cached(w, r, "latest", func(ctx context.Context) (any, error) {
		return h.catalog.Latest(ctx, limit)
	})
}

// Trending handles GET /api/templates/trending.
func (h *Templates) Trending(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r.URL.Query(), defaultShortLimit)
	if !ok {
		return
	}
	h.cached(w, r, "trending", func(ctx context.Context) (any, error) {
		return h.catalog.Trending(ctx, limit)
	})
}

// ByCategory handles GET /api/templates/by-category/{category}.
func (h *Templates) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	limit, ok := parseLimit(w, r.URL.Query(), 0)
	if !ok {
		return
	}
	h.cached(w, r, "by-category:"+category, func(ctx context.Context) (any, error) {
		return h.catalog.ByCategory(ctx, category, limit)
	})
}

// Get handles GET /api/templates/{id}.
func (h *Templates) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	t, err := h.catalog.Get(r.Context(), id, false)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	writeData(w, http.StatusOK, t)
}

type categoryTree struct {
	Categories    []models.Category    `json:"categories"`
	Subcategories []models.Subcategory `json:"subcategories"`
}

// Categories handles GET /api/categories.
func (h *Templates) Categories(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "categories", func(ctx context.Context) (any, error) {
		cats, err := h.categories.List(ctx)
		if err != nil {
			return nil, &catalog.FetchError{Source: "categories", Err: err}
		}
		subs, err := h.categories.ListSubcategories(ctx)
		if err != nil {
			return nil, &catalog.FetchError{Source: "subcategories", Err: err}
		}
		return categoryTree{Categories: cats, Subcategories: subs}, nil
	})
}

// cached serves a listing from the listing cache or computes, writes and
// stores it. Errors are never cached.
func (h *Templates) cached(w http.ResponseWriter, r *http.Request, route string, load func(context.Context) (any, error)) {
	ctx := r.Context()
	key := cache.ListingKey(route, r.URL.Query())
	if body, ok := h.listings.Get(ctx, key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "HIT")
		w.Write(body)
		return
	}

	data, err := load(ctx)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	body, err := json.Marshal(dataEnvelope{Data: data})
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	h.listings.Set(ctx, key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	w.Write(body)
}

func listOptions(w http.ResponseWriter, q url.Values) (catalog.ListOptions, bool) {
	opts := catalog.ListOptions{Category: q.Get("category"), SortBy: catalog.SortCreatedAt}
	switch s := q.Get("sort"); s {
	case "", catalog.SortCreatedAt:
	case catalog.SortUpdatedAt:
		opts.SortBy = s
	default:
		writeError(w, http.StatusBadRequest, "sort must be createdAt or updatedAt")
		return opts, false
	}

	limit, ok := parseLimit(w, q, 0)
	if !ok {
		return opts, false
	}
	opts.Limit = limit

	if p := q.Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return opts, false
		}
		if limit > 0 {
			opts.Offset = (page - 1) * limit
		}
	}
	return opts, true
}

// parseLimit reads the limit parameter, capped at maxLimit. A missing
// parameter yields def.
func parseLimit(w http.ResponseWriter, q url.Values, def int) (int, bool) {
	v := q.Get("limit")
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template id")
		return uuid.Nil, false
	}
	return id, true
}
