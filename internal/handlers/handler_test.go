// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides fakes for the services behind the handlers and
// a router that wires them the same way the real router does.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"giftora/internal/catalog"
	"giftora/internal/compose"
	"giftora/internal/models"
	"giftora/internal/studio"
)

type fakeCatalog struct {
	items    []models.NormalizedTemplate
	err      error
	lastOpts catalog.ListOptions
	lastArg  string
	limit    int
	calls    int
}

func (f *fakeCatalog) List(_ context.Context, opts catalog.ListOptions) ([]models.NormalizedTemplate, error) {
	f.calls++
	f.lastOpts = opts
	return f.items, f.err
}

func (f *fakeCatalog) Latest(_ context.Context, limit int) ([]models.NormalizedTemplate, error) {
	f.calls++
	f.limit = limit
	return f.items, f.err
}

func (f *fakeCatalog) Trending(_ context.Context, limit int) ([]models.NormalizedTemplate, error) {
	f.calls++
	f.limit = limit
	return f.items, f.err
}

func (f *fakeCatalog) ByCategory(_ context.Context, category string, limit int) ([]models.NormalizedTemplate, error) {
	f.calls++
	f.lastArg, f.limit = category, limit
	return f.items, f.err
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID, includeInactive bool) (*models.NormalizedTemplate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.items {
		if f.items[i].ID == id && (f.items[i].IsActive || includeInactive) {
			return &f.items[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

type fakeCategories struct{}

func (fakeCategories) List(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "birthday", Name: "Birthday", TemplateCount: 2}}, nil
}

func (fakeCategories) ListSubcategories(context.Context) ([]models.Subcategory, error) {
	return []models.Subcategory{{ID: "birthday-mom", CategoryID: "birthday", Name: "For Mom"}}, nil
}

type fakeRenderer struct {
	docs map[uuid.UUID]string
	lang string
}

func (f *fakeRenderer) Render(_ context.Context, id uuid.UUID, lang string, publicOnly bool) (string, error) {
	f.lang = lang
	doc, ok := f.docs[id]
	if !ok || (publicOnly && strings.Contains(doc, "draft")) {
		return "", catalog.ErrNotFound
	}
	return doc, nil
}

func (f *fakeRenderer) ComposeParts(p compose.Parts) string {
	doc, _ := compose.ComposeOrFallback(p)
	return doc
}

type fakeStudio struct {
	err      error
	lastHTML studio.HTMLInput
	lastID   uuid.UUID
}

func (f *fakeStudio) CreateHTML(_ context.Context, in studio.HTMLInput) (*studio.Saved, error) {
	f.lastHTML = in
	if f.err != nil {
		return nil, f.err
	}
	return &studio.Saved{Template: &models.HTMLTemplate{ID: uuid.New(), Name: in.Name, Status: models.StatusDraft}}, nil
}

func (f *fakeStudio) UpdateHTML(_ context.Context, id uuid.UUID, in studio.HTMLInput) (*studio.Saved, error) {
	f.lastID, f.lastHTML = id, in
	if f.err != nil {
		return nil, f.err
	}
	return &studio.Saved{Template: &models.HTMLTemplate{ID: id, Name: in.Name, Status: models.StatusDraft}}, nil
}

func (f *fakeStudio) CreateReact(_ context.Context, in studio.ReactInput) (*studio.Saved, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &studio.Saved{Template: &models.ReactTemplate{ID: uuid.New(), Name: in.Name, IsActive: true}}, nil
}

func (f *fakeStudio) status(id uuid.UUID, s models.TemplateStatus) (*models.HTMLTemplate, error) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return &models.HTMLTemplate{ID: id, Status: s, IsActive: s.Visible()}, nil
}

func (f *fakeStudio) Publish(_ context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	return f.status(id, models.StatusPending)
}

func (f *fakeStudio) Approve(_ context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	return f.status(id, models.StatusApproved)
}

func (f *fakeStudio) Reject(_ context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	return f.status(id, models.StatusRejected)
}

func (f *fakeStudio) Queue(_ context.Context, status models.TemplateStatus) ([]*models.HTMLTemplate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

type countingObserver struct{ sources []string }

func (c *countingObserver) FetchError(source string) { c.sources = append(c.sources, source) }

type testEnv struct {
	catalog  *fakeCatalog
	renderer *fakeRenderer
	studio   *fakeStudio
	obs      *countingObserver
	router   chi.Router
}

func newTestEnv() *testEnv {
	env := &testEnv{
		catalog:  &fakeCatalog{},
		renderer: &fakeRenderer{docs: map[uuid.UUID]string{}},
		studio:   &fakeStudio{},
		obs:      &countingObserver{},
	}
	tmpl := NewTemplates(env.catalog, fakeCategories{}, nil, env.obs)
	prev := NewPreview(env.renderer, env.obs)
	st := NewStudio(env.studio, env.obs)

	r := chi.NewRouter()
	r.Get("/api/categories", tmpl.Categories)
	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", tmpl.List)
		r.Get("/latest", tmpl.Latest)
		r.Get("/trending", tmpl.Trending)
		r.Get("/admin", tmpl.Admin)
		r.Get("/by-category/{category}", tmpl.ByCategory)
		r.Get("/{id}", tmpl.Get)
		r.Get("/{id}/preview", prev.Template)
	})
	r.Get("/p/{id}", prev.Public)
	r.Post("/api/studio/preview", prev.Compose)
	r.Post("/api/studio/transform", st.Transform)
	r.Post("/api/studio/html-templates", st.CreateHTML)
	r.Put("/api/studio/html-templates/{id}", st.UpdateHTML)
	r.Post("/api/studio/html-templates/{id}/publish", st.Publish)
	r.Post("/api/studio/react-templates", st.CreateReact)
	r.Get("/api/admin/html-templates", st.Queue)
	r.Post("/api/admin/html-templates/{id}/approve", st.Approve)
	r.Post("/api/admin/html-templates/{id}/reject", st.Reject)
	env.router = r
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the "data" member of a JSON response into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return env.Error
}

var errBoom = errors.New("boom")
