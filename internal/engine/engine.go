// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders HTML templates into the self-contained documents
// served to preview iframes and public pages. Composed documents are
// cached in memory per template version and language.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"giftora/internal/compose"
	"giftora/internal/models"
)

// ErrNotFound is returned when the template does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("template not found")

// TemplateSource loads HTML templates by id.
type TemplateSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error)
}

// Observer receives preview events. *metrics.Metrics satisfies it.
type Observer interface {
	ComposeError()
	PreviewLookup(hit bool)
}

// Engine composes HTML templates for display.
type Engine struct {
	templates   TemplateSource
	cache       *documentCache
	observer    Observer
	defaultLang string
}

// New creates an Engine. observer may be nil.
func New(templates TemplateSource, observer Observer, defaultLang string) *Engine {
	if defaultLang == "" {
		defaultLang = "en"
	}
	return &Engine{
		templates:   templates,
		cache:       newDocumentCache(),
		observer:    observer,
		defaultLang: defaultLang,
	}
}

// Render returns the composed document of a stored template. With
// publicOnly set, inactive templates are reported as not found. A
// template whose translations cannot be embedded renders as a fallback
// document; that document is not cached.
func (e *Engine) Render(ctx context.Context, id uuid.UUID, lang string, publicOnly bool) (string, error) {
	t, err := e.templates.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load template for preview: %w", err)
	}
	if t == nil || (publicOnly && !t.IsActive) {
		return "", ErrNotFound
	}
	if lang == "" {
		lang = e.defaultLang
	}

	key := cacheKey{id: t.ID, version: t.UpdatedAt.UnixNano(), lang: lang}
	if doc, ok := e.cache.get(key); ok {
		e.lookup(true)
		return doc, nil
	}
	e.lookup(false)

	doc, err := e.compose(compose.Parts{
		Name:         t.Name,
		HTML:         t.HTMLCode,
		CSS:          t.CSSCode,
		JS:           t.JSCode,
		Translations: t.Translations,
		Language:     lang,
	})
	if err != nil {
		return doc, nil
	}
	e.cache.put(key, doc)
	return doc, nil
}

// ComposeParts composes unsaved parts. The result is never cached.
func (e *Engine) ComposeParts(p compose.Parts) string {
	if p.Language == "" {
		p.Language = e.defaultLang
	}
	doc, _ := e.compose(p)
	return doc
}

// Invalidate drops the cached documents of one template.
func (e *Engine) Invalidate(id uuid.UUID) {
	e.cache.invalidate(id)
}

func (e *Engine) compose(p compose.Parts) (string, error) {
	doc, err := compose.ComposeOrFallback(p)
	if err != nil {
		slog.Warn("preview compose failed, serving fallback", "name", p.Name, "error", err)
		if e.observer != nil {
			e.observer.ComposeError()
		}
	}
	return doc, err
}

func (e *Engine) lookup(hit bool) {
	if e.observer != nil {
		e.observer.PreviewLookup(hit)
	}
}
