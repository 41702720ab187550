// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package studio implements the creator and admin write paths: saving
// templates, which runs raw source through the editable-markup
// transformer, and moving HTML templates through the review workflow.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"giftora/internal/editable"
	"giftora/internal/models"
)

// ErrNotFound is returned when the template to change does not exist.
var ErrNotFound = errors.New("template not found")

// HTMLStore persists HTML templates.
type HTMLStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error)
	Create(ctx context.Context, t *models.HTMLTemplate) (*models.HTMLTemplate, error)
	Update(ctx context.Context, t *models.HTMLTemplate) (*models.HTMLTemplate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TemplateStatus) (bool, error)
	ListByStatus(ctx context.Context, status models.TemplateStatus) ([]*models.HTMLTemplate, error)
}

// ReactStore persists component templates.
type ReactStore interface {
	Create(ctx context.Context, t *models.ReactTemplate) (*models.ReactTemplate, error)
}

// ListingCache is cleared after every write.
type ListingCache interface {
	InvalidateAll(ctx context.Context) int
}

// InvalidationLog records why the listing cache was cleared.
type InvalidationLog interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string)
}

// PreviewCache drops composed documents of a changed template.
type PreviewCache interface {
	Invalidate(id uuid.UUID)
}

// Observer counts transform warnings. *metrics.Metrics satisfies it.
type Observer interface {
	TransformWarning()
}

// Deps groups the collaborators of a Service. Only the stores are required.
type Deps struct {
	HTML     HTMLStore
	React    ReactStore
	Listings ListingCache
	Log      InvalidationLog
	Previews PreviewCache
	Observer Observer
}

// Service is the creator/admin write boundary.
type Service struct {
	deps Deps
}

// New creates a Service.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// HTMLInput is a creator's HTML template submission.
type HTMLInput struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CategoryID    *string         `json:"categoryId"`
	SubcategoryID *string         `json:"subcategoryId"`
	Price         float64         `json:"price"`
	IsFree        bool            `json:"isFree"`
	HTML          string          `json:"htmlCode"`
	CSS           string          `json:"cssCode"`
	JS            string          `json:"jsCode"`
	Translations  json.RawMessage `json:"translations"`
}

// ReactInput is a creator's component template upload.
type ReactInput struct {
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	CategoryID    *string         `json:"categoryId"`
	SubcategoryID *string         `json:"subcategoryId"`
	Price         float64         `json:"price"`
	IsFree        bool            `json:"isFree"`
	IsPro         bool            `json:"isPro"`
	IsDynamic     bool            `json:"isDynamic"`
	Discount      float64         `json:"discount"`
	VideoURL      *string         `json:"videoUrl"`
	ComponentCode string          `json:"componentCode"`
	ConfigSchema  json.RawMessage `json:"configSchema"`
	InitialConfig json.RawMessage `json:"initialConfig"`
}

// Saved is the outcome of a save. Warnings list transform problems; the
// template was stored regardless.
type Saved struct {
	Template models.TemplateRecord `json:"template"`
	Elements []editable.Element    `json:"elements"`
	Warnings []string              `json:"warnings"`
}

// CreateHTML stores a new HTML template as a draft.
func (s *Service) CreateHTML(ctx context.Context, in HTMLInput) (*Saved, error) {
	if err := invalid(validateHTML(in)); err != nil {
		return nil, err
	}

	id := uuid.New()
	doc, warnings := s.transform(in.HTML, id, editable.Options{
		Language: editable.MarkupLanguage(in.HTML),
		Scope:    id.String(),
	})

	t, err := s.deps.HTML.Create(ctx, &models.HTMLTemplate{
		ID:            id,
		Name:          in.Name,
		Category:      in.Category,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Price:         in.Price,
		IsFree:        in.IsFree,
		HTMLCode:      doc.Source,
		CSSCode:       in.CSS,
		JSCode:        in.JS,
		Translations:  in.Translations,
		Status:        models.StatusDraft,
		IsActive:      models.StatusDraft.Visible(),
	})
	if err != nil {
		return nil, fmt.Errorf("create html template: %w", err)
	}

	s.invalidate(ctx, "html_template", t.ID, "create")
	slog.Info("html template created", "id", t.ID, "elements", len(doc.Elements))
	return &Saved{Template: t, Elements: doc.Elements, Warnings: warnings}, nil
}

// UpdateHTML replaces the content of an HTML template. Any edit sends the
// template back to draft and hides it until it is approved again.
func (s *Service) UpdateHTML(ctx context.Context, id uuid.UUID, in HTMLInput) (*Saved, error) {
	if err := invalid(validateHTML(in)); err != nil {
		return nil, err
	}

	current, err := s.deps.HTML.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load html template: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}
	status, err := current.Status.Next(models.ActionEdit)
	if err != nil {
		return nil, err
	}

	doc, warnings := s.transform(in.HTML, id, editable.Options{
		Language: editable.MarkupLanguage(in.HTML),
		Scope:    id.String(),
	})

	t, err := s.deps.HTML.Update(ctx, &models.HTMLTemplate{
		ID:            id,
		Name:          in.Name,
		Category:      in.Category,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Price:         in.Price,
		IsFree:        in.IsFree,
		HTMLCode:      doc.Source,
		CSSCode:       in.CSS,
		JSCode:        in.JS,
		Translations:  in.Translations,
		Status:        status,
		IsActive:      status.Visible(),
	})
	if err != nil {
		return nil, fmt.Errorf("update html template: %w", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}

	s.invalidate(ctx, "html_template", id, "update")
	slog.Info("html template updated", "id", id, "previous_status", current.Status)
	return &Saved{Template: t, Elements: doc.Elements, Warnings: warnings}, nil
}

// CreateReact stores a component template. Creator uploads are visible
// immediately.
func (s *Service) CreateReact(ctx context.Context, in ReactInput) (*Saved, error) {
	if err := invalid(validateReact(in)); err != nil {
		return nil, err
	}

	id := uuid.New()
	doc, warnings := s.transform(in.ComponentCode, id, editable.Options{
		Language: editable.LanguageComponent,
		Scope:    id.String(),
	})

	t, err := s.deps.React.Create(ctx, &models.ReactTemplate{
		ID:            id,
		Name:          in.Name,
		Category:      in.Category,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Price:         in.Price,
		IsFree:        in.IsFree,
		IsPro:         in.IsPro,
		IsDynamic:     in.IsDynamic,
		Discount:      in.Discount,
		VideoURL:      in.VideoURL,
		ComponentCode: doc.Source,
		ConfigSchema:  in.ConfigSchema,
		InitialConfig: in.InitialConfig,
		IsActive:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("create react template: %w", err)
	}

	s.invalidate(ctx, "react_template", t.ID, "create")
	slog.Info("react template created", "id", t.ID, "elements", len(doc.Elements))
	return &Saved{Template: t, Elements: doc.Elements, Warnings: warnings}, nil
}

// Publish submits a draft for review.
func (s *Service) Publish(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	return s.transition(ctx, id, models.ActionPublish)
}

// Approve makes a pending template visible to customers.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	return s.transition(ctx, id, models.ActionApprove)
}

// Reject declines a pending template.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error) {
	return s.transition(ctx, id, models.ActionReject)
}

// Queue lists the HTML templates waiting in a workflow status.
func (s *Service) Queue(ctx context.Context, status models.TemplateStatus) ([]*models.HTMLTemplate, error) {
	if !status.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("Unknown status %q.", status)}
	}
	items, err := s.deps.HTML.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list review queue: %w", err)
	}
	return items, nil
}

// transition applies a workflow action. The store only updates the row if
// it is still in the status the transition was computed from.
func (s *Service) transition(ctx context.Context, id uuid.UUID, action models.WorkflowAction) (*models.HTMLTemplate, error) {
	current, err := s.deps.HTML.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load html template: %w", err)
	}
	if current == nil {
		return nil, ErrNotFound
	}

	next, err := current.Status.Next(action)
	if err != nil {
		return nil, err
	}

	ok, err := s.deps.HTML.UpdateStatus(ctx, id, current.Status, next)
	if err != nil {
		return nil, fmt.Errorf("update html template status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: template %s changed status concurrently", models.ErrInvalidTransition, id)
	}

	s.invalidate(ctx, "html_template", id, string(action))
	slog.Info("html template status changed", "id", id, "from", current.Status, "to", next)

	updated, err := s.deps.HTML.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload html template: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// transform annotates source. A transform warning never blocks the save:
// the source is stored unannotated and the warning is returned.
func (s *Service) transform(src string, id uuid.UUID, opts editable.Options) (*editable.Document, []string) {
	doc, err := editable.Transform(src, opts)
	if err == nil {
		return doc, nil
	}
	slog.Warn("template saved without editable markers", "id", id, "error", err)
	if s.deps.Observer != nil {
		s.deps.Observer.TransformWarning()
	}
	return doc, []string{err.Error()}
}

func (s *Service) invalidate(ctx context.Context, entityType string, id uuid.UUID, action string) {
	if s.deps.Previews != nil {
		s.deps.Previews.Invalidate(id)
	}
	if s.deps.Listings == nil {
		return
	}
	n := s.deps.Listings.InvalidateAll(ctx)
	if s.deps.Log != nil {
		s.deps.Log.Log(ctx, entityType, id, action)
	}
	slog.Debug("listing cache invalidated", "entity", entityType, "id", id, "action", action, "keys", n)
}
