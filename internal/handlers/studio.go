// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"giftora/internal/editable"
	"giftora/internal/models"
	"giftora/internal/studio"
)

// StudioService is the creator/admin write path.
type StudioService interface {
	CreateHTML(ctx context.Context, in studio.HTMLInput) (*studio.Saved, error)
	UpdateHTML(ctx context.Context, id uuid.UUID, in studio.HTMLInput) (*studio.Saved, error)
	CreateReact(ctx context.Context, in studio.ReactInput) (*studio.Saved, error)
	Publish(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.HTMLTemplate, error)
	Queue(ctx context.Context, status models.TemplateStatus) ([]*models.HTMLTemplate, error)
}

// Studio serves the creator and admin write endpoints.
type Studio struct {
	svc StudioService
	obs FetchObserver
}

// NewStudio creates the studio handlers.
func NewStudio(svc StudioService, obs FetchObserver) *Studio {
	return &Studio{svc: svc, obs: obs}
}

type transformRequest struct {
	Source   string            `json:"source"`
	Language editable.Language `json:"language"`
	Scope    string            `json:"scope"`
}

type transformResponse struct {
	*editable.Document
	Warning string `json:"warning,omitempty"`
}

// Transform handles POST /api/studio/transform. It annotates a source
// without storing it; a transform warning is reported in the body.
func (h *Studio) Transform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Language {
	case "", editable.LanguageFragment, editable.LanguageDocument, editable.LanguageComponent:
	default:
		writeError(w, http.StatusUnprocessableEntity, "unknown language "+string(req.Language))
		return
	}

	doc, err := editable.Transform(req.Source, editable.Options{Language: req.Language, Scope: req.Scope})
	resp := transformResponse{Document: doc}
	if err != nil {
		resp.Warning = err.Error()
	}
	writeData(w, http.StatusOK, resp)
}

// CreateHTML handles POST /api/studio/html-templates.
func (h *Studio) CreateHTML(w http.ResponseWriter, r *http.Request) {
	var in studio.HTMLInput
	if !decodeJSON(w, r, &in) {
		return
	}
	saved, err := h.svc.CreateHTML(r.Context(), in)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	writeData(w, http.StatusCreated, saved)
}

// UpdateHTML handles PUT /api/studio/html-templates/{id}.
func (h *Studio) UpdateHTML(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in studio.HTMLInput
	if !decodeJSON(w, r, &in) {
		return
	}
	saved, err := h.svc.UpdateHTML(r.Context(), id, in)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	writeData(w, http.StatusOK, saved)
}

// CreateReact handles POST /api/studio/react-templates.
func (h *Studio) CreateReact(w http.ResponseWriter, r *http.Request) {
	var in studio.ReactInput
	if !decodeJSON(w, r, &in) {
		return
	}
	saved, err := h.svc.CreateReact(r.Context(), in)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	writeData(w, http.StatusCreated, saved)
}

// Publish handles POST /api/studio/html-templates/{id}/publish.
func (h *Studio) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Publish)
}

// Approve handles POST /api/admin/html-templates/{id}/approve.
func (h *Studio) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Approve)
}

// Reject handles POST /api/admin/html-templates/{id}/reject.
func (h *Studio) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Reject)
}

// Queue handles GET /api/admin/html-templates?status=pending.
func (h *Studio) Queue(w http.ResponseWriter, r *http.Request) {
	status := models.TemplateStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.StatusPending
	}
	items, err := h.svc.Queue(r.Context(), status)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	if items == nil {
		items = []*models.HTMLTemplate{}
	}
	writeData(w, http.StatusOK, items)
}

func (h *Studio) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) (*models.HTMLTemplate, error)) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	t, err := apply(r.Context(), id)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	writeData(w, http.StatusOK, t)
}
