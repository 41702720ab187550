// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"giftora/internal/compose"
)

// Renderer composes template documents.
type Renderer interface {
	Render(ctx context.Context, id uuid.UUID, lang string, publicOnly bool) (string, error)
	ComposeParts(p compose.Parts) string
}

// Preview serves composed HTML documents for iframes and public pages.
type Preview struct {
	renderer Renderer
	obs      FetchObserver
}

// NewPreview creates the preview handlers.
func NewPreview(renderer Renderer, obs FetchObserver) *Preview {
	return &Preview{renderer: renderer, obs: obs}
}

// Template handles GET /api/templates/{id}/preview. Creators preview
// their templates in any workflow status.
func (h *Preview) Template(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, false)
}

// Public handles GET /p/{id}; only customer-visible templates are served.
func (h *Preview) Public(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, true)
}

func (h *Preview) render(w http.ResponseWriter, r *http.Request, publicOnly bool) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.renderer.Render(r.Context(), id, r.URL.Query().Get("lang"), publicOnly)
	if err != nil {
		writeFailure(w, r, err, h.obs)
		return
	}
	writeHTML(w, doc)
}

type composeRequest struct {
	Name         string          `json:"name"`
	HTML         string          `json:"htmlCode"`
	CSS          string          `json:"cssCode"`
	JS           string          `json:"jsCode"`
	Translations json.RawMessage `json:"translations"`
	Language     string          `json:"language"`
}

// Compose handles POST /api/studio/preview: composes unsaved parts.
func (h *Preview) Compose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeHTML(w, h.renderer.ComposeParts(compose.Parts{
		Name:         req.Name,
		HTML:         req.HTML,
		CSS:          req.CSS,
		JS:           req.JS,
		Translations: req.Translations,
		Language:     req.Language,
	}))
}
