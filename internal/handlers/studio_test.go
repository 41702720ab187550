package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"giftora/internal/editable"
	"giftora/internal/models"
	"giftora/internal/studio"
)

func TestTransformEndpoint(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/studio/transform", `{"source":"<h1>Hi</h1>","scope":"t1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp struct {
		Source   string             `json:"source"`
		Elements []editable.Element `json:"elements"`
		Warning  string             `json:"warning"`
	}
	decodeData(t, w, &resp)
	if !strings.Contains(resp.Source, `data-elyx-id="text-0"`) || len(resp.Elements) != 1 || resp.Warning != "" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestTransformEndpointWarning(t *testing.T) {
	env := newTestEnv()

	w := env.do(t, http.MethodPost, "/api/studio/transform", `{"source":"<div><span>broken</div>"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp struct {
		Source  string `json:"source"`
		Warning string `json:"warning"`
	}
	decodeData(t, w, &resp)
	if resp.Source != "<div><span>broken</div>" || resp.Warning == "" {
		t.Errorf("malformed source should come back unchanged with a warning: %+v", resp)
	}

	if w := env.do(t, http.MethodPost, "/api/studio/transform", `{"source":"x","language":"php"}`); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown language: got %d", w.Code)
	}
}

func TestCreateHTMLEndpoint(t *testing.T) {
	env := newTestEnv()
	body := `{"name":"Card","category":"birthday","htmlCode":"<p>x</p>","cssCode":"","jsCode":"","price":4.5}`

	w := env.do(t, http.MethodPost, "/api/studio/html-templates", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body)
	}
	if env.studio.lastHTML.Name != "Card" || env.studio.lastHTML.Price != 4.5 {
		t.Errorf("input not decoded: %+v", env.studio.lastHTML)
	}
	var saved struct {
		Template models.HTMLTemplate `json:"template"`
	}
	decodeData(t, w, &saved)
	if saved.Template.Status != models.StatusDraft {
		t.Errorf("status: %q", saved.Template.Status)
	}
}

func TestStudioErrorMapping(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &studio.ValidationError{Message: "Template name is required."}, http.StatusUnprocessableEntity},
		{"not found", studio.ErrNotFound, http.StatusNotFound},
		{"invalid transition", fmt.Errorf("%w: cannot approve a draft template", models.ErrInvalidTransition), http.StatusConflict},
		{"storage", errBoom, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.studio.err = tt.err
			w := env.do(t, http.MethodPost, "/api/admin/html-templates/"+id.String()+"/approve", "")
			if w.Code != tt.want {
				t.Errorf("got %d, want %d", w.Code, tt.want)
			}
			if decodeError(t, w) == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}

func TestWorkflowEndpoints(t *testing.T) {
	env := newTestEnv()
	id := uuid.New()

	tests := []struct {
		path string
		want models.TemplateStatus
	}{
		{"/api/studio/html-templates/" + id.String() + "/publish", models.StatusPending},
		{"/api/admin/html-templates/" + id.String() + "/approve", models.StatusApproved},
		{"/api/admin/html-templates/" + id.String() + "/reject", models.StatusRejected},
	}
	for _, tt := range tests {
		w := env.do(t, http.MethodPost, tt.path, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: status %d", tt.path, w.Code)
			continue
		}
		var got models.HTMLTemplate
		decodeData(t, w, &got)
		if got.Status != tt.want || got.IsActive != tt.want.Visible() || env.studio.lastID != id {
			t.Errorf("%s: got %q active=%v", tt.path, got.Status, got.IsActive)
		}
	}
}

func TestUpdateAndReactEndpoints(t *testing.T) {
	env := newTestEnv()
	id := uuid.New()

	w := env.do(t, http.MethodPut, "/api/studio/html-templates/"+id.String(), `{"name":"Edited","htmlCode":"<p>y</p>"}`)
	if w.Code != http.StatusOK || env.studio.lastID != id || env.studio.lastHTML.Name != "Edited" {
		t.Errorf("update: status %d, id %s, input %+v", w.Code, env.studio.lastID, env.studio.lastHTML)
	}

	w = env.do(t, http.MethodPost, "/api/studio/react-templates", `{"name":"Comp","componentCode":"export default () => <p>x</p>"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("react upload: status %d", w.Code)
	}
}

func TestQueueEndpoint(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/api/admin/html-templates", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if w.Body.String() != "{\"data\":[]}\n" {
		t.Errorf("empty queue should be an array: %q", w.Body.String())
	}
}
