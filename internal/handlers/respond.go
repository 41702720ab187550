// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"giftora/internal/catalog"
	"giftora/internal/engine"
	"giftora/internal/models"
	"giftora/internal/studio"
)

// maxBodyBytes bounds JSON request bodies. Template sources are large but
// validated to well under this.
const maxBodyBytes = 4 << 20

// FetchObserver counts store read failures. *metrics.Metrics satisfies it.
type FetchObserver interface {
	FetchError(source string)
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: msg})
}

func writeHTML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeFailure maps service errors to HTTP responses. Storage failures
// are logged and reported without detail.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, obs FetchObserver) {
	var (
		verr *studio.ValidationError
		ferr *catalog.FetchError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, studio.ErrNotFound),
		errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "template not found")
	case errors.Is(err, models.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &ferr):
		if obs != nil {
			obs.FetchError(ferr.Source)
		}
		slog.Error("template fetch failed", "path", r.URL.Path, "source", ferr.Source, "error", ferr.Err)
		writeError(w, http.StatusInternalServerError, "failed to load templates")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
