package handlers

import (
	"context"
	"net/http"

	"giftora/internal/store"
)

const defaultHistoryLimit = 50

// InvalidationHistory lists recent listing-cache invalidations.
type InvalidationHistory interface {
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// History serves the cache invalidation log to admins.
type History struct {
	log InvalidationHistory
}

// NewHistory creates the invalidation history handler.
func NewHistory(log InvalidationHistory) *History {
	return &History{log: log}
}

// CacheLog handles GET /api/admin/cache-log?limit=N.
func (h *History) CacheLog(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r.URL.Query(), defaultHistoryLimit)
	if !ok {
		return
	}
	entries, err := h.log.RecentEntries(r.Context(), limit)
	if err != nil {
		writeFailure(w, r, err, nil)
		return
	}
	if entries == nil {
		entries = []store.CacheLogEntry{}
	}
	writeData(w, http.StatusOK, entries)
}
