package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS allows the editor and storefront frontends to call the API from
// their own origins. An empty list allows any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.ExposedHeaders([]string{"X-Cache", "Retry-After"}),
		handlers.MaxAge(600),
	)
}
