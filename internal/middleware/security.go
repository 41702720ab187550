// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders adds security-related HTTP headers to every response.
// Previews are embedded in the editor's iframes, so framing is limited
// through CSP frame-ancestors to this origin plus frameOrigins instead of
// X-Frame-Options.
func SecureHeaders(frameOrigins []string) func(http.Handler) http.Handler {
	ancestors := "frame-ancestors 'self'"
	if len(frameOrigins) > 0 {
		ancestors += " " + strings.Join(frameOrigins, " ")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Content-Security-Policy", ancestors)
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			next.ServeHTTP(w, r)
		})
	}
}
