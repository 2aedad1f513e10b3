package middleware

import (
	"net/http"
	"strings"
)

// CacheControl marks patient-facing and admin responses as non-storable by
// browsers and proxies. Diagnostics may be reused privately for a minute.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/api/admin/diagnostics":
			w.Header().Set("Cache-Control", "private, max-age=60")
		case strings.HasPrefix(path, "/api/"):
			w.Header().Set("Cache-Control", "no-store")
		case path == "/health":
			w.Header().Set("Cache-Control", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}
