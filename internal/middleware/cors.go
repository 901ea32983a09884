package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration options.
// The API is read-only from a browser's point of view, so only GET is allowed.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to read statistics.
	// Entries like "*.example.com" match any subdomain; "*" matches everything.
	AllowedOrigins []string

	// MaxAge is the value for Access-Control-Max-Age in seconds.
	MaxAge int
}

const (
	corsAllowedMethods = "GET, OPTIONS"
	corsAllowedHeaders = "Accept, Content-Type, X-Request-ID"
	corsExposedHeaders = "X-Request-ID"
)

// ParseOrigins splits a comma-separated origin list.
func ParseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// CORS returns a middleware that lets allowed browser origins read the
// statistics endpoints. Preflight requests from other origins get 403.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	exact := make(map[string]bool, len(cfg.AllowedOrigins))
	wildcard := false
	var suffixes []string
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(origin)
		switch {
		case origin == "*":
			wildcard = true
		case strings.HasPrefix(origin, "*."):
			suffixes = append(suffixes, origin[1:])
		default:
			exact[origin] = true
		}
	}

	allowed := func(origin string) bool {
		origin = strings.ToLower(origin)
		if wildcard || exact[origin] {
			return true
		}
		for _, suffix := range suffixes {
			// "*.example.com" matches "https://a.example.com" but not "https://notexample.com".
			if strings.HasSuffix(origin, suffix) && len(origin) > len(suffix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !allowed(origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Expose-Headers", corsExposedHeaders)

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				if maxAge != "" {
					w.Header().Set("Access-Control-Max-Age", maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
