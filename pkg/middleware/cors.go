package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls the cross-origin policy applied by CORS.
type CORSConfig struct {
	// AllowedOrigins lists exact origins that may call the API. A "*" entry
	// opens the API to every origin regardless of Environment.
	AllowedOrigins []string

	// AllowedMethods and AllowedHeaders fall back to sensible API defaults
	// when left empty.
	AllowedMethods []string
	AllowedHeaders []string

	// ExposedHeaders lists response headers scripts may read.
	ExposedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds. Zero means 3600.
	MaxAge int

	// AllowCredentials permits cookies and auth headers on cross-origin calls.
	AllowCredentials bool

	// Environment widens the policy: "development" implies wildcard origins.
	Environment string
}

// DefaultCORSConfig returns the permissive policy used in development.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultMethods(),
		AllowedHeaders: defaultHeaders(),
		ExposedHeaders: []string{"X-Correlation-ID", "X-User-ID"},
		MaxAge:         3600,
		Environment:    "development",
	}
}

func defaultMethods() []string {
	return []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
}

func defaultHeaders() []string {
	return []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID", "X-User-ID"}
}

// CORS applies the given cross-origin policy and short-circuits preflight
// requests with 204.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = defaultMethods()
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = defaultHeaders()
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}

	wildcard := cfg.Environment == "development"
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		origins[origin] = struct{}{}
	}

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := w.Header()

			switch origin := r.Header.Get("Origin"); {
			case wildcard:
				hdr.Set("Access-Control-Allow-Origin", "*")
			case origin != "":
				if _, ok := origins[origin]; ok {
					hdr.Set("Access-Control-Allow-Origin", origin)
					hdr.Set("Vary", "Origin")
				}
			}

			hdr.Set("Access-Control-Allow-Methods", methods)
			hdr.Set("Access-Control-Allow-Headers", headers)
			if exposed != "" {
				hdr.Set("Access-Control-Expose-Headers", exposed)
			}
			hdr.Set("Access-Control-Max-Age", maxAge)
			if cfg.AllowCredentials {
				hdr.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
