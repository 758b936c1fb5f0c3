// Package cors answers cross-origin requests from the configured front-end
// origins.
package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         time.Duration
}

// DefaultConfig allows the CRUD verbs and JSON bodies from origins.
func DefaultConfig(origins []string) Config {
	return Config{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Location", "X-Request-ID", "Retry-After"},
		MaxAge:         12 * time.Hour,
	}
}

type Middleware struct {
	config    Config
	anyOrigin bool
	origins   map[string]struct{}
}

func New(config Config) *Middleware {
	m := &Middleware{config: config, origins: make(map[string]struct{})}
	for _, o := range config.AllowedOrigins {
		if o == "*" {
			m.anyOrigin = true
			continue
		}
		m.origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return m
}

// Allowed reports whether origin may call the API.
func (m *Middleware) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if m.anyOrigin {
		return true
	}
	_, ok := m.origins[origin]
	return ok
}

// Handler sets CORS headers for allowed origins and answers preflight
// requests with 204 without calling next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		h := w.Header()
		h.Add("Vary", "Origin")

		allowed := m.Allowed(origin)
		if allowed {
			if m.anyOrigin {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if len(m.config.ExposedHeaders) > 0 {
				h.Set("Access-Control-Expose-Headers", strings.Join(m.config.ExposedHeaders, ", "))
			}
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				h.Set("Access-Control-Allow-Methods", strings.Join(m.config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(m.config.AllowedHeaders, ", "))
				if m.config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(int(m.config.MaxAge.Seconds())))
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
