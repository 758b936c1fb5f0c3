package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/middleware/cors"
	"budgetbook/internal/middleware/ratelimit"
	"budgetbook/internal/middleware/security"
	"budgetbook/internal/middleware/trace"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the middleware stack.
type Options struct {
	CORSOrigins []string
	RateLimit   ratelimit.Config
	Logger      *log.Logger
}

type Server struct {
	http.Server
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, budgets CRUDService[core.Budget], expenses CRUDService[core.Expense], db Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	mux := http.NewServeMux()
	(&resource[core.Budget]{
		entity:   log.ComponentBudget,
		title:    "Budget",
		basePath: "/api/budgets",
		service:  budgets,
		idOf:     func(b core.Budget) int64 { return b.ID },
	}).register(mux)
	(&resource[core.Expense]{
		entity:   log.ComponentExpense,
		title:    "Expense",
		basePath: "/api/expenses",
		service:  expenses,
		idOf:     func(e core.Expense) int64 { return e.ID },
	}).register(mux)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", readyHandler(db))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not found").Write(w)
	})

	ips := security.NewClientIPExtractor()
	limiter := ratelimit.NewLimiter(opts.RateLimit)

	var handler http.Handler = mux
	handler = limiter.Middleware(ips.ClientIP, ratelimit.MutatingMethods, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, ips.ClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})(handler)
	handler = cors.New(cors.DefaultConfig(opts.CORSOrigins)).Handler(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(logger, ips.ClientIP).Handler(handler)
	handler = log.Middleware(logger)(handler)

	return &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		limiter: limiter,
	}
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func readyHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "database unavailable").Write(w)
			return
		}
		NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
	}
}
