// Package http serves the web UI, the JSON API and the chart images.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

const requestTimeout = 15 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr               string
	CookieSecure       bool
	RateLimitPerMinute int
	// CORSOrigins may call the JSON API with credentials. Empty means
	// localhost only.
	CORSOrigins []string
}

type Deps struct {
	Transactions *services.TransactionService
	Auth         *auth.Service
	// Store is checked by /readyz when it implements Pinger.
	Store  any
	Logger *log.Logger
}

type Server struct {
	http.Server
	templates map[string]*template.Template
	tx        *services.TransactionService
	auth      *auth.Service
	store     any
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	cookieSecure bool
	started      time.Time
	recorded     atomic.Int64
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires the routes.
func NewServer(opts Options, deps Deps) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server:       http.Server{Addr: opts.Addr, ReadHeaderTimeout: 10 * time.Second},
		templates:    templates,
		tx:           deps.Transactions,
		auth:         deps.Auth,
		store:        deps.Store,
		logger:       deps.Logger.WithComponent(log.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     security.NewDetector(),
		cookieSecure: opts.CookieSecure,
		started:      time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	s.Handler = s.routes(opts)
	return s, nil
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(log.Middleware(s.logger))
	r.Use(s.tracer.Handler)
	r.Use(log.RequestIDMiddleware(trace.RequestID))
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.limitPOST)
		r.Use(s.loadSession)

		r.Get("/", s.handleLanding)
		r.Get("/signup", s.handleSignupForm)
		r.Post("/signup", s.handleSignup)
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Get("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requirePage)
			r.Use(security.NoStore)
			r.Get("/index", s.handleIndex)
			r.Get("/add", s.handleAddForm)
			r.Post("/add", s.handleAdd)
			r.Get("/summary", s.handleCategories)
			r.Get("/categories", s.handleCategories)
			r.Get("/monthly", s.handleMonthly)
			r.Post("/clear_transactions", s.handleClear)
			r.Get("/charts/categories.png", s.handleChart(chartCategories))
			r.Get("/charts/monthly.png", s.handleChart(chartMonthly))
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(apiCORS(opts.CORSOrigins))
			r.Use(s.requireAPI)
			r.Use(security.NoStore)
			r.Get("/summary", s.handleAPISummary)
			r.Get("/transactions", s.handleAPITransactions)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found.")
	})
	return r
}

func apiCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{trace.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// limitPOST rate limits state-changing requests per client address.
func (s *Server) limitPOST(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	s.renderError(w, r, http.StatusTooManyRequests, "Too many requests. Please try again in a minute.")
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := page[len("templates/"):]
		if name == layoutTemplate {
			continue
		}
		t, err := template.New(layoutTemplate).Funcs(templateFuncs).
			ParseFS(appweb.TemplatesFS, "templates/"+layoutTemplate, page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}
