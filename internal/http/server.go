package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	appweb "expensetracker/web"
)

// Options tune a Server. The zero value logs nowhere and applies no rate
// limit.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For header names the client.
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	store     services.ExpenseStore
	logger    *log.Logger
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, store services.ExpenseStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		Server: http.Server{Addr: addr},
		store:  store,
		logger: logger.WithComponent(log.ComponentHTTP),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	ips := security.NewClientIPResolver()
	for _, cidr := range opts.TrustedProxies {
		if err := ips.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(logger))
	r.Use(trace.Middleware(ips.ClientIP))
	r.Use(log.RequestIDMiddleware(trace.GetRequestID))
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	// UI partials fire on every keystroke and stay outside the limiter so
	// they never spend the budget of real submits.
	r.Post("/ui/amount", s.handleAmountGuard)

	r.Group(func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
			r.Use(s.limiter.Middleware(ips.ClientIP))
		}

		r.Get("/", s.handleIndex)
		r.Post("/expenses", s.handleCreateExpense)
		r.Get("/expenses/{id}/delete", s.handleConfirmDelete)
		r.Post("/expenses/{id}/delete", s.handleDeleteExpense)
		r.Post("/filter/reset", s.handleResetFilter)
	})

	s.Handler = r
	return s
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the stored list can be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		ServiceUnavailableError("not ready").Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// renderTemplate executes name into a buffer so a failing template never
// leaves a half-written page behind.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		InternalServerError("Error rendering page").Write(w)
		return
	}
	resp.BodyHTML(buf.Bytes()).Write(w)
}
