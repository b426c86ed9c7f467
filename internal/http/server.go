package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetboard/internal/app"
	"budgetboard/internal/cache"
	applog "budgetboard/internal/log"
	"budgetboard/internal/middleware/ratelimit"
	appweb "budgetboard/web"
)

const fragmentCacheSize = 64

// Server serves the dashboard for one App.
type Server struct {
	http.Server
	app       *app.App
	logger    *applog.Logger
	templates *template.Template
	limiter   *ratelimit.Limiter
	started   time.Time

	fragments *cache.LRUCache[[]byte]
	caches    *cache.Manager
	security  securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, a *app.App, logger *applog.Logger) (*Server, error) {
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		app:       a,
		logger:    logger,
		templates: t,
		started:   time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: a.Config.RateLimitPerMinute,
		}),
		fragments: cache.NewLRUCache[[]byte](fragmentCacheSize, a.Config.CacheTTL),
		caches:    cache.NewManager(logger.WithComponent(applog.ComponentCache)),
	}
	s.caches.Register(s.fragments)
	s.caches.StartCleanup(a.Config.CacheTTL)

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		static.ServeHTTP(w, r)
	}))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /ui/chart", s.handleChart)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /expenses/{id}/delete", s.handleDeleteExpense)
	mux.HandleFunc("POST /budget", s.handleSetBudget)
	mux.HandleFunc("POST /theme", s.handleToggleTheme)
	mux.HandleFunc("GET /export.xlsx", s.handleExportXLSX)

	s.Handler = applog.Middleware(logger)(s.withSecurityHeaders(mux))
	return s, nil
}

// Shutdown stops the background sweepers and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds request logging, POST rate limiting and security headers.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(extractClientIP, s.rateLimited)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := uuid.NewString()

		ctx := applog.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		logger := applog.FromContext(ctx)

		logger.DebugContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, &s.security) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, clientIP)
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline' https://cdnjs.cloudflare.com; font-src 'self' https://cdnjs.cloudflare.com; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method == http.MethodPost {
			limited.ServeHTTP(rw, r)
		} else {
			next.ServeHTTP(rw, r)
		}

		logger.InfoContext(ctx, "Request completed",
			applog.NewFields().
				WithHTTP(r.Method, r.URL.Path, rw.statusCode, time.Since(start).Milliseconds()).
				ToSlice()...)
	})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.security.rateLimitHits.Add(1)
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, extractClientIP(r),
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError("Rate limit exceeded. Please try again later.").
		TriggerNotification(NotificationError, "Too many requests. Please wait a moment.", s.noticeMs()).
		Write(w)
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (s *Server) noticeMs() int64 {
	return s.app.Config.NoticeDelay.Milliseconds()
}
