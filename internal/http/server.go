package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/gateway"
	applog "expensetracker/internal/log"
	appweb "expensetracker/web"
)

// Ports to the transaction gateway. The web layer never talks to either
// store directly.
type (
	AuthService interface {
		Login(ctx context.Context, username, password string) (gateway.AuthResult, error)
		Register(ctx context.Context, username, email, password string) (gateway.AuthResult, error)
		Logout(ctx context.Context)
		Authenticated() bool
	}

	TransactionService interface {
		Transactions(ctx context.Context) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, in gateway.CreateInput) (string, error)
		DeleteTransaction(ctx context.Context, id string) error
		UpdateTransaction(ctx context.Context, id string, in gateway.UpdateInput) (*core.Transaction, error)
	}

	CategoryService interface {
		Categories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, name string) (core.Category, error)
	}
)

const categoriesCacheKey = "categories"

type Server struct {
	http.Server
	templates *template.Template

	auth AuthService
	txs  TransactionService
	cats CategoryService

	rateLimiter *rateLimiter

	// Categories are read-mostly, so partials serve them from cache.
	categoriesCache *cache.LRUCache[[]core.Category]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, auth AuthService, txs TransactionService, cats CategoryService, cacheSize int, cacheTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:            auth,
		txs:             txs,
		cats:            cats,
		rateLimiter:     newRateLimiter(),
		categoriesCache: cache.NewLRUCache[[]core.Category](cacheSize, cacheTTL),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.categoriesCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(template.FuncMap{
		"money":  formatDollars,
		"signed": formatSigned,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.requireAuth(s.handleIndex)))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("/transactions/delete", s.withSecurityHeaders(s.requireAuth(s.handleDeleteTransaction)))
	mux.HandleFunc("/transactions/update", s.withSecurityHeaders(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("/categories", s.withSecurityHeaders(s.requireAuth(s.handleCreateCategory)))

	// UI partials
	mux.HandleFunc("/ui/transactions", s.withSecurityHeaders(s.requireAuth(s.handleTransactionsPartial)))
	mux.HandleFunc("/ui/summary", s.withSecurityHeaders(s.requireAuth(s.handleSummaryPartial)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// requireAuth redirects unauthenticated requests to the login view. The
// same redirect covers the cross-cutting 401 rule: when any remote call
// answers 401 the gateway clears the session, and the next page request
// lands here.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := "req_" + uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
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

type contextKey string

const requestIDKey contextKey = "request_id"

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
