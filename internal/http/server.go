// Package http is the server-rendered web tier: pages and HTMX
// partials over html/template, JSON chart feeds, and the report
// endpoints. All transaction data comes from the store gateway; the
// only state held here is the per-session list cache.
package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"sync"
	"time"

	"finman/internal/archive"
	"finman/internal/cache"
	"finman/internal/core"
	"finman/internal/log"
	"finman/internal/middleware/ratelimit"
	"finman/internal/middleware/security"
	"finman/internal/middleware/trace"
	"finman/internal/services"
	"finman/internal/store"
	appweb "finman/web"
)

// ReportArchive is the slice of the archive the web tier reads.
type ReportArchive interface {
	ListRecent(ctx context.Context, limit int) ([]archive.Report, error)
	Get(ctx context.Context, id string) (*archive.Report, error)
}

// Deps carries the collaborators a Server needs.
type Deps struct {
	Gateway store.Gateway
	Reports *services.ReportService
	Archive ReportArchive
	Logger  *log.Logger

	BackendTimeout time.Duration
	ListCacheSize  int
	ListCacheTTL   time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	gateway   store.Gateway
	reports   *services.ReportService
	archive   ReportArchive

	logger     *log.Logger
	structured *log.StructuredLogger

	backendTimeout time.Duration
	listCache      *cache.ListCache
	cacheManager   *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.BackendTimeout <= 0 {
		deps.BackendTimeout = 15 * time.Second
	}
	if deps.ListCacheSize <= 0 {
		deps.ListCacheSize = 500
	}
	if deps.ListCacheTTL <= 0 {
		deps.ListCacheTTL = 30 * time.Second
	}

	s := &Server{
		gateway:        deps.Gateway,
		reports:        deps.Reports,
		archive:        deps.Archive,
		logger:         deps.Logger,
		structured:     log.NewStructuredLogger(deps.Logger.WithComponent(log.ComponentHTTP)),
		backendTimeout: deps.BackendTimeout,
		listCache:      cache.NewListCache(deps.ListCacheSize, deps.ListCacheTTL),
		cacheManager:   cache.NewManager(),
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:       security.NewDetector(),
	}

	s.cacheManager.Register(s.listCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/",
			security.StaticAssetMiddleware(3600)(http.FileServer(http.FS(sub))))
		mux.Handle("/static/", static)
	} else {
		deps.Logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/signup", s.handleSignup)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/dashboard", s.handleDashboard)

	// UI partials
	mux.HandleFunc("/ui/stats", s.handleStatsCards)
	mux.HandleFunc("/ui/recent", s.handleRecent)
	mux.HandleFunc("/ui/transactions", s.handleTransactionsTable)
	mux.HandleFunc("/ui/reports", s.handleReportsList)

	// Chart feeds
	mux.HandleFunc("/api/charts/categories", s.handleCategoryChart)
	mux.HandleFunc("/api/charts/daily", s.handleDailyChart)

	// Transaction mutations
	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/transactions/", s.handleTransactionByID)

	// Reports
	mux.HandleFunc("/reports", s.handleRequestReport)
	mux.HandleFunc("/reports/download", s.handleDownloadReport)
	mux.HandleFunc("/reports/", s.handleReportArtifact)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

// middleware assembles the chain: trace -> logger context -> security
// headers -> rate limiting on mutating methods.
func (s *Server) middleware(next http.Handler) http.Handler {
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, s.structured)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	limited := s.mutationRateLimit(next)
	watched := s.flagSuspicious(limited)
	h := headers.Middleware(watched)
	h = log.Middleware(s.logger)(h)
	h = tracer.Middleware(h)
	return h
}

// flagSuspicious logs probe-looking requests. They are served normally;
// the log line is the signal.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				"client_ip", s.detector.ExtractClientIP(r),
				"method", r.Method, "url", r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// mutationRateLimit applies the per-IP limiter to non-GET requests only,
// so polling partials never starve form submissions.
func (s *Server) mutationRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// sessionFromRequest collects the browser's cookies for forwarding.
func sessionFromRequest(r *http.Request) store.Session {
	return store.Session(r.Cookies())
}

// sessionKey derives a stable cache key from the auth cookies. Cookie
// values never reach logs or cache internals in the clear.
func sessionKey(sess store.Session) string {
	if len(sess) == 0 {
		return "anonymous"
	}
	pairs := make([]string, 0, len(sess))
	for _, c := range sess {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	sort.Strings(pairs)
	h := sha256.New()
	for _, p := range pairs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fetchTransactions returns the session's transaction list, from cache
// when fresh. Fetches register with the cache's generation token so a
// response that raced a mutation is discarded instead of stored.
func (s *Server) fetchTransactions(ctx context.Context, sess store.Session) ([]core.Transaction, error) {
	key := sessionKey(sess)

	if txs, ok := s.listCache.Get(key); ok {
		s.logger.DebugContext(ctx, "Transaction list cache hit",
			"session", key[:8], "count", len(txs))
		return txs, nil
	}

	token := s.listCache.Begin(key)

	cctx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()
	txs, err := s.gateway.List(cctx, sess)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction list: %w", err)
	}

	if s.listCache.Complete(key, token, txs) {
		s.logger.DebugContext(ctx, "Transaction list cached",
			"session", key[:8], "count", len(txs))
	}
	return txs, nil
}

// invalidateSession drops the session's cached list after a mutation.
func (s *Server) invalidateSession(sess store.Session) {
	s.listCache.Invalidate(sessionKey(sess))
}
