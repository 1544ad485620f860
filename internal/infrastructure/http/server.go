package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rezkam/central/internal/clock"
	mw "github.com/rezkam/central/internal/infrastructure/http/middleware"
)

// Default configuration values for the HTTP server.
const (
	DefaultHost              = "" // Empty means all interfaces (0.0.0.0)
	DefaultPort              = "8081"
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1MB
	DefaultMaxBodyBytes      = 1 << 20 // 1MB
)

// ServerConfig holds configuration for the HTTP server and router.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64

	// TLS is served when both files are set.
	TLSCertFile string
	TLSKeyFile  string

	// ServiceName names the server spans. Empty means "central".
	ServiceName string

	// Ready backs GET /ready. Nil means always ready.
	Ready func(context.Context) error

	// Per-client rate limiting; RateLimitRPS <= 0 disables it.
	RateLimitRPS     float64
	RateLimitBurst   int
	RateLimitClients int

	// Clock times request logs and rate limits. Nil means the system clock.
	Clock clock.Clock
}

// applyDefaults sets default values for any unset (zero) fields.
func (cfg *ServerConfig) applyDefaults() {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "central"
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
}

// APIServer owns the listener, the probe routes and the middleware chain
// in front of the API handler.
type APIServer struct {
	server   *http.Server
	certFile string
	keyFile  string
}

// NewAPIServer mounts apiHandler under /v1 and wraps the router in otelhttp.
// Zero config values take the package defaults.
func NewAPIServer(apiHandler http.Handler, cfg ServerConfig) (*APIServer, error) {
	cfg.applyDefaults()

	router, err := setupRouter(apiHandler, cfg)
	if err != nil {
		return nil, err
	}
	handler := otelhttp.NewHandler(router, cfg.ServiceName)

	return &APIServer{
		server:   setupHTTPServer(handler, cfg),
		certFile: cfg.TLSCertFile,
		keyFile:  cfg.TLSKeyFile,
	}, nil
}

// setupRouter builds the chi router: probes at the root, the API under /v1.
func setupRouter(apiHandler http.Handler, cfg ServerConfig) (*chi.Mux, error) {
	limit, err := mw.RateLimit(mw.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		MaxClients:        cfg.RateLimitClients,
		Clock:             cfg.Clock,
	})
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(cfg.Clock))
	r.Use(middleware.Recoverer)
	r.Use(mw.MaxBodyBytes(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusOK, "ok")
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				slog.WarnContext(r.Context(), "readiness check failed", "error", err)
				writeStatus(w, r, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		writeStatus(w, r, http.StatusOK, "ready")
	})

	r.With(limit).Mount("/v1", apiHandler)

	return r, nil
}

func writeStatus(w http.ResponseWriter, r *http.Request, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := fmt.Fprintf(w, `{"status":%q}`, status); err != nil {
		slog.ErrorContext(r.Context(), "failed to write probe response", "error", err)
	}
}

// setupHTTPServer creates the net/http.Server with the given handler and config.
func setupHTTPServer(handler http.Handler, cfg ServerConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// Start starts the HTTP server. It serves TLS when a certificate and key
// were configured.
func (s *APIServer) Start() error {
	if s.certFile != "" && s.keyFile != "" {
		slog.Info("starting HTTPS server", "addr", s.server.Addr)
		return s.server.ListenAndServeTLS(s.certFile, s.keyFile)
	}
	slog.Info("starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
// The provided context controls the timeout for outstanding requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the instrumented root handler.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
