package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/time/rate"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigin     string
	// RateLimit is the sustained number of requests per second accepted
	// across all clients. Zero disables rate limiting.
	RateLimit float64
	RateBurst int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  runtime.NumCPU() * 2,
		CORSOrigin:     "",
	}
}

// middleware carries the state shared by all wrapped handlers.
type middleware struct {
	cfg     ServerConfig
	sem     chan struct{}
	limiter *rate.Limiter // nil = unlimited
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates an HTTP server with all routes and middleware.
// metrics may be nil.
func NewServer(cfg ServerConfig, handlers *Handlers, metrics *Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	mw := &middleware{
		cfg:     cfg,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		metrics: metrics,
		logger:  logger,
	}
	if cfg.RateLimit > 0 {
		mw.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	// Routes.
	mux.HandleFunc("POST /api/v1/route", mw.wrap("/api/v1/route", handlers.HandleRoute))
	mux.HandleFunc("GET /api/v1/nearest", mw.wrap("/api/v1/nearest", handlers.HandleNearest))
	mux.HandleFunc("GET /api/v1/health", mw.wrap("/api/v1/health", handlers.HandleHealth))
	mux.HandleFunc("GET /api/v1/stats", mw.wrap("/api/v1/stats", handlers.HandleStats))
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server, logger *slog.Logger) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// wrap wraps a handler with logging, recovery, security headers, rate and
// concurrency limiting, a request timeout and metrics.
func (mw *middleware) wrap(path string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			d := time.Since(start)
			mw.metrics.observeRequest(path, rec.status, d)
			mw.logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", d.Round(time.Microsecond))
		}()

		// Security headers.
		h := rec.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Cache-Control", "no-store")

		// CORS.
		if mw.cfg.CORSOrigin != "" {
			h.Set("Access-Control-Allow-Origin", mw.cfg.CORSOrigin)
		}

		// Rate limiter.
		if mw.limiter != nil && !mw.limiter.Allow() {
			mw.metrics.observeRejected()
			h.Set("Retry-After", "1")
			writeError(rec, http.StatusTooManyRequests, "rate_limited", "")
			return
		}

		// Concurrency limiter.
		select {
		case mw.sem <- struct{}{}:
			defer func() { <-mw.sem }()
		default:
			mw.metrics.observeRejected()
			h.Set("Retry-After", "1")
			writeError(rec, http.StatusServiceUnavailable, "service_unavailable", "")
			return
		}

		// Recovery.
		defer func() {
			if p := recover(); p != nil {
				mw.logger.Error("panic in handler", "path", r.URL.Path, "panic", p)
				writeError(rec, http.StatusInternalServerError, "internal_error", "")
			}
		}()

		// Request timeout.
		if mw.cfg.RequestTimeout > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), mw.cfg.RequestTimeout)
			defer cancel()
			r = r.WithContext(ctx)
		}

		handler(rec, r)
	}
}
