package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"swarm_robustness/pkg/metrics"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxConcurrent  int
	CORSOrigin     string
}

// DefaultConfig returns sensible defaults. Snapshot evaluation is CPU bound,
// so the write and request timeouts are generous.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:           addr,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   60 * time.Second,
		RequestTimeout: 55 * time.Second,
		MaxConcurrent:  runtime.NumCPU() * 2,
		CORSOrigin:     "",
	}
}

// SetWriteTimeout sets the write timeout and derives the request timeout
// from it, keeping up to one second to write the response.
func (c *ServerConfig) SetWriteTimeout(d time.Duration) {
	c.WriteTimeout = d
	c.RequestTimeout = requestTimeoutFor(d)
}

// requestTimeoutFor returns a positive request deadline below write, or 0
// if write is not positive.
func requestTimeoutFor(write time.Duration) time.Duration {
	if write <= 0 {
		return 0
	}
	return write - min(time.Second, write/10)
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers, reg *metrics.Registry, logger *zap.Logger) *http.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	// Concurrency limiter.
	sem := make(chan struct{}, cfg.MaxConcurrent)
	mw := middleware{cfg: cfg, sem: sem, reg: reg, logger: logger}

	// Routes.
	mux.HandleFunc("GET /api/v1/snapshots/{t}/metrics", mw.wrap("/api/v1/snapshots/{t}/metrics", handlers.HandleSnapshotMetrics))
	mux.HandleFunc("POST /api/v1/metrics/batch", mw.wrap("/api/v1/metrics/batch", handlers.HandleBatch))
	mux.HandleFunc("GET /api/v1/health", mw.wrap("/api/v1/health", handlers.HandleHealth))
	mux.HandleFunc("GET /api/v1/stats", mw.wrap("/api/v1/stats", handlers.HandleStats))
	if reg != nil {
		mux.Handle("GET /metrics", reg.Handler())
	}

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal or ctx
// cancellation.
func ListenAndServe(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type middleware struct {
	cfg    ServerConfig
	sem    chan struct{}
	reg    *metrics.Registry
	logger *zap.Logger
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// wrap adds security headers, CORS, concurrency limiting, recovery, a
// request timeout and access logging to handler.
func (m middleware) wrap(route string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Security headers.
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		// CORS.
		if m.cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", m.cfg.CORSOrigin)
		}

		// Concurrency limiter.
		select {
		case m.sem <- struct{}{}:
			defer func() { <-m.sem }()
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			// Recovery.
			if p := recover(); p != nil {
				m.logger.Error("panic", zap.Any("panic", p), zap.String("path", r.URL.Path))
				http.Error(rec, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}

			elapsed := time.Since(start)
			if m.reg != nil {
				m.reg.RecordHTTPRequest(r.Method, route, strconv.Itoa(rec.status), elapsed)
			}
			m.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", elapsed.Round(time.Microsecond)),
			)
		}()

		// Request timeout.
		timeout := m.cfg.RequestTimeout
		if timeout <= 0 {
			timeout = requestTimeoutFor(m.cfg.WriteTimeout)
		}
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		handler(rec, r.WithContext(ctx))
	}
}
