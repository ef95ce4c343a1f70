package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"logistics_network/pkg/metrics"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:            addr,
		RequestTimeout:  60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// NewRouter assembles all routes and middleware.
func NewRouter(cfg ServerConfig, h *Handlers, logger *log.Logger) chi.Router {
	if logger == nil {
		logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(metrics.Middleware(routePattern))

	r.Get("/", h.HandleIndex)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/map", h.HandleMap)
		r.Get("/map/all", h.HandleMapAll)
		r.Get("/network/metrics", h.HandleNetworkMetrics)
		r.Get("/health", h.HandleHealth)
		r.Get("/stats", h.HandleStats)
		r.Delete("/cache", h.HandleClearCache)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// routePattern resolves the chi route pattern after routing, keeping
// metric label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

// NewServer creates the HTTP server.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// WriteTimeout must cover the slowest analysis; the per-request
		// middleware timeout is the effective bound.
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}
}

// ListenAndServe starts the server and blocks until a shutdown signal
// or a listener error.
func ListenAndServe(srv *http.Server, shutdownTimeout time.Duration, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
