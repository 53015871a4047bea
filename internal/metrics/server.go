package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves /metrics and /health on a local address.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds the metrics server for reg bound to addr.
func NewServer(addr string, reg *Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           Router(reg),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Router returns the chi router behind the server.
func Router(reg *Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)

	metricsHandler := promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{})
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		metricsHandler.ServeHTTP(w, req)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		body, _ := sonic.Marshal(map[string]string{"status": "ok"})
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(body)
	})
	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.httpServer.Addr = ln.Addr().String()
	s.logger.Info("metrics server listening", zap.String("addr", s.httpServer.Addr))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Shutdown stops the server, waiting briefly for in-flight scrapes.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
