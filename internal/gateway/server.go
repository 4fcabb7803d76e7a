// internal/gateway/server.go
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nlquery-gateway/internal/common/config"
	"nlquery-gateway/internal/common/logger"
)

// Server is the HTTP front of the query gateway. It owns routing and
// lifecycle; request semantics live in Handler.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
	shutdownTO time.Duration
}

func NewServer(cfg config.ServerConfig, handler *Handler, log logger.Logger) *Server {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/query", handler.Query)
	api.HandleFunc("POST /api/v1/conversations", handler.CreateConversation)

	var apiHandler http.Handler = api
	if cfg.AuthToken != "" {
		apiHandler = handler.requireBearer(cfg.AuthToken, apiHandler)
	}

	// Health and metrics stay reachable without a token.
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", apiHandler)
	mux.HandleFunc("GET /healthz", handler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	root := handler.instrument(mux)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      root,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
		},
		logger:     log.With(map[string]interface{}{"component": "gateway"}),
		shutdownTO: time.Duration(cfg.ShutdownTimeout) * time.Millisecond,
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("gateway listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway listener failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownTO > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTO)
		defer cancel()
	}
	s.logger.Info("gateway shutting down", nil)
	return s.httpServer.Shutdown(ctx)
}
