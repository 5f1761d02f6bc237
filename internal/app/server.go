package app

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"library-service/internal/container"
	"library-service/internal/infrastructure/config"
	"library-service/internal/pkg/middleware"
)

// Server wraps http.Server, adding only what Run/Shutdown need.
type Server struct {
	*http.Server
}

// NewHTTPServer builds the chi router and binds it to an http.Server sized
// from ServerConfig.
func NewHTTPServer(cfg *config.Config, usecases *container.Container, auth *middleware.AuthMiddleware, logger *zap.Logger) (*Server, error) {
	router := NewRouter(RouterConfig{
		Config:   cfg,
		Usecases: usecases,
		Auth:     auth,
		Logger:   logger,
	})

	return &Server{&http.Server{
		Addr:           cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}}, nil
}

// Start runs ListenAndServe on a background goroutine so App.Run can wait
// on the shutdown signal instead.
func (s *Server) Start() error {
	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
	return nil
}

// Shutdown satisfies shutdown.ShutdownableServer.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
