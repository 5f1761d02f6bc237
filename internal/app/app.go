// Package app provides application lifecycle management following clean architecture
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"library-service/internal/container"
	domainapp "library-service/internal/domain/app"
	"library-service/internal/infrastructure/config"
	"library-service/internal/infrastructure/log"
	"library-service/internal/infrastructure/shutdown"
	"library-service/internal/payments/gateway"
	pkgmiddleware "library-service/internal/pkg/middleware"
)

// App represents the application with all its dependencies
type App struct {
	logger       *zap.Logger
	config       *config.Config
	repositories *domainapp.Repositories
	caches       *domainapp.Caches
	usecases     *container.Container
	httpServer   *Server
}

// Validator wraps go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// Validate validates a struct
func (v *Validator) Validate(i interface{}) error {
	if v.validate == nil {
		v.validate = validator.New()
	}
	return v.validate.Struct(i)
}

// New creates a new application instance.
//
// Bootstrap order:
//  1. Logger
//  2. Config
//  3. Repositories (postgres or memory)
//  4. Caches (gateway config lookups)
//  5. Gateway registry (Xendit, Midtrans adapters)
//  6. Use case container
//  7. HTTP server
func New() (*App, error) {
	app := &App{}

	logger, err := log.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.logger = logger

	cfg := config.MustLoad("")
	app.config = cfg
	app.logger.Info("configuration loaded", zap.String("environment", cfg.App.Environment))

	repos, err := newRepositories(cfg)
	if err != nil {
		app.logger.Error("failed to initialize repositories", zap.Error(err))
		return nil, err
	}
	app.repositories = repos
	app.logger.Info("repositories initialized")

	caches, err := domainapp.NewCaches(
		domainapp.Dependencies{Repositories: repos},
		domainapp.WithMemoryCache(),
	)
	if err != nil {
		app.logger.Error("failed to initialize caches", zap.Error(err))
		return nil, err
	}
	app.caches = caches
	app.logger.Info("caches initialized")

	go domainapp.WarmCachesAsync(context.Background(), caches, domainapp.DefaultWarmingConfig(app.logger))

	registry, err := newGatewayRegistry()
	if err != nil {
		app.logger.Warn("gateway registry incomplete, some gateways may be unavailable", zap.Error(err))
	}
	app.logger.Info("gateway registry initialized")

	v := &Validator{}

	usecaseRepos := &container.Repositories{
		Invoice:       repos.Invoice,
		Installment:   repos.Installment,
		Transaction:   repos.Transaction,
		GatewayConfig: caches.GatewayConfig,
		APIKey:        repos.APIKey,
		WebhookRetry:  repos.WebhookRetry,
		Report:        repos.Report,
	}
	usecases := container.NewContainer(usecaseRepos, registry, v)
	app.usecases = usecases
	app.logger.Info("usecases initialized")

	authMiddleware := pkgmiddleware.NewAuthMiddleware(repos.APIKey)

	httpSrv, err := NewHTTPServer(cfg, usecases, authMiddleware, app.logger)
	if err != nil {
		app.logger.Error("failed to initialize server", zap.Error(err))
		return nil, err
	}
	app.httpServer = httpSrv
	app.logger.Info("server initialized")

	return app, nil
}

// newRepositories selects the postgres store when a database host is
// configured and in-memory repositories otherwise. The config loader
// defaults the host to "localhost" and rejects an empty one, so a Config
// from config.MustLoad always selects postgres.
func newRepositories(cfg *config.Config) (*domainapp.Repositories, error) {
	if cfg.Database.Host == "" {
		return domainapp.NewRepositories(domainapp.WithMemoryStore())
	}
	return domainapp.NewRepositories(domainapp.WithPostgresStore(cfg.Database.GetDSN()))
}

// newGatewayRegistry registers the Xendit and Midtrans adapters from
// environment-provided credentials. Outbound gateway credentials are kept
// separate from the DB-backed GatewayConfig rows, which only carry the
// inbound webhook secret and fee/currency metadata.
func newGatewayRegistry() (*gateway.Registry, error) {
	registry := gateway.NewRegistry()

	if apiKey := os.Getenv("XENDIT_API_KEY"); apiKey != "" {
		registry.Register("xendit", gateway.NewXenditClient(
			apiKey,
			os.Getenv("XENDIT_WEBHOOK_SECRET"),
			envOrDefault("XENDIT_BASE_URL", "https://api.xendit.co"),
		))
	}

	if serverKey := os.Getenv("MIDTRANS_SERVER_KEY"); serverKey != "" {
		registry.Register("midtrans", gateway.NewMidtransClient(
			serverKey,
			envOrDefault("MIDTRANS_BASE_URL", "https://api.sandbox.midtrans.com"),
		))
	}

	return registry, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Run starts the application and handles graceful shutdown with phased execution.
func (a *App) Run() error {
	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	a.logger.Info("application started",
		zap.Int("port", a.config.Server.Port),
		zap.String("environment", a.config.App.Environment),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownMgr := shutdown.NewManager(a.logger)
	shutdownMgr.RegisterDefaultHooks(a.httpServer, a.repositories)

	if a.caches != nil {
		shutdownMgr.RegisterHook(shutdown.PhaseCleanup, "close_caches", func(ctx context.Context) error {
			a.logger.Info("closing cache connections")
			a.caches.Close()
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := shutdownMgr.Shutdown(ctx); err != nil {
		a.logger.Error("graceful shutdown completed with errors", zap.Error(err))
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}
