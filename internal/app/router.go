package app

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"library-service/internal/container"
	"library-service/internal/infrastructure/config"
	gatewayhttp "library-service/internal/payments/handler/gateway"
	invoicehttp "library-service/internal/payments/handler/invoice"
	reporthttp "library-service/internal/payments/handler/report"
	webhookhttp "library-service/internal/payments/handler/webhook"
	pkgmiddleware "library-service/internal/pkg/middleware"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Config   *config.Config
	Usecases *container.Container
	Auth     *pkgmiddleware.AuthMiddleware
	Logger   *zap.Logger
}

// NewRouter creates the HTTP router for the payment orchestration API.
// Webhook ingress is mounted outside the authenticated group: gateway
// callbacks carry a gateway-specific signature, never an X-API-Key (§4.8).
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(pkgmiddleware.RequestLogger(cfg.Logger))
	r.Use(pkgmiddleware.ErrorHandler(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Config.Server.ReadTimeout))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(pkgmiddleware.Metrics())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	if config.IsFeatureEnabled("swagger") {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	rateLimiter := pkgmiddleware.NewRateLimiter(cfg.Config.Server.RateLimit)

	r.Route("/api/v1", func(r chi.Router) {
		// Webhook ingress is unauthenticated by design: the gateway never
		// holds a tenant API key. Signature verification happens per
		// gateway inside the dispatcher.
		r.Mount("/webhooks", webhookhttp.NewHandler(cfg.Usecases).Routes())

		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.Authenticate)
			if cfg.Config.Server.EnableRateLimit {
				r.Use(rateLimiter.Middleware)
			}

			r.Mount("/invoices", invoicehttp.NewHandler(cfg.Usecases).Routes())
			r.Mount("/reports", reporthttp.NewHandler(cfg.Usecases).Routes())
			r.Mount("/gateways", gatewayhttp.NewHandler(cfg.Usecases).Routes())
		})
	})

	return r
}
