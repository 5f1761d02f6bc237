package main

import (
	"log"

	"library-service/internal/app"
)

// @title Payment Orchestration API
// @version 1.0
// @description Multi-tenant payment orchestration service: invoices, installments, gateway dispatch and webhooks.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key

/*
Application Entry Point

Boot sequence, orchestrated by internal/app/app.go:
 1. Logger (Zap, console in dev / JSON in prod)
 2. Configuration (internal/infrastructure/config)
 3. Repositories (postgres; DB_HOST defaults to localhost)
 4. Gateway config cache
 5. Gateway registry (Xendit, Midtrans adapters from environment credentials)
 6. Use case container
 7. HTTP server (chi router, X-API-Key auth, per-tenant rate limiting)

DATABASE ENVIRONMENT VARIABLES (each has a default in internal/infrastructure/config):
  - DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD

OPTIONAL ENVIRONMENT VARIABLES:
  - XENDIT_API_KEY, XENDIT_WEBHOOK_SECRET, XENDIT_BASE_URL
  - MIDTRANS_SERVER_KEY, MIDTRANS_BASE_URL
  - APP_MODE ("dev" default, or "prod")
  - PORT (default: 8080)

GRACEFUL SHUTDOWN:
SIGINT/SIGTERM stop the server, drain requests, then close repository
connections, per internal/infrastructure/shutdown.
*/

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
