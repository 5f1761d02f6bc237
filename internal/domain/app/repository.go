package app

import (
	infrastore "library-service/internal/infrastructure/store"
	paymentdomain "library-service/internal/payments/domain"
	"library-service/internal/payments/repository/memory"
	"library-service/internal/payments/repository/postgres"
	pkgstore "library-service/pkg/store"
)

// RepositoryConfig function type for repository setup
type RepositoryConfig func(*Repositories) error

// Repositories holds all repository implementations for the payment
// orchestration domain.
type Repositories struct {
	sql *pkgstore.SQL

	Invoice       paymentdomain.InvoiceRepository
	Installment   paymentdomain.InstallmentRepository
	Transaction   paymentdomain.TransactionRepository
	GatewayConfig paymentdomain.GatewayConfigRepository
	APIKey        paymentdomain.APIKeyRepository
	WebhookRetry  paymentdomain.WebhookRetryRepository
	Report        paymentdomain.ReportRepository
}

// NewRepositories creates a new repository container
func NewRepositories(configs ...RepositoryConfig) (*Repositories, error) {
	repos := &Repositories{}

	for _, cfg := range configs {
		if err := cfg(repos); err != nil {
			return nil, err
		}
	}

	return repos, nil
}

// Close closes all store connections
func (r *Repositories) Close() {
	if r.sql != nil && r.sql.Connection != nil {
		r.sql.Connection.Close()
	}
}

// WithMemoryStore configures in-memory repositories, used for local
// development and in-process tests.
func WithMemoryStore() RepositoryConfig {
	return func(r *Repositories) error {
		invoices := memory.NewInvoiceRepository()
		transactions := memory.NewTransactionRepository(invoices)

		r.Invoice = invoices
		r.Installment = memory.NewInstallmentRepository()
		r.Transaction = transactions
		r.GatewayConfig = memory.NewGatewayConfigRepository()
		r.APIKey = memory.NewAPIKeyRepository()
		r.WebhookRetry = memory.NewWebhookRetryRepository()
		r.Report = memory.NewReportRepository(transactions, invoices)
		return nil
	}
}

// WithPostgresStore configures PostgreSQL repositories against a pgxpool
// connection pool, running migrations first.
func WithPostgresStore(dsn string) RepositoryConfig {
	return func(r *Repositories) error {
		db, err := pkgstore.NewSQL(dsn)
		if err != nil {
			return err
		}
		r.sql = db

		if err := infrastore.RunMigrations(dsn); err != nil {
			return err
		}

		r.Invoice = postgres.NewInvoiceRepository(db.Connection)
		r.Installment = postgres.NewInstallmentRepository(db.Connection)
		r.Transaction = postgres.NewTransactionRepository(db.Connection)
		r.GatewayConfig = postgres.NewGatewayConfigRepository(db.Connection)
		r.APIKey = postgres.NewAPIKeyRepository(db.Connection)
		r.WebhookRetry = postgres.NewWebhookRetryRepository(db.Connection)
		r.Report = postgres.NewReportRepository(db.Connection)

		return nil
	}
}
