// Package container provides the dependency injection container for all
// application use cases.
//
// This is the central wiring point following Clean Architecture principles:
// repositories and caches are constructed in internal/domain/app, the
// gateway registry is constructed in internal/app, and this package
// combines them into the use cases each HTTP handler calls.
package container

import (
	"context"

	"library-service/internal/payments/domain"
	"library-service/internal/payments/gateway"
	installmentservice "library-service/internal/payments/service/installment"
	invoiceservice "library-service/internal/payments/service/invoice"
	reportservice "library-service/internal/payments/service/report"
	transactionservice "library-service/internal/payments/service/transaction"
	webhookservice "library-service/internal/payments/service/webhook"
)

// UseCase represents a single business use case
type UseCase[TRequest, TResponse any] interface {
	Execute(ctx context.Context, req TRequest) (TResponse, error)
}

// Container holds all application use cases organized by domain
type Container struct {
	Invoice     InvoiceUseCases
	Installment InstallmentUseCases
	Transaction TransactionUseCases
	Webhook     WebhookUseCases
	Report      ReportUseCases

	// GatewayConfigs is exposed directly (not wrapped in a use case) for the
	// read-only GET /gateways listing, which has no business logic beyond
	// the repository call itself.
	GatewayConfigs domain.GatewayConfigRepository
}

// Repositories holds all repository interfaces used by the container.
type Repositories struct {
	Invoice       domain.InvoiceRepository
	Installment   domain.InstallmentRepository
	Transaction   domain.TransactionRepository
	GatewayConfig domain.GatewayConfigRepository
	APIKey        domain.APIKeyRepository
	WebhookRetry  domain.WebhookRetryRepository
	Report        domain.ReportRepository
}

// Validator defines the validation interface used by use cases
type Validator interface {
	Validate(i interface{}) error
}

// InvoiceUseCases contains all invoice-related use cases
type InvoiceUseCases struct {
	Create          *invoiceservice.CreateInvoiceUseCase
	Get             *invoiceservice.GetInvoiceUseCase
	List            *invoiceservice.ListInvoicesUseCase
	InitiatePayment *invoiceservice.InitiatePaymentUseCase
	ExpireInvoices  *invoiceservice.ExpireInvoicesUseCase
}

// InstallmentUseCases contains all installment-related use cases
type InstallmentUseCases struct {
	Adjust       *installmentservice.AdjustInstallmentsUseCase
	SweepOverdue *installmentservice.SweepOverdueUseCase
}

// TransactionUseCases contains all transaction-related use cases
type TransactionUseCases struct {
	RecordPayment *transactionservice.RecordPaymentUseCase
	List          *transactionservice.ListTransactionsUseCase
	PaymentStats  *transactionservice.PaymentStatsUseCase
}

// WebhookUseCases contains the webhook delivery pipeline
type WebhookUseCases struct {
	Dispatcher *webhookservice.Dispatcher
}

// ReportUseCases contains the financial reporting use cases
type ReportUseCases struct {
	FinancialSummary *reportservice.FinancialSummaryUseCase
}

// NewContainer wires every use case from its repositories and the gateway
// registry. Caching (gateway config lookups) is applied by passing a
// cache-backed domain.GatewayConfigRepository as repos.GatewayConfig; the
// container itself is cache-agnostic.
func NewContainer(repos *Repositories, registry *gateway.Registry, validator Validator) *Container {
	recorder := transactionservice.NewRecordPaymentUseCase(repos.Invoice, repos.Transaction)

	processWebhook := webhookservice.NewProcessWebhookUseCase(
		repos.Invoice,
		repos.Installment,
		repos.Transaction,
		recorder,
		registry,
	)

	return &Container{
		Invoice: InvoiceUseCases{
			Create:          invoiceservice.NewCreateInvoiceUseCase(repos.Invoice, repos.GatewayConfig, validator),
			Get:             invoiceservice.NewGetInvoiceUseCase(repos.Invoice),
			List:            invoiceservice.NewListInvoicesUseCase(repos.Invoice),
			InitiatePayment: invoiceservice.NewInitiatePaymentUseCase(repos.Invoice, repos.Installment, repos.GatewayConfig, registry),
			ExpireInvoices:  invoiceservice.NewExpireInvoicesUseCase(repos.Invoice),
		},
		Installment: InstallmentUseCases{
			Adjust:       installmentservice.NewAdjustInstallmentsUseCase(repos.Invoice, repos.Installment),
			SweepOverdue: installmentservice.NewSweepOverdueUseCase(repos.Installment),
		},
		Transaction: TransactionUseCases{
			RecordPayment: recorder,
			List:          transactionservice.NewListTransactionsUseCase(repos.Transaction),
			PaymentStats:  transactionservice.NewPaymentStatsUseCase(repos.Invoice, repos.Installment, repos.Transaction),
		},
		Webhook: WebhookUseCases{
			Dispatcher: webhookservice.NewDispatcher(processWebhook, repos.WebhookRetry),
		},
		Report: ReportUseCases{
			FinancialSummary: reportservice.NewFinancialSummaryUseCase(repos.Report),
		},
		GatewayConfigs: repos.GatewayConfig,
	}
}
