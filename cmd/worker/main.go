package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	domainapp "library-service/internal/domain/app"
	"library-service/internal/infrastructure/config"
	"library-service/internal/infrastructure/log"
	installmentservice "library-service/internal/payments/service/installment"
	invoiceservice "library-service/internal/payments/service/invoice"
)

// Worker runs the periodic sweeps that keep invoice and installment state
// consistent without waiting on a gateway webhook: expiring invoices past
// their deadline (§4.9) and marking installments overdue.
type Worker struct {
	logger         *zap.Logger
	config         *config.Config
	expireInvoices *invoiceservice.ExpireInvoicesUseCase
	sweepOverdue   *installmentservice.SweepOverdueUseCase
	sweepBatchSize int
}

func main() {
	logger, err := log.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting worker service")

	cfg := config.MustLoad("")

	repos, err := newRepositories(cfg)
	if err != nil {
		logger.Fatal("failed to initialize repositories", zap.Error(err))
	}
	logger.Info("repositories initialized")

	worker := &Worker{
		logger:         logger,
		config:         cfg,
		expireInvoices: invoiceservice.NewExpireInvoicesUseCase(repos.Invoice),
		sweepOverdue:   installmentservice.NewSweepOverdueUseCase(repos.Installment),
		sweepBatchSize: cfg.Webhook.SweepBatchSize,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go worker.runExpirationSweep(ctx)
	go worker.runOverdueSweep(ctx)

	logger.Info("worker service started")

	sig := <-quit
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	time.Sleep(2 * time.Second)

	logger.Info("worker service stopped")
}

func newRepositories(cfg *config.Config) (*domainapp.Repositories, error) {
	if cfg.Database.Host == "" {
		return domainapp.NewRepositories(domainapp.WithMemoryStore())
	}
	return domainapp.NewRepositories(domainapp.WithPostgresStore(cfg.Database.GetDSN()))
}

func (w *Worker) runExpirationSweep(ctx context.Context) {
	interval := w.config.Webhook.ExpirationSweepEvery
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("invoice expiration sweep started", zap.Duration("interval", interval))
	w.expireOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("invoice expiration sweep stopping")
			return
		case <-ticker.C:
			w.expireOnce(ctx)
		}
	}
}

func (w *Worker) expireOnce(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	count, err := w.expireInvoices.Execute(jobCtx, invoiceservice.ExpireInvoicesRequest{BatchSize: w.sweepBatchSize})
	if err != nil {
		w.logger.Error("invoice expiration sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.logger.Info("invoice expiration sweep completed", zap.Int("expired_count", count))
	}
}

func (w *Worker) runOverdueSweep(ctx context.Context) {
	interval := w.config.Webhook.OverdueSweepEvery
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("installment overdue sweep started", zap.Duration("interval", interval))
	w.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("installment overdue sweep stopping")
			return
		case <-ticker.C:
			w.sweepOnce(ctx)
		}
	}
}

func (w *Worker) sweepOnce(ctx context.Context) {
	jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	count, err := w.sweepOverdue.Execute(jobCtx, installmentservice.SweepOverdueRequest{BatchSize: w.sweepBatchSize})
	if err != nil {
		w.logger.Error("installment overdue sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.logger.Info("installment overdue sweep completed", zap.Int("overdue_count", count))
	}
}
