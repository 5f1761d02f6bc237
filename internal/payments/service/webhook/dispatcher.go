package webhook

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"library-service/internal/payments/domain"
	paymentErrors "library-service/pkg/errors"
	"library-service/pkg/logutil"
	"library-service/pkg/timeutil"
)

// retryDelays implements the fixed 1-initial-plus-3-retries schedule from
// §4.8: immediate delivery, then 60s, 300s, 1800s.
var retryDelays = []time.Duration{60 * time.Second, 5 * time.Minute, 30 * time.Minute}

// Dispatcher wraps ProcessWebhookUseCase with the retry/backoff state
// machine and the audit trail in WebhookRetryRepository. The HTTP handler
// calls Deliver once per inbound request; Deliver itself retries in-process
// for gateway/transport-shaped failures rather than returning 5xx and
// relying on the upstream gateway's own redelivery.
type Dispatcher struct {
	processor *ProcessWebhookUseCase
	retries   domain.WebhookRetryRepository
}

func NewDispatcher(processor *ProcessWebhookUseCase, retries domain.WebhookRetryRepository) *Dispatcher {
	return &Dispatcher{processor: processor, retries: retries}
}

func (d *Dispatcher) Deliver(ctx context.Context, gatewayID, signature string, rawPayload []byte) error {
	logger := logutil.UseCaseLogger(ctx, "webhook", "dispatch")

	var attempt int
	operation := func() error {
		attempt++
		err := d.processor.Execute(ctx, gatewayID, signature, rawPayload)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}

		var nextAttemptAt *time.Time
		if attempt <= len(retryDelays) {
			t := timeutil.Now().Add(retryDelays[attempt-1])
			nextAttemptAt = &t
		}
		// The gateway_transaction_ref isn't known until ProcessWebhook parses
		// the payload, so failed attempts are keyed by the delivery's
		// signature instead - still unique per inbound request.
		if recordErr := d.retries.RecordAttempt(ctx, gatewayID, signature, attempt, err.Error(), nextAttemptAt); recordErr != nil {
			logger.Warn("failed to record webhook retry attempt", zap.Error(recordErr))
		}
		return err
	}

	policy := backoff.WithMaxRetries(newFixedScheduleBackOff(retryDelays), uint64(len(retryDelays)))
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		logger.Error("webhook delivery exhausted retries", zap.String("gateway_id", gatewayID), zap.Int("attempts", attempt), zap.Error(err))
		return err
	}
	return nil
}

// isRetryable treats anything but a validation-shaped rejection (bad
// signature, undecodable payload, unknown gateway) as worth retrying:
// those are caller errors that another attempt cannot fix.
func isRetryable(err error) bool {
	var domainErr *paymentErrors.Error
	if stderrors.As(err, &domainErr) {
		return domainErr.HTTPStatus >= 500
	}
	return true
}

// fixedScheduleBackOff hands out exactly the §4.8 delay sequence instead of
// backoff.ExponentialBackOff's jittered growth curve.
type fixedScheduleBackOff struct {
	delays []time.Duration
	index  int
}

func newFixedScheduleBackOff(delays []time.Duration) *fixedScheduleBackOff {
	return &fixedScheduleBackOff{delays: delays}
}

func (b *fixedScheduleBackOff) NextBackOff() time.Duration {
	if b.index >= len(b.delays) {
		return backoff.Stop
	}
	d := b.delays[b.index]
	b.index++
	return d
}

func (b *fixedScheduleBackOff) Reset() { b.index = 0 }
