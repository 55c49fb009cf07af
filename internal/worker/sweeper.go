package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"paygate/internal/core/ports"
)

// Sweeper defaults.
const (
	sweepInterval  = time.Minute
	sweepGrace     = 5 * time.Minute
	sweepBatchSize = 100
)

// Sweeper is the reconciliation loop. An API write commits its row before
// enqueueing the job; if that enqueue fails, the row sits pending with no
// job behind it. The sweeper periodically re-enqueues such rows, and
// pending webhook logs whose next_retry_at has long passed, making the
// commit-then-enqueue gap safe without an outbox table.
type Sweeper struct {
	payments ports.PaymentRepository
	refunds  ports.RefundRepository
	logs     ports.WebhookLogRepository
	queue    ports.JobQueue
	interval time.Duration
	grace    time.Duration
	log      zerolog.Logger
}

func NewSweeper(
	payments ports.PaymentRepository,
	refunds ports.RefundRepository,
	logs ports.WebhookLogRepository,
	queue ports.JobQueue,
	log zerolog.Logger,
) *Sweeper {
	return &Sweeper{
		payments: payments,
		refunds:  refunds,
		logs:     logs,
		queue:    queue,
		interval: sweepInterval,
		grace:    sweepGrace,
		log:      log.With().Str("component", "sweeper").Logger(),
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one reconciliation pass. Re-enqueueing an already-queued row
// is harmless: workers treat settled rows as no-ops.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.grace)

	payments, err := s.payments.ListStuckPending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("listing stuck payments")
	}
	for _, p := range payments {
		if err := s.queue.EnqueuePayment(ctx, ports.PaymentJob{PaymentID: p.ID}); err != nil {
			s.log.Error().Err(err).Str("payment_id", p.ID).Msg("re-enqueue failed")
			continue
		}
		s.log.Warn().Str("payment_id", p.ID).Msg("stuck payment re-enqueued")
	}

	refunds, err := s.refunds.ListStuckPending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("listing stuck refunds")
	}
	for _, r := range refunds {
		if err := s.queue.EnqueueRefund(ctx, ports.RefundJob{RefundID: r.ID}); err != nil {
			s.log.Error().Err(err).Str("refund_id", r.ID).Msg("re-enqueue failed")
			continue
		}
		s.log.Warn().Str("refund_id", r.ID).Msg("stuck refund re-enqueued")
	}

	logs, err := s.logs.ListStuckPending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.log.Error().Err(err).Msg("listing stuck webhook logs")
	}
	for _, l := range logs {
		job := ports.WebhookJob{LogID: l.ID, MerchantID: l.MerchantID, Payload: l.Payload}
		if err := s.queue.EnqueueWebhook(ctx, job, 0); err != nil {
			s.log.Error().Err(err).Str("log_id", l.ID.String()).Msg("re-enqueue failed")
			continue
		}
		s.log.Warn().Str("log_id", l.ID.String()).Msg("stuck webhook re-enqueued")
	}
}
