package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"paygate/config"
	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
)

// refundEventData is the webhook data shape for refund.processed.
type refundEventData struct {
	ID          string              `json:"id"`
	PaymentID   string              `json:"payment_id"`
	Amount      int64               `json:"amount"`
	Reason      *string             `json:"reason"`
	Status      domain.RefundStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	ProcessedAt *time.Time          `json:"processed_at"`
}

// RefundWorker processes pending refunds.
type RefundWorker struct {
	refunds  ports.RefundRepository
	payments ports.PaymentRepository
	webhooks ports.WebhookService
	cfg      config.TestConfig
	log      zerolog.Logger
}

func NewRefundWorker(refunds ports.RefundRepository, payments ports.PaymentRepository, webhooks ports.WebhookService, cfg config.TestConfig, log zerolog.Logger) *RefundWorker {
	return &RefundWorker{
		refunds:  refunds,
		payments: payments,
		webhooks: webhooks,
		cfg:      cfg,
		log:      log.With().Str("component", "refund_worker").Logger(),
	}
}

func (w *RefundWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var job ports.RefundJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("unmarshal refund job: %w", err)
	}

	refund, err := w.refunds.GetByIDAny(ctx, job.RefundID)
	if err != nil {
		return fmt.Errorf("loading refund: %w", err)
	}
	if refund == nil || refund.Status == domain.RefundStatusProcessed {
		return nil
	}

	payment, err := w.payments.GetByIDAny(ctx, refund.PaymentID)
	if err != nil {
		return fmt.Errorf("loading payment: %w", err)
	}
	if payment == nil || payment.Status != domain.PaymentStatusSuccess {
		// Refunds only exist against successful payments; anything else is
		// a benign no-op.
		return nil
	}

	sleep(ctx, w.processingDelay())

	now := time.Now()
	ok, err := w.refunds.MarkProcessed(ctx, refund.ID, now)
	if err != nil {
		return fmt.Errorf("marking refund processed: %w", err)
	}
	if !ok {
		return nil
	}

	refund.Status = domain.RefundStatusProcessed
	refund.ProcessedAt = &now

	data := map[string]refundEventData{"refund": {
		ID:          refund.ID,
		PaymentID:   refund.PaymentID,
		Amount:      refund.Amount,
		Reason:      refund.Reason,
		Status:      refund.Status,
		CreatedAt:   refund.CreatedAt,
		ProcessedAt: refund.ProcessedAt,
	}}
	if _, err := w.webhooks.Dispatch(ctx, refund.MerchantID, domain.EventRefundProcessed, data); err != nil {
		w.log.Error().Err(err).Str("refund_id", refund.ID).Msg("webhook dispatch failed")
	}

	w.log.Info().Str("refund_id", refund.ID).Msg("refund processed")
	return nil
}

func (w *RefundWorker) processingDelay() time.Duration {
	if w.cfg.Mode {
		return time.Duration(w.cfg.ProcessingDelayMillis) * time.Millisecond
	}
	return time.Duration(3000+rand.Intn(2001)) * time.Millisecond
}
