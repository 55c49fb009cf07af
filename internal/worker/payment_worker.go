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

// Acquirer success probabilities outside test mode.
const (
	upiSuccessRate  = 0.90
	cardSuccessRate = 0.95
)

const (
	failedErrorCode = "PAYMENT_FAILED"
	failedErrorDesc = "Payment processing failed"
)

// paymentEventData is the webhook data shape for payment.* events.
type paymentEventData struct {
	ID               string               `json:"id"`
	OrderID          string               `json:"order_id"`
	Amount           int64                `json:"amount"`
	Currency         string               `json:"currency"`
	Method           domain.PaymentMethod `json:"method"`
	VPA              *string              `json:"vpa,omitempty"`
	Status           domain.PaymentStatus `json:"status"`
	ErrorCode        *string              `json:"error_code,omitempty"`
	ErrorDescription *string              `json:"error_description,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

// PaymentWorker settles pending payments. A handler error triggers the
// broker's bounded retry; terminal writes are guarded in SQL, so a retried
// job that finds the work already done is a no-op.
type PaymentWorker struct {
	payments ports.PaymentRepository
	webhooks ports.WebhookService
	cfg      config.TestConfig
	log      zerolog.Logger
}

func NewPaymentWorker(payments ports.PaymentRepository, webhooks ports.WebhookService, cfg config.TestConfig, log zerolog.Logger) *PaymentWorker {
	return &PaymentWorker{
		payments: payments,
		webhooks: webhooks,
		cfg:      cfg,
		log:      log.With().Str("component", "payment_worker").Logger(),
	}
}

func (w *PaymentWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var job ports.PaymentJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("unmarshal payment job: %w", err)
	}

	payment, err := w.payments.GetByIDAny(ctx, job.PaymentID)
	if err != nil {
		return fmt.Errorf("loading payment: %w", err)
	}
	if payment == nil || payment.IsTerminal() {
		return nil
	}

	sleep(ctx, w.processingDelay())

	success := w.decideOutcome(payment.Method)
	status := domain.PaymentStatusSuccess
	var errCode, errDesc *string
	if !success {
		status = domain.PaymentStatusFailed
		code, desc := failedErrorCode, failedErrorDesc
		errCode, errDesc = &code, &desc
	}

	ok, err := w.payments.MarkTerminal(ctx, payment.ID, status, errCode, errDesc)
	if err != nil {
		return fmt.Errorf("marking payment terminal: %w", err)
	}
	if !ok {
		// A concurrent run already settled it; that run owns the fan-out.
		return nil
	}

	payment.Status = status
	payment.ErrorCode = errCode
	payment.ErrorDescription = errDesc

	event := domain.EventPaymentSuccess
	if !success {
		event = domain.EventPaymentFailed
	}
	data := map[string]paymentEventData{"payment": {
		ID:               payment.ID,
		OrderID:          payment.OrderID,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Method:           payment.Method,
		VPA:              payment.VPA,
		Status:           payment.Status,
		ErrorCode:        payment.ErrorCode,
		ErrorDescription: payment.ErrorDescription,
		CreatedAt:        payment.CreatedAt,
	}}
	if _, err := w.webhooks.Dispatch(ctx, payment.MerchantID, event, data); err != nil {
		// The payment is settled; delivery has its own audit trail.
		w.log.Error().Err(err).Str("payment_id", payment.ID).Msg("webhook dispatch failed")
	}

	w.log.Info().Str("payment_id", payment.ID).Str("status", string(status)).Msg("payment processed")
	return nil
}

func (w *PaymentWorker) processingDelay() time.Duration {
	if w.cfg.Mode {
		return time.Duration(w.cfg.ProcessingDelayMillis) * time.Millisecond
	}
	return time.Duration(5000+rand.Intn(5001)) * time.Millisecond
}

func (w *PaymentWorker) decideOutcome(method domain.PaymentMethod) bool {
	if w.cfg.Mode {
		return w.cfg.PaymentSuccess
	}
	rate := upiSuccessRate
	if method == domain.MethodCard {
		rate = cardSuccessRate
	}
	return rand.Float64() < rate
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
