package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
)

// webhookTimeout bounds one delivery attempt end to end.
const webhookTimeout = 5 * time.Second

// HTTPClient is the outbound client surface, narrowed for tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookWorker owns the delivery state machine. A delivery failure is an
// application outcome, not a handler error: the worker records it on the
// log and schedules the next attempt itself, so ProcessTask never returns
// an error for a failed POST.
type WebhookWorker struct {
	logs      ports.WebhookLogRepository
	merchants ports.MerchantRepository
	queue     ports.JobQueue
	signer    ports.SignatureService
	client    HTTPClient
	backoff   []time.Duration
	log       zerolog.Logger
}

func NewWebhookWorker(
	logs ports.WebhookLogRepository,
	merchants ports.MerchantRepository,
	queue ports.JobQueue,
	signer ports.SignatureService,
	client HTTPClient,
	backoff []time.Duration,
	log zerolog.Logger,
) *WebhookWorker {
	if client == nil {
		client = &http.Client{Timeout: webhookTimeout}
	}
	return &WebhookWorker{
		logs:      logs,
		merchants: merchants,
		queue:     queue,
		signer:    signer,
		client:    client,
		backoff:   backoff,
		log:       log.With().Str("component", "webhook_worker").Logger(),
	}
}

func (w *WebhookWorker) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var job ports.WebhookJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("unmarshal webhook job: %w", err)
	}

	l, err := w.logs.GetByID(ctx, job.LogID)
	if err != nil {
		return fmt.Errorf("loading webhook log: %w", err)
	}
	if l == nil || l.Status == domain.WebhookStatusSuccess {
		return nil
	}

	merchant, err := w.merchants.GetByID(ctx, job.MerchantID)
	if err != nil {
		return fmt.Errorf("loading merchant: %w", err)
	}
	if merchant == nil || !merchant.HasWebhook() {
		return nil
	}

	code, body, deliverErr := w.deliver(ctx, *merchant.WebhookURL, merchant.WebhookSecret, job.Payload)

	now := time.Now()
	l.Attempts++
	l.LastAttemptAt = &now
	l.ResponseCode = &code
	l.ResponseBody = &body

	if deliverErr == nil && code >= 200 && code <= 299 {
		l.Status = domain.WebhookStatusSuccess
		l.NextRetryAt = nil
		if err := w.logs.Update(ctx, l); err != nil {
			return fmt.Errorf("updating webhook log: %w", err)
		}
		w.log.Info().Str("log_id", l.ID.String()).Int("attempts", l.Attempts).Msg("webhook delivered")
		return nil
	}

	if l.Exhausted() {
		l.Status = domain.WebhookStatusFailed
		l.NextRetryAt = nil
		if err := w.logs.Update(ctx, l); err != nil {
			return fmt.Errorf("updating webhook log: %w", err)
		}
		w.log.Warn().Str("log_id", l.ID.String()).Msg("webhook delivery exhausted")
		return nil
	}

	// The next attempt number equals the failure count plus one; the
	// schedule is indexed so backoff[attempts] is its delay.
	delay := w.backoff[l.Attempts]
	next := now.Add(delay)
	l.Status = domain.WebhookStatusPending
	l.NextRetryAt = &next

	// The log update commits before the next job exists, keeping attempts
	// strictly serial per log.
	if err := w.logs.Update(ctx, l); err != nil {
		return fmt.Errorf("updating webhook log: %w", err)
	}
	if err := w.queue.EnqueueWebhook(ctx, job, delay); err != nil {
		// Pending with a due next_retry_at; the redelivery sweep recovers.
		w.log.Error().Err(err).Str("log_id", l.ID.String()).Msg("webhook re-enqueue failed")
		return nil
	}

	w.log.Info().
		Str("log_id", l.ID.String()).
		Int("attempts", l.Attempts).
		Dur("delay", delay).
		Msg("webhook retry scheduled")
	return nil
}

// deliver POSTs the exact payload bytes with the HMAC signature header.
// A transport failure reports code 0 and a short error message.
func (w *WebhookWorker) deliver(ctx context.Context, url, secret string, payload []byte) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err.Error(), err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", w.signer.Sign(payload, secret))

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, truncate(err.Error(), domain.ResponseBodyLimit), err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, domain.ResponseBodyLimit))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, string(raw), fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	return resp.StatusCode, string(raw), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
