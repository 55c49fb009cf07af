package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
)

// WebhookService implements ports.WebhookService.
type WebhookService struct {
	merchants ports.MerchantRepository
	logs      ports.WebhookLogRepository
	queue     ports.JobQueue
	log       zerolog.Logger
}

func NewWebhookService(
	merchants ports.MerchantRepository,
	logs ports.WebhookLogRepository,
	queue ports.JobQueue,
	log zerolog.Logger,
) *WebhookService {
	return &WebhookService{
		merchants: merchants,
		logs:      logs,
		queue:     queue,
		log:       log.With().Str("component", "webhook_service").Logger(),
	}
}

// Dispatch fans an event out to the merchant's endpoint. The envelope is
// serialized exactly once here; the bytes ride in the log row and in every
// delivery job, so all attempts sign and transmit the same payload.
// Merchants without a webhook URL get no log and no job.
func (s *WebhookService) Dispatch(ctx context.Context, merchantID uuid.UUID, event string, data any) (*domain.WebhookLog, error) {
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if merchant == nil {
		return nil, apperror.NotFound("Merchant")
	}
	if !merchant.HasWebhook() {
		return nil, nil
	}

	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("marshaling event data: %w", err))
	}
	envelope, err := json.Marshal(domain.WebhookEnvelope{
		Event:     event,
		Timestamp: time.Now().Unix(),
		Data:      rawData,
	})
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("marshaling envelope: %w", err))
	}

	now := time.Now()
	l := &domain.WebhookLog{
		ID:          uuid.New(),
		MerchantID:  merchantID,
		Event:       event,
		Payload:     envelope,
		Status:      domain.WebhookStatusPending,
		Attempts:    0,
		NextRetryAt: &now,
	}
	if err := s.logs.Create(ctx, l); err != nil {
		return nil, apperror.Internal(err)
	}

	job := ports.WebhookJob{LogID: l.ID, MerchantID: merchantID, Payload: envelope}
	if err := s.queue.EnqueueWebhook(ctx, job, 0); err != nil {
		// The log is committed pending; the redelivery sweep picks it up.
		s.log.Error().Err(err).Str("log_id", l.ID.String()).Msg("webhook job enqueue failed")
	}

	s.log.Info().Str("log_id", l.ID.String()).Str("event", event).Msg("webhook dispatched")
	return l, nil
}

func (s *WebhookService) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.WebhookLog, int64, error) {
	logs, total, err := s.logs.List(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return logs, total, nil
}

func (s *WebhookService) Get(ctx context.Context, merchantID, id uuid.UUID) (*domain.WebhookLog, error) {
	l, err := s.logs.GetByIDScoped(ctx, merchantID, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if l == nil {
		return nil, apperror.NotFound("Webhook log")
	}
	return l, nil
}

// Retry resets the log and schedules an immediate delivery. It is a fresh
// schedule, not a continuation: attempts restart at zero.
func (s *WebhookService) Retry(ctx context.Context, merchantID, id uuid.UUID) (*domain.WebhookLog, error) {
	l, err := s.logs.GetByIDScoped(ctx, merchantID, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if l == nil {
		return nil, apperror.NotFound("Webhook log")
	}

	now := time.Now()
	l.Status = domain.WebhookStatusPending
	l.Attempts = 0
	l.NextRetryAt = &now
	if err := s.logs.Update(ctx, l); err != nil {
		return nil, apperror.Internal(err)
	}

	job := ports.WebhookJob{LogID: l.ID, MerchantID: merchantID, Payload: l.Payload}
	if err := s.queue.EnqueueWebhook(ctx, job, 0); err != nil {
		s.log.Error().Err(err).Str("log_id", l.ID.String()).Msg("webhook retry enqueue failed")
	}

	s.log.Info().Str("log_id", l.ID.String()).Msg("webhook retry scheduled")
	return l, nil
}
