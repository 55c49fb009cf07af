package service

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/ident"
)

// MerchantService implements ports.MerchantService.
type MerchantService struct {
	merchants ports.MerchantRepository
	webhooks  ports.WebhookService
	log       zerolog.Logger
}

func NewMerchantService(merchants ports.MerchantRepository, webhooks ports.WebhookService, log zerolog.Logger) *MerchantService {
	return &MerchantService{
		merchants: merchants,
		webhooks:  webhooks,
		log:       log.With().Str("component", "merchant_service").Logger(),
	}
}

func (s *MerchantService) Profile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if merchant == nil {
		return nil, apperror.NotFound("Merchant")
	}
	return merchant, nil
}

func (s *MerchantService) UpdateWebhookURL(ctx context.Context, merchantID uuid.UUID, rawURL string) (*domain.Merchant, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperror.BadRequest("webhook_url must be a valid http(s) URL")
	}

	merchant, err := s.Profile(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	merchant.WebhookURL = &rawURL
	if err := s.merchants.Update(ctx, merchant); err != nil {
		return nil, apperror.Internal(err)
	}

	s.log.Info().Str("merchant_id", merchantID.String()).Msg("webhook url updated")
	return merchant, nil
}

func (s *MerchantService) RegenerateWebhookSecret(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.Profile(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	merchant.WebhookSecret = ident.NewWebhookSecret()
	if err := s.merchants.Update(ctx, merchant); err != nil {
		return nil, apperror.Internal(err)
	}

	s.log.Info().Str("merchant_id", merchantID.String()).Msg("webhook secret regenerated")
	return merchant, nil
}

func (s *MerchantService) SendTestWebhook(ctx context.Context, merchantID uuid.UUID) (*domain.WebhookLog, error) {
	merchant, err := s.Profile(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.HasWebhook() {
		return nil, apperror.BadRequest("webhook_url is not configured")
	}

	data := map[string]string{"message": "This is a test webhook"}
	return s.webhooks.Dispatch(ctx, merchantID, domain.EventTestWebhook, data)
}
