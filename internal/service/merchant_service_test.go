package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports/mocks"
	"paygate/pkg/apperror"
)

type merchantFixture struct {
	merchants *mocks.MockMerchantRepository
	webhooks  *mocks.MockWebhookService
	svc       *MerchantService
}

func newMerchantFixture(t *testing.T) *merchantFixture {
	ctrl := gomock.NewController(t)
	f := &merchantFixture{
		merchants: mocks.NewMockMerchantRepository(ctrl),
		webhooks:  mocks.NewMockWebhookService(ctrl),
	}
	f.svc = NewMerchantService(f.merchants, f.webhooks, zerolog.Nop())
	return f
}

func TestMerchantServiceUpdateWebhookURL(t *testing.T) {
	f := newMerchantFixture(t)
	merchantID := uuid.New()

	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{ID: merchantID}, nil)
	f.merchants.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	m, err := f.svc.UpdateWebhookURL(context.Background(), merchantID, "https://merchant.example/hook")
	require.NoError(t, err)
	require.NotNil(t, m.WebhookURL)
	assert.Equal(t, "https://merchant.example/hook", *m.WebhookURL)
}

func TestMerchantServiceUpdateWebhookURLInvalid(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://x.example", "https://"} {
		f := newMerchantFixture(t)
		_, err := f.svc.UpdateWebhookURL(context.Background(), uuid.New(), raw)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr, "url %q", raw)
		assert.Equal(t, apperror.CodeBadRequest, appErr.Code)
	}
}

func TestMerchantServiceRegenerateWebhookSecret(t *testing.T) {
	f := newMerchantFixture(t)
	merchantID := uuid.New()

	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, WebhookSecret: "whsec_old",
	}, nil)
	f.merchants.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	m, err := f.svc.RegenerateWebhookSecret(context.Background(), merchantID)
	require.NoError(t, err)
	assert.NotEqual(t, "whsec_old", m.WebhookSecret)
	assert.True(t, strings.HasPrefix(m.WebhookSecret, "whsec_"))
}

func TestMerchantServiceSendTestWebhook(t *testing.T) {
	f := newMerchantFixture(t)
	merchantID := uuid.New()
	url := "https://merchant.example/hook"

	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, WebhookURL: &url,
	}, nil)
	f.webhooks.EXPECT().Dispatch(gomock.Any(), merchantID, domain.EventTestWebhook,
		map[string]string{"message": "This is a test webhook"}).
		Return(&domain.WebhookLog{Event: domain.EventTestWebhook}, nil)

	l, err := f.svc.SendTestWebhook(context.Background(), merchantID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTestWebhook, l.Event)
}

func TestMerchantServiceSendTestWebhookWithoutURL(t *testing.T) {
	f := newMerchantFixture(t)
	merchantID := uuid.New()

	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{ID: merchantID}, nil)

	_, err := f.svc.SendTestWebhook(context.Background(), merchantID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeBadRequest, appErr.Code)
}
