package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/internal/core/ports/mocks"
	"paygate/pkg/apperror"
)

type webhookFixture struct {
	merchants *mocks.MockMerchantRepository
	logs      *mocks.MockWebhookLogRepository
	queue     *mocks.MockJobQueue
	svc       *WebhookService
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	ctrl := gomock.NewController(t)
	f := &webhookFixture{
		merchants: mocks.NewMockMerchantRepository(ctrl),
		logs:      mocks.NewMockWebhookLogRepository(ctrl),
		queue:     mocks.NewMockJobQueue(ctrl),
	}
	f.svc = NewWebhookService(f.merchants, f.logs, f.queue, zerolog.Nop())
	return f
}

func TestWebhookServiceDispatch(t *testing.T) {
	f := newWebhookFixture(t)
	merchantID := uuid.New()
	url := "https://merchant.example/hook"

	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, WebhookURL: &url, WebhookSecret: "whsec_x",
	}, nil)

	var createdPayload []byte
	f.logs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.WebhookLog) error {
			assert.Equal(t, domain.WebhookStatusPending, l.Status)
			assert.Equal(t, 0, l.Attempts)
			createdPayload = l.Payload
			return nil
		})
	f.queue.EXPECT().EnqueueWebhook(gomock.Any(), gomock.Any(), time.Duration(0)).DoAndReturn(
		func(_ context.Context, job ports.WebhookJob, _ time.Duration) error {
			assert.Equal(t, createdPayload, job.Payload, "job carries the exact logged bytes")
			return nil
		})

	l, err := f.svc.Dispatch(context.Background(), merchantID, domain.EventPaymentSuccess, map[string]any{
		"payment": map[string]any{"id": "pay_x"},
	})
	require.NoError(t, err)
	require.NotNil(t, l)

	var env domain.WebhookEnvelope
	require.NoError(t, json.Unmarshal(l.Payload, &env))
	assert.Equal(t, domain.EventPaymentSuccess, env.Event)
	assert.InDelta(t, time.Now().Unix(), env.Timestamp, 5)
}

func TestWebhookServiceDispatchNoURL(t *testing.T) {
	f := newWebhookFixture(t)
	merchantID := uuid.New()

	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{ID: merchantID}, nil)

	l, err := f.svc.Dispatch(context.Background(), merchantID, domain.EventPaymentSuccess, map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, l, "no URL means no log and no job")
}

func TestWebhookServiceRetry(t *testing.T) {
	f := newWebhookFixture(t)
	merchantID := uuid.New()
	logID := uuid.New()
	payload := json.RawMessage(`{"event":"payment.failed","timestamp":1,"data":{}}`)

	f.logs.EXPECT().GetByIDScoped(gomock.Any(), merchantID, logID).Return(&domain.WebhookLog{
		ID:         logID,
		MerchantID: merchantID,
		Payload:    payload,
		Status:     domain.WebhookStatusFailed,
		Attempts:   domain.MaxWebhookAttempts,
	}, nil)
	f.logs.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.WebhookLog) error {
			assert.Equal(t, domain.WebhookStatusPending, l.Status)
			assert.Equal(t, 0, l.Attempts, "manual retry is a fresh schedule")
			return nil
		})
	f.queue.EXPECT().EnqueueWebhook(gomock.Any(), gomock.Any(), time.Duration(0)).DoAndReturn(
		func(_ context.Context, job ports.WebhookJob, _ time.Duration) error {
			assert.Equal(t, []byte(payload), job.Payload)
			return nil
		})

	l, err := f.svc.Retry(context.Background(), merchantID, logID)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Attempts)
}

func TestWebhookServiceRetryNotFound(t *testing.T) {
	f := newWebhookFixture(t)
	merchantID := uuid.New()
	logID := uuid.New()

	f.logs.EXPECT().GetByIDScoped(gomock.Any(), merchantID, logID).Return(nil, nil)

	_, err := f.svc.Retry(context.Background(), merchantID, logID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}
