package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"paygate/internal/adapter/queue"
	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/internal/core/ports/mocks"
	"paygate/internal/service"
)

type webhookWorkerFixture struct {
	logs      *mocks.MockWebhookLogRepository
	merchants *mocks.MockMerchantRepository
	queue     *mocks.MockJobQueue
	worker    *WebhookWorker
}

func newWebhookWorkerFixture(t *testing.T) *webhookWorkerFixture {
	ctrl := gomock.NewController(t)
	f := &webhookWorkerFixture{
		logs:      mocks.NewMockWebhookLogRepository(ctrl),
		merchants: mocks.NewMockMerchantRepository(ctrl),
		queue:     mocks.NewMockJobQueue(ctrl),
	}
	f.worker = NewWebhookWorker(
		f.logs, f.merchants, f.queue,
		service.NewSignatureService(), nil,
		WebhookBackoff(true), zerolog.Nop(),
	)
	return f
}

func webhookTask(t *testing.T, job ports.WebhookJob) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(job)
	require.NoError(t, err)
	return asynq.NewTask(queue.TypeWebhookDeliver, payload)
}

func TestWebhookWorkerDelivers(t *testing.T) {
	f := newWebhookWorkerFixture(t)
	signer := service.NewSignatureService()
	envelope := []byte(`{"event":"payment.success","timestamp":1700000000,"data":{"payment":{"id":"pay_x"}}}`)

	var gotBody []byte
	var gotSignature, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSignature = r.Header.Get("X-Webhook-Signature")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	merchantID := uuid.New()
	logID := uuid.New()
	merchant := &domain.Merchant{ID: merchantID, WebhookURL: &srv.URL, WebhookSecret: "whsec_test"}

	f.logs.EXPECT().GetByID(gomock.Any(), logID).Return(&domain.WebhookLog{
		ID: logID, MerchantID: merchantID, Status: domain.WebhookStatusPending, Payload: envelope,
	}, nil)
	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(merchant, nil)
	f.logs.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.WebhookLog) error {
			assert.Equal(t, domain.WebhookStatusSuccess, l.Status)
			assert.Equal(t, 1, l.Attempts)
			require.NotNil(t, l.ResponseCode)
			assert.Equal(t, 200, *l.ResponseCode)
			require.NotNil(t, l.ResponseBody)
			assert.Equal(t, "ok", *l.ResponseBody)
			assert.Nil(t, l.NextRetryAt)
			return nil
		})

	err := f.worker.ProcessTask(context.Background(),
		webhookTask(t, ports.WebhookJob{LogID: logID, MerchantID: merchantID, Payload: envelope}))
	require.NoError(t, err)

	assert.Equal(t, envelope, gotBody, "transmitted bytes are the frozen envelope")
	assert.Equal(t, "application/json", gotContentType)
	assert.True(t, signer.Verify(gotBody, gotSignature, "whsec_test"),
		"signature verifies against the received body")
}

func TestWebhookWorkerSchedulesRetry(t *testing.T) {
	f := newWebhookWorkerFixture(t)
	envelope := []byte(`{"event":"payment.failed","timestamp":1,"data":{}}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	merchantID := uuid.New()
	logID := uuid.New()

	f.logs.EXPECT().GetByID(gomock.Any(), logID).Return(&domain.WebhookLog{
		ID: logID, MerchantID: merchantID, Status: domain.WebhookStatusPending, Attempts: 1, Payload: envelope,
	}, nil)
	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, WebhookURL: &srv.URL, WebhookSecret: "whsec_test",
	}, nil)

	updated := false
	f.logs.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.WebhookLog) error {
			updated = true
			assert.Equal(t, domain.WebhookStatusPending, l.Status)
			assert.Equal(t, 2, l.Attempts)
			require.NotNil(t, l.ResponseCode)
			assert.Equal(t, 500, *l.ResponseCode)
			require.NotNil(t, l.NextRetryAt)
			assert.WithinDuration(t, time.Now().Add(10*time.Second), *l.NextRetryAt, 2*time.Second,
				"third attempt uses the 10s test backoff slot")
			return nil
		})
	f.queue.EXPECT().EnqueueWebhook(gomock.Any(), gomock.Any(), 10*time.Second).DoAndReturn(
		func(_ context.Context, job ports.WebhookJob, _ time.Duration) error {
			assert.True(t, updated, "log update commits before the next job exists")
			assert.Equal(t, envelope, job.Payload)
			return nil
		})

	err := f.worker.ProcessTask(context.Background(),
		webhookTask(t, ports.WebhookJob{LogID: logID, MerchantID: merchantID, Payload: envelope}))
	require.NoError(t, err, "delivery failure is not a handler error")
}

func TestWebhookWorkerExhaustsAtCeiling(t *testing.T) {
	f := newWebhookWorkerFixture(t)
	envelope := []byte(`{"event":"payment.failed","timestamp":1,"data":{}}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	merchantID := uuid.New()
	logID := uuid.New()

	f.logs.EXPECT().GetByID(gomock.Any(), logID).Return(&domain.WebhookLog{
		ID: logID, MerchantID: merchantID, Status: domain.WebhookStatusPending,
		Attempts: domain.MaxWebhookAttempts - 1, Payload: envelope,
	}, nil)
	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, WebhookURL: &srv.URL, WebhookSecret: "whsec_test",
	}, nil)
	f.logs.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.WebhookLog) error {
			assert.Equal(t, domain.WebhookStatusFailed, l.Status)
			assert.Equal(t, domain.MaxWebhookAttempts, l.Attempts)
			assert.Nil(t, l.NextRetryAt)
			return nil
		})
	// No EnqueueWebhook expectation: the fifth failure is terminal.

	err := f.worker.ProcessTask(context.Background(),
		webhookTask(t, ports.WebhookJob{LogID: logID, MerchantID: merchantID, Payload: envelope}))
	require.NoError(t, err)
}

func TestWebhookWorkerTransportError(t *testing.T) {
	f := newWebhookWorkerFixture(t)
	envelope := []byte(`{"event":"test.webhook","timestamp":1,"data":{}}`)

	merchantID := uuid.New()
	logID := uuid.New()
	deadURL := "http://127.0.0.1:1/hook"

	f.logs.EXPECT().GetByID(gomock.Any(), logID).Return(&domain.WebhookLog{
		ID: logID, MerchantID: merchantID, Status: domain.WebhookStatusPending, Payload: envelope,
	}, nil)
	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, WebhookURL: &deadURL, WebhookSecret: "whsec_test",
	}, nil)
	f.logs.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.WebhookLog) error {
			require.NotNil(t, l.ResponseCode)
			assert.Equal(t, 0, *l.ResponseCode, "transport errors record code 0")
			assert.Equal(t, domain.WebhookStatusPending, l.Status)
			return nil
		})
	f.queue.EXPECT().EnqueueWebhook(gomock.Any(), gomock.Any(), 5*time.Second).Return(nil)

	err := f.worker.ProcessTask(context.Background(),
		webhookTask(t, ports.WebhookJob{LogID: logID, MerchantID: merchantID, Payload: envelope}))
	require.NoError(t, err)
}

func TestWebhookWorkerSkipsDeliveredLog(t *testing.T) {
	f := newWebhookWorkerFixture(t)
	logID := uuid.New()

	f.logs.EXPECT().GetByID(gomock.Any(), logID).Return(&domain.WebhookLog{
		ID: logID, Status: domain.WebhookStatusSuccess,
	}, nil)

	err := f.worker.ProcessTask(context.Background(),
		webhookTask(t, ports.WebhookJob{LogID: logID, MerchantID: uuid.New(), Payload: []byte(`{}`)}))
	require.NoError(t, err)
}

func TestWebhookWorkerNoURLIsNoop(t *testing.T) {
	f := newWebhookWorkerFixture(t)
	merchantID := uuid.New()
	logID := uuid.New()

	f.logs.EXPECT().GetByID(gomock.Any(), logID).Return(&domain.WebhookLog{
		ID: logID, MerchantID: merchantID, Status: domain.WebhookStatusPending,
	}, nil)
	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{ID: merchantID}, nil)
	// No Update: the log is untouched.

	err := f.worker.ProcessTask(context.Background(),
		webhookTask(t, ports.WebhookJob{LogID: logID, MerchantID: merchantID, Payload: []byte(`{}`)}))
	require.NoError(t, err)
}

func TestWebhookWorkerTruncatesResponseBody(t *testing.T) {
	f := newWebhookWorkerFixture(t)
	envelope := []byte(`{"event":"test.webhook","timestamp":1,"data":{}}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer srv.Close()

	merchantID := uuid.New()
	logID := uuid.New()

	f.logs.EXPECT().GetByID(gomock.Any(), logID).Return(&domain.WebhookLog{
		ID: logID, MerchantID: merchantID, Status: domain.WebhookStatusPending, Payload: envelope,
	}, nil)
	f.merchants.EXPECT().GetByID(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, WebhookURL: &srv.URL, WebhookSecret: "whsec_test",
	}, nil)
	f.logs.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.WebhookLog) error {
			require.NotNil(t, l.ResponseBody)
			assert.Len(t, *l.ResponseBody, domain.ResponseBodyLimit)
			return nil
		})

	err := f.worker.ProcessTask(context.Background(),
		webhookTask(t, ports.WebhookJob{LogID: logID, MerchantID: merchantID, Payload: envelope}))
	require.NoError(t, err)
}
