package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/internal/core/ports/mocks"
)

func TestSweeperReenqueuesStuckRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	payments := mocks.NewMockPaymentRepository(ctrl)
	refunds := mocks.NewMockRefundRepository(ctrl)
	logs := mocks.NewMockWebhookLogRepository(ctrl)
	q := mocks.NewMockJobQueue(ctrl)
	s := NewSweeper(payments, refunds, logs, q, zerolog.Nop())

	logID := uuid.New()
	merchantID := uuid.New()
	payload := json.RawMessage(`{"event":"payment.success","timestamp":1,"data":{}}`)

	payments.EXPECT().ListStuckPending(gomock.Any(), gomock.Any(), sweepBatchSize).
		Return([]domain.Payment{{ID: "pay_stuck"}}, nil)
	q.EXPECT().EnqueuePayment(gomock.Any(), ports.PaymentJob{PaymentID: "pay_stuck"}).Return(nil)

	refunds.EXPECT().ListStuckPending(gomock.Any(), gomock.Any(), sweepBatchSize).
		Return([]domain.Refund{{ID: "rfnd_stuck"}}, nil)
	q.EXPECT().EnqueueRefund(gomock.Any(), ports.RefundJob{RefundID: "rfnd_stuck"}).Return(nil)

	logs.EXPECT().ListStuckPending(gomock.Any(), gomock.Any(), sweepBatchSize).
		Return([]domain.WebhookLog{{ID: logID, MerchantID: merchantID, Payload: payload}}, nil)
	q.EXPECT().EnqueueWebhook(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job ports.WebhookJob, _ any) error {
			assert.Equal(t, logID, job.LogID)
			assert.Equal(t, []byte(payload), job.Payload)
			return nil
		})

	s.Sweep(context.Background())
}

func TestSweeperNothingStuck(t *testing.T) {
	ctrl := gomock.NewController(t)
	payments := mocks.NewMockPaymentRepository(ctrl)
	refunds := mocks.NewMockRefundRepository(ctrl)
	logs := mocks.NewMockWebhookLogRepository(ctrl)
	q := mocks.NewMockJobQueue(ctrl)
	s := NewSweeper(payments, refunds, logs, q, zerolog.Nop())

	payments.EXPECT().ListStuckPending(gomock.Any(), gomock.Any(), sweepBatchSize).Return(nil, nil)
	refunds.EXPECT().ListStuckPending(gomock.Any(), gomock.Any(), sweepBatchSize).Return(nil, nil)
	logs.EXPECT().ListStuckPending(gomock.Any(), gomock.Any(), sweepBatchSize).Return(nil, nil)

	s.Sweep(context.Background())
}

func TestWebhookBackoffSchedules(t *testing.T) {
	prod := WebhookBackoff(false)
	test := WebhookBackoff(true)

	assert.Len(t, prod, domain.MaxWebhookAttempts)
	assert.Len(t, test, domain.MaxWebhookAttempts)
	assert.Zero(t, prod[0], "first attempt fires immediately")
	assert.Zero(t, test[0])
	for i := 1; i < len(prod); i++ {
		assert.Greater(t, prod[i], prod[i-1], "production backoff grows")
		assert.Greater(t, test[i], test[i-1], "test backoff grows")
	}
}
