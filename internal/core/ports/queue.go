package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=queue.go -destination=mocks/queue_mock.go -package=mocks

// PaymentJob asks a worker to settle one pending payment.
type PaymentJob struct {
	PaymentID string `json:"payment_id"`
}

// RefundJob asks a worker to process one pending refund.
type RefundJob struct {
	RefundID string `json:"refund_id"`
}

// WebhookJob asks a worker to attempt one delivery of a logged event. The
// envelope bytes ride in the job so every attempt signs and sends the same
// payload.
type WebhookJob struct {
	LogID      uuid.UUID `json:"log_id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Payload    []byte    `json:"payload"`
}

// QueueCounts is a point-in-time snapshot of one queue's depth.
type QueueCounts struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// JobQueue hands work to the background workers. Enqueue failures surface
// to the caller; already-committed rows are picked up later by the
// reconciliation sweep.
type JobQueue interface {
	EnqueuePayment(ctx context.Context, job PaymentJob) error
	EnqueueRefund(ctx context.Context, job RefundJob) error
	EnqueueWebhook(ctx context.Context, job WebhookJob, delay time.Duration) error
	Counts(ctx context.Context) (map[string]QueueCounts, error)
}
