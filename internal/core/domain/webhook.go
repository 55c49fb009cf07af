package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebhookStatus represents the delivery state of a webhook log.
type WebhookStatus string

const (
	WebhookStatusPending WebhookStatus = "pending"
	WebhookStatusSuccess WebhookStatus = "success"
	WebhookStatusFailed  WebhookStatus = "failed"
)

// Webhook event tags.
const (
	EventPaymentSuccess  = "payment.success"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
	EventTestWebhook     = "test.webhook"
)

// MaxWebhookAttempts is the delivery ceiling; a log in failed state always
// carries exactly this many attempts.
const MaxWebhookAttempts = 5

// ResponseBodyLimit bounds the stored upstream response.
const ResponseBodyLimit = 1000

// WebhookLog records the delivery state machine for one event. Payload is
// the exact serialized envelope {event, timestamp, data} that is signed and
// transmitted; it is never re-serialized between attempts.
type WebhookLog struct {
	ID            uuid.UUID       `json:"id"`
	MerchantID    uuid.UUID       `json:"-"`
	Event         string          `json:"event"`
	Payload       json.RawMessage `json:"payload"`
	Status        WebhookStatus   `json:"status"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
	NextRetryAt   *time.Time      `json:"next_retry_at,omitempty"`
	ResponseCode  *int            `json:"response_code,omitempty"`
	ResponseBody  *string         `json:"response_body,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"-"`
}

// Exhausted reports whether the attempt ceiling has been reached.
func (w *WebhookLog) Exhausted() bool {
	return w.Attempts >= MaxWebhookAttempts
}

// WebhookEnvelope is the wire shape POSTed to merchant endpoints. The
// signature covers these exact bytes.
type WebhookEnvelope struct {
	Event     string          `json:"event"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
