package ports

import (
	"context"

	"github.com/google/uuid"

	"paygate/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/services_mock.go -package=mocks

// CreateOrderInput carries validated order creation parameters.
type CreateOrderInput struct {
	MerchantID uuid.UUID
	Amount     int64
	Currency   string
	Receipt    *string
}

// OrderService manages orders.
type OrderService interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Order, error)
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Order, int64, error)
}

// CreatePaymentInput carries validated payment creation parameters. Card
// fields are consumed during creation and never stored beyond last-4.
type CreatePaymentInput struct {
	MerchantID     uuid.UUID
	OrderID        string
	Method         domain.PaymentMethod
	VPA            string
	CardNumber     string
	CardExpiry     string
	CardCVV        string
	IdempotencyKey string
}

// PaymentService manages payments. Create returns both the payment and the
// serialized response body so idempotent replays are byte-identical.
type PaymentService interface {
	Create(ctx context.Context, in CreatePaymentInput) (*domain.Payment, []byte, error)
	Get(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Payment, error)
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Payment, int64, error)
	Capture(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Payment, error)
}

// CreateRefundInput carries validated refund creation parameters.
type CreateRefundInput struct {
	MerchantID uuid.UUID
	PaymentID  string
	Amount     int64
	Reason     *string
}

// RefundService manages refunds.
type RefundService interface {
	Create(ctx context.Context, in CreateRefundInput) (*domain.Refund, error)
	Get(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Refund, error)
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Refund, int64, error)
	ListByPayment(ctx context.Context, merchantID uuid.UUID, paymentID string, limit, offset int) ([]domain.Refund, int64, error)
}

// MerchantService manages the authenticated merchant's own account.
type MerchantService interface {
	Profile(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
	UpdateWebhookURL(ctx context.Context, merchantID uuid.UUID, url string) (*domain.Merchant, error)
	RegenerateWebhookSecret(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error)
	SendTestWebhook(ctx context.Context, merchantID uuid.UUID) (*domain.WebhookLog, error)
}

// WebhookService exposes delivery logs and manual redelivery.
type WebhookService interface {
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.WebhookLog, int64, error)
	Get(ctx context.Context, merchantID, id uuid.UUID) (*domain.WebhookLog, error)
	// Retry resets an exhausted log and schedules an immediate attempt.
	Retry(ctx context.Context, merchantID, id uuid.UUID) (*domain.WebhookLog, error)
	// Dispatch fans an event out to the merchant's endpoint: creates the
	// log, freezes the envelope and enqueues the first attempt.
	Dispatch(ctx context.Context, merchantID uuid.UUID, event string, data any) (*domain.WebhookLog, error)
}

// SignatureService signs and verifies webhook payloads.
type SignatureService interface {
	Sign(payload []byte, secret string) string
	Verify(payload []byte, signature, secret string) bool
}

// HashService hashes and verifies merchant API secrets.
type HashService interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}
