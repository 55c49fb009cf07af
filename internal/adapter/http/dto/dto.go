// Package dto defines the HTTP request shapes. Response bodies come from
// the domain entities' own JSON tags.
package dto

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	Amount   int64   `json:"amount" binding:"required"`
	Currency string  `json:"currency"`
	Receipt  *string `json:"receipt"`
}

// CreatePaymentRequest is the body of POST /api/v1/payments. Card fields
// are validated in the service and never persisted beyond last-4.
type CreatePaymentRequest struct {
	OrderID    string `json:"order_id" binding:"required"`
	Method     string `json:"method" binding:"required"`
	VPA        string `json:"vpa"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
}

// CapturePaymentRequest is the body of POST /api/v1/payments/:id/capture.
// The amount is accepted but ignored; capture covers the full payment.
type CapturePaymentRequest struct {
	Amount int64 `json:"amount"`
}

// CreateRefundRequest is the body of POST /api/v1/payments/:id/refunds.
type CreateRefundRequest struct {
	Amount int64   `json:"amount" binding:"required"`
	Reason *string `json:"reason"`
}

// UpdateWebhookRequest is the body of PUT /api/v1/merchants/webhook.
type UpdateWebhookRequest struct {
	WebhookURL string `json:"webhook_url" binding:"required"`
}

// MerchantProfileResponse is the authenticated merchant's own view of the
// account. It carries the webhook signing secret, which the Merchant JSON
// shape deliberately hides everywhere else.
type MerchantProfileResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	APIKey        string  `json:"api_key"`
	WebhookURL    *string `json:"webhook_url,omitempty"`
	WebhookSecret string  `json:"webhook_secret"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}
