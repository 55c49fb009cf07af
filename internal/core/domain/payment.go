package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod discriminates the tagged method variant.
type PaymentMethod string

const (
	MethodUPI  PaymentMethod = "upi"
	MethodCard PaymentMethod = "card"
)

// CardNetwork is inferred from the PAN prefix at creation; the PAN itself
// is never persisted.
type CardNetwork string

const (
	NetworkVisa       CardNetwork = "visa"
	NetworkMastercard CardNetwork = "mastercard"
	NetworkUnknown    CardNetwork = "unknown"
)

// PaymentStatus represents the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is an attempt to settle an order. The amount is copied from the
// order at creation; only last-4 and network survive of any card details.
type Payment struct {
	ID               string        `json:"id"`
	MerchantID       uuid.UUID     `json:"-"`
	OrderID          string        `json:"order_id"`
	Amount           int64         `json:"amount"`
	Currency         string        `json:"currency"`
	Method           PaymentMethod `json:"method"`
	VPA              *string       `json:"vpa,omitempty"`
	CardLast4        *string       `json:"card_last4,omitempty"`
	CardNetwork      *CardNetwork  `json:"card_network,omitempty"`
	Status           PaymentStatus `json:"status"`
	Captured         bool          `json:"captured"`
	ErrorCode        *string       `json:"error_code,omitempty"`
	ErrorDescription *string       `json:"error_description,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"-"`
}

// IsTerminal returns true once the payment reached success or failed.
// Terminal states are never overwritten.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}

// CanCapture reports whether a capture request is currently legal.
func (p *Payment) CanCapture() bool {
	return p.Status == PaymentStatusSuccess && !p.Captured
}

// CanRefund reports whether refunds may be created against this payment.
func (p *Payment) CanRefund() bool {
	return p.Status == PaymentStatusSuccess
}

// DetectCardNetwork infers the network tag from the PAN prefix.
func DetectCardNetwork(pan string) CardNetwork {
	switch {
	case len(pan) > 0 && pan[0] == '4':
		return NetworkVisa
	case len(pan) > 0 && pan[0] == '5':
		return NetworkMastercard
	default:
		return NetworkUnknown
	}
}
