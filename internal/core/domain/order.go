package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

// Orders are terminal at creation in this core.
const OrderStatusCreated OrderStatus = "created"

// Order is a merchant's intent to collect a payment. Amounts are
// non-negative integers in the currency's minor unit (paise for INR).
type Order struct {
	ID         string      `json:"id"`
	MerchantID uuid.UUID   `json:"-"`
	Amount     int64       `json:"amount"`
	Currency   string      `json:"currency"`
	Receipt    *string     `json:"receipt,omitempty"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}
