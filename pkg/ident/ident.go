// Package ident mints the prefixed opaque identifiers used across the API
// surface (order_..., pay_..., rfnd_...) and merchant webhook secrets
// (whsec_...). Bodies are sampled uniformly from [A-Za-z0-9] with
// crypto/rand; collisions are treated as astronomically improbable and
// surface, if ever, as unique-constraint violations on insert.
package ident

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	PrefixOrder         = "order_"
	PrefixPayment       = "pay_"
	PrefixRefund        = "rfnd_"
	PrefixWebhookSecret = "whsec_"
	PrefixAPIKey        = "key_live_"
	PrefixAPISecret     = "secret_live_"

	bodyLen       = 16
	secretBodyLen = 24
)

// NewOrderID returns a fresh order identifier.
func NewOrderID() string { return mint(PrefixOrder, bodyLen) }

// NewPaymentID returns a fresh payment identifier.
func NewPaymentID() string { return mint(PrefixPayment, bodyLen) }

// NewRefundID returns a fresh refund identifier.
func NewRefundID() string { return mint(PrefixRefund, bodyLen) }

// NewWebhookSecret returns a fresh webhook signing secret.
func NewWebhookSecret() string { return mint(PrefixWebhookSecret, secretBodyLen) }

// NewAPIKey returns a fresh merchant API key.
func NewAPIKey() string { return mint(PrefixAPIKey, bodyLen) }

// NewAPISecret returns a fresh merchant API secret. Only its Argon2id hash
// is stored; the plaintext is shown once at creation.
func NewAPISecret() string { return mint(PrefixAPISecret, secretBodyLen) }

func mint(prefix string, n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("ident: reading random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return prefix + string(buf)
}
