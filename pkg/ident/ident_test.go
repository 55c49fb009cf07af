package ident

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var idPattern = regexp.MustCompile(`^[a-z_]+_[A-Za-z0-9]+$`)

func TestMint_Shapes(t *testing.T) {
	cases := []struct {
		name   string
		gen    func() string
		prefix string
		total  int
	}{
		{"order", NewOrderID, "order_", len("order_") + 16},
		{"payment", NewPaymentID, "pay_", len("pay_") + 16},
		{"refund", NewRefundID, "rfnd_", len("rfnd_") + 16},
		{"webhook secret", NewWebhookSecret, "whsec_", len("whsec_") + 24},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := tc.gen()
			assert.Len(t, id, tc.total)
			assert.Regexp(t, idPattern, id)
			assert.Equal(t, tc.prefix, id[:len(tc.prefix)])
		})
	}
}

func TestMint_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewPaymentID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
