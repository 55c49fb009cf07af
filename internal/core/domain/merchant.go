package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant represents a registered merchant account. Merchants are created
// administratively; the API authenticates them by api_key + api_secret.
type Merchant struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	APIKey        string    `json:"api_key"`
	APISecretHash string    `json:"-"` // Argon2id, never exposed
	WebhookURL    *string   `json:"webhook_url,omitempty"`
	WebhookSecret string    `json:"-"` // whsec_..., exposed only via profile
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasWebhook reports whether event notifications should be delivered.
func (m *Merchant) HasWebhook() bool {
	return m.WebhookURL != nil && *m.WebhookURL != ""
}
