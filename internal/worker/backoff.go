package worker

import "time"

// Webhook delivery backoff schedules, indexed by the attempt number about
// to be tried (attempt 1 fires immediately on fan-out). The ceiling in
// domain.MaxWebhookAttempts keeps indices in range.
var (
	webhookBackoff = []time.Duration{
		0,
		60 * time.Second,
		5 * time.Minute,
		30 * time.Minute,
		2 * time.Hour,
	}
	webhookBackoffTest = []time.Duration{
		0,
		5 * time.Second,
		10 * time.Second,
		15 * time.Second,
		20 * time.Second,
	}
)

// WebhookBackoff selects the delivery retry schedule.
func WebhookBackoff(test bool) []time.Duration {
	if test {
		return webhookBackoffTest
	}
	return webhookBackoff
}
