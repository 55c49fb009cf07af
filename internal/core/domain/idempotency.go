package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyTTL is how long a create response stays bound to its key.
const IdempotencyTTL = 24 * time.Hour

// IdempotencyRecord caches the exact response body of a successful create
// so retried client requests observe at-most-once effects. Identity is the
// composite (key, merchant_id); the unique primary key, not an advisory
// lock, is the source of correctness under concurrent inserts.
type IdempotencyRecord struct {
	Key          string
	MerchantID   uuid.UUID
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the record should be treated as absent.
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
