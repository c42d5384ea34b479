package domain

import "time"

// Idempotency represents the recorded outcome of a previously processed score
// submission, keyed by (scope, key). Scope identifies the client (user or IP)
// so that two clients reusing the same key never see each other's results.
type Idempotency struct {
	Scope     string    `json:"scope"`
	Key       string    `json:"key"`
	Updated   bool      `json:"updated"`
	Status    int       `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is no longer replayable at now.
func (i Idempotency) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}
