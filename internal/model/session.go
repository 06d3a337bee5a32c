package model

import "time"

// Session is the authenticated client session: the bearer token the API
// issued plus a snapshot of the signed-in user.
type Session struct {
	Token     string     `json:"token"`
	User      User       `json:"user"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	SavedAt   time.Time  `json:"saved_at"`
}

// Expired reports whether the token's expiry has passed at now. Tokens
// without a known expiry never expire client-side; the API still rejects
// them with 401 when they are no longer valid.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
