package models

import "time"

// RefreshToken is a persisted refresh token row. A row exists for every
// token that is still good for exactly one rotation; rotation deletes it.
type RefreshToken struct {
	ID        int64
	Token     string
	UserEmail string
	ExpiresAt time.Time
}
