package models

import "time"

// RefreshToken is a server-side refresh session. Only the SHA-256 hash of the
// opaque cookie value is stored.
type RefreshToken struct {
	UserID    string
	TokenHash string
	Expires   time.Time
	CreatedAt time.Time
}
