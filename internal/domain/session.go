// internal/domain/session.go
package domain

import "time"

// Session is an issued bearer token. Tokens are opaque random values
// resolved server-side; nothing is encoded in them.
type Session struct {
	Token     string    `db:"token" json:"token"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewSession creates a session for the user expiring at expiresAt.
func NewSession(token string, userID int64, expiresAt time.Time) *Session {
	return &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}
