// internal/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations is the work factor for password hashing.
	pbkdf2Iterations = 100000
	// hashKeySize is the size of the derived hash in bytes.
	hashKeySize = 32
)

// Principal identifies the authenticated caller. It is resolved once by
// the auth middleware and passed explicitly through the request context;
// handlers never look at the raw token.
type Principal struct {
	UserID  int64
	IsAdmin bool
}

type contextKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal attached to the context, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// NewSalt generates a random per-user password salt.
func NewSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives the stored hash for a password and salt using
// PBKDF2-SHA256.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, hashKeySize, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword reports whether password matches the stored hash in
// constant time.
func VerifyPassword(password, salt, storedHash string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
