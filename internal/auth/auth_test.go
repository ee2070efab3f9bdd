// internal/auth/auth_test.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	hash := HashPassword("s3cret", salt)
	assert.Len(t, hash, hashKeySize*2) // hex-encoded

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, hash, HashPassword("s3cret", salt))
	})

	t.Run("SaltChangesHash", func(t *testing.T) {
		other, err := NewSalt()
		require.NoError(t, err)
		assert.NotEqual(t, hash, HashPassword("s3cret", other))
	})

	t.Run("IsNotASingleDigestPass", func(t *testing.T) {
		plain := sha256.Sum256([]byte(salt + ":" + "s3cret"))
		assert.NotEqual(t, hex.EncodeToString(plain[:]), hash)
	})
}

func TestVerifyPassword(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	hash := HashPassword("s3cret", salt)

	assert.True(t, VerifyPassword("s3cret", salt, hash))
	assert.False(t, VerifyPassword("wrong", salt, hash))
	assert.False(t, VerifyPassword("s3cret", salt, "deadbeef"))
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	p := Principal{UserID: 7, IsAdmin: true}
	got, ok := FromContext(WithPrincipal(ctx, p))
	assert.True(t, ok)
	assert.Equal(t, p, got)
}
