package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, h.Verify("s3cret!", hash))
	assert.False(t, h.Verify("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "ada@example.com")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)
	expired := NewTokenIssuer("test-secret", -time.Minute)

	foreign, err := other.Issue(1, "a@example.com")
	require.NoError(t, err)
	stale, err := expired.Issue(1, "a@example.com")
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
