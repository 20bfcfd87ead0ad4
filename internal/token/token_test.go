package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestInspect(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{
		"sub": "user@example.com",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})

	info, err := Inspect(raw)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", info.Subject)
	assert.Equal(t, now.Unix(), info.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), info.ExpiresAt.Unix())
}

func TestInspect_Garbage(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.Error(t, err)
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	raw := signedToken(t, jwt.MapClaims{"exp": now.Add(30 * time.Minute).Unix()})

	info, err := Inspect(raw)
	require.NoError(t, err)

	assert.False(t, info.Expired(now))
	assert.True(t, info.Expired(now.Add(time.Hour)))
	assert.InDelta(t, (30 * time.Minute).Seconds(), info.TimeLeft(now).Seconds(), 1)
	assert.Zero(t, info.TimeLeft(now.Add(time.Hour)))
}

func TestExpiry_NoExpClaim(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "u"})

	info, err := Inspect(raw)
	require.NoError(t, err)
	assert.False(t, info.Expired(time.Now()))
	assert.Zero(t, info.TimeLeft(time.Now()))
}
