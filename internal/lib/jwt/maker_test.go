package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func TestMaker_GenerateAndParse(t *testing.T) {
	maker := NewMaker(testSecret, 15*time.Minute)

	tests := []struct {
		name     string
		userID   string
		username string
	}{
		{name: "regular user", userID: "7d4a5c9e-0f0e-4a44-9c55-3b6a0f1c2d11", username: "alice"},
		{name: "numeric username", userID: "1b8c2d0e-7a51-4a0f-8a7a-5d0c3e2f9a22", username: "user123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.username)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID())
			assert.Equal(t, tt.username, claims.Username)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
		})
	}
}

func TestMaker_ParseToken_Invalid(t *testing.T) {
	maker := NewMaker(testSecret, time.Minute)
	valid, err := maker.GenerateToken("id", "alice")
	require.NoError(t, err)

	expiredMaker := NewMaker(testSecret, time.Minute)
	expiredMaker.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredMaker.GenerateToken("id", "alice")
	require.NoError(t, err)

	otherKey, err := NewMaker("another-secret", time.Minute).GenerateToken("id", "alice")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
		{name: "expired", token: expired},
		{name: "wrong key", token: otherKey},
		{name: "alg none", token: none},
		{name: "tampered", token: valid[:len(valid)-2] + "xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := maker.ParseToken(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
