package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.CreateToken("firebase_uid_42")
	require.NoError(t, err)

	userID, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "firebase_uid_42", userID)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	token, err := NewJWTVerifier("a").CreateToken("u1")
	require.NoError(t, err)

	_, err = NewJWTVerifier("b").Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_Expired(t *testing.T) {
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewJWTVerifier("s").Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestJWTVerifier_SubjectFallback(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-only",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	userID, err := NewJWTVerifier("s").Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sub-only", userID)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	_, err := NewJWTVerifier("s").Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
