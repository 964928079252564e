package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecretKey = "01234567890123456789012345678901"

func TestJWTMaker(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)

	userID := "farmer-42"
	duration := time.Minute

	issuedAt := time.Now()
	expiredAt := issuedAt.Add(duration)

	tokenString, payload, err := maker.CreateToken(userID, duration)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	require.NotNil(t, payload)

	payload, err = maker.VerifyToken(tokenString)
	require.NoError(t, err)
	require.NotNil(t, payload)

	require.Equal(t, userID, payload.Subject)
	require.WithinDuration(t, issuedAt, payload.IssuedAt.Time, time.Second)
	require.WithinDuration(t, expiredAt, payload.ExpiresAt.Time, time.Second)
}

func TestExpiredJWTToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)

	tokenString, payload, err := maker.CreateToken("farmer-42", -time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	require.NotNil(t, payload)

	payload, err = maker.VerifyToken(tokenString)
	require.ErrorIs(t, err, ErrExpiredToken)
	require.Nil(t, payload)
}

func TestInvalidJWTToken(t *testing.T) {
	maker, err := NewJWTMaker(testSecretKey)
	require.NoError(t, err)

	payload, err := maker.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
	require.Nil(t, payload)

	// Token signed with a different key must be rejected.
	otherMaker, err := NewJWTMaker(strings.Repeat("x", 32))
	require.NoError(t, err)

	tokenString, _, err := otherMaker.CreateToken("farmer-42", time.Minute)
	require.NoError(t, err)

	payload, err = maker.VerifyToken(tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.Nil(t, payload)
}

func TestJWTMakerRejectsShortKey(t *testing.T) {
	maker, err := NewJWTMaker("too-short")
	require.Error(t, err)
	require.Nil(t, maker)
}
