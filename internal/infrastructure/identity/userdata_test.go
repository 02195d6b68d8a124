package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signUserData(t *testing.T, claims UserData, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseUserData(t *testing.T) {
	blob := signUserData(t, UserData{
		UserID: "user-123",
		Email:  "user@example.com",
		Admin:  true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	data, err := ParseUserData(blob, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", data.UserID)
	assert.Equal(t, "user@example.com", data.Email)
	assert.True(t, data.Admin)
}

func TestParseUserDataFallsBackToSubject(t *testing.T) {
	blob := signUserData(t, UserData{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-9"},
	}, testSecret)

	data, err := ParseUserData(blob, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "subject-9", data.UserID)
}

func TestParseUserDataRejectsBadSignature(t *testing.T) {
	blob := signUserData(t, UserData{UserID: "user-123"}, "other-secret")

	_, err := ParseUserData(blob, testSecret)
	require.Error(t, err)
}

func TestParseUserDataRejectsExpired(t *testing.T) {
	blob := signUserData(t, UserData{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}, testSecret)

	_, err := ParseUserData(blob, testSecret)
	require.Error(t, err)
}
