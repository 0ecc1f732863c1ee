package utils

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugarstop/sugarstop/config"
)

func TestMain(m *testing.M) {
	// config.Load refuses to start without a signing secret.
	os.Setenv("JWT_SECRET", "unit-test-signing-secret")
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42, "lena", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "lena", claims.Username)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(42, "lena", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err, "expired token must not parse")
}

func TestParseToken_Tampered(t *testing.T) {
	token, err := GenerateToken(42, "lena", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)
}

func TestParseToken_RejectsForeignIssuer(t *testing.T) {
	claims := Claims{
		UserID:   42,
		Username: "lena",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.Get().JWTSecret))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err)
}

func TestParseToken_RejectsWrongSigningMethod(t *testing.T) {
	claims := Claims{
		UserID:   42,
		Username: "lena",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	// Same secret, different HMAC variant.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).
		SignedString([]byte(config.Get().JWTSecret))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err)
}

func TestParseToken_RequiresExpiry(t *testing.T) {
	claims := Claims{
		UserID:   42,
		Username: "lena",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.Get().JWTSecret))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err, "a token that never expires must not parse")
}
