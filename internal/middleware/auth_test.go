package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = AuthConfig{Secret: []byte("middleware-secret"), Issuer: "mapsdb"}

func TestParseTokenRoundTrip(t *testing.T) {
	raw, err := IssueToken(testAuth, "user-1", time.Minute)
	require.NoError(t, err)

	claims, err := parseToken(testAuth, raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.subject())
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := IssueToken(testAuth, "user-1", -time.Minute)
	require.NoError(t, err)

	wrongIssuer, err := IssueToken(AuthConfig{Secret: testAuth.Secret, Issuer: "elsewhere"}, "user-1", time.Minute)
	require.NoError(t, err)

	wrongSecret, err := IssueToken(AuthConfig{Secret: []byte("other"), Issuer: testAuth.Issuer}, "user-1", time.Minute)
	require.NoError(t, err)

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:    "user-1",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testAuth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(testAuth.Secret)
	require.NoError(t, err)

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testAuth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(testAuth.Secret)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"wrong secret": wrongSecret,
		"refresh":      refresh,
		"no subject":   anonymous,
		"garbage":      "abc.def.ghi",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseToken(testAuth, raw)
			assert.Error(t, err)
		})
	}
}
