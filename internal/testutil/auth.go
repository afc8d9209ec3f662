package testutil

import (
	"testing"
	"time"

	"github.com/localnerve/mapsdb/internal/middleware"
	"github.com/stretchr/testify/require"
)

// TestAuth is the token configuration shared by the HTTP tests
var TestAuth = middleware.AuthConfig{
	Secret: []byte("test-secret-do-not-use"),
	Issuer: "mapsdb-test",
}

// Token mints a valid access token for userID
func Token(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.IssueToken(TestAuth, userID, time.Hour)
	require.NoError(t, err, "issue token")
	return token
}
