package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_DATABASE", filepath.Join(t.TempDir(), "mapsdb.db"))
	t.Setenv("DB_CONNECTION_LIMIT", "1")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), "mapsctl %s: %s", strings.Join(args, " "), errOut.String())
	return out.String()
}

func TestSeedColorsIsRerunnable(t *testing.T) {
	setEnv(t)

	var first map[string]int
	require.NoError(t, json.Unmarshal([]byte(run(t, "seed-colors", "--json")), &first))
	assert.Equal(t, 33, first["color_keys_created"])
	assert.Equal(t, 24, first["themes_created"])

	var second map[string]int
	require.NoError(t, json.Unmarshal([]byte(run(t, "seed-colors", "-j")), &second))
	assert.Equal(t, 0, second["color_keys_created"])
	assert.Equal(t, 33, second["color_keys_skipped"])
	assert.Equal(t, 24, second["themes_skipped"])
}

func TestCreateAdminAndIssueToken(t *testing.T) {
	setEnv(t)

	out := run(t, "create-admin", "--username", "root", "--email", "root@example.com", "--password", "long-enough-secret")
	assert.Contains(t, out, "Created staff users: [root]")

	out = run(t, "create-admin", "--username", "other", "--email", "other@example.com", "--password", "long-enough-secret")
	assert.Contains(t, out, "Existing staff users: [root]")

	var issued map[string]string
	require.NoError(t, json.Unmarshal([]byte(run(t, "issue-token", "--username", "root", "--json")), &issued))
	assert.NotEmpty(t, issued["user_id"])
	assert.Equal(t, 3, len(strings.Split(issued["token"], ".")))
}

func TestIssueTokenUnknownUser(t *testing.T) {
	setEnv(t)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"issue-token", "--username", "nobody"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no user named "nobody"`)
}

func TestSyncProjectUsersOnEmptyDatabase(t *testing.T) {
	setEnv(t)

	out := run(t, "migrate")
	assert.Contains(t, out, "Schema is up to date")

	out = run(t, "sync-project-users")
	assert.Contains(t, out, "Synchronized 0 projects, 0 memberships added")
}
