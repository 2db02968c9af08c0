package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readupapp/readup-server/internal/auth"
	"github.com/readupapp/readup-server/internal/store/sqlite"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--data-path", dir, "--env-file", filepath.Join(dir, "missing.env")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAdminCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "user", "create", "--email", "reader@example.com", "--name", "Reader")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user user-")

	_, err = run(t, dir, "user", "create", "--email", "reader@example.com")
	require.Error(t, err)

	st, err := sqlite.Open(filepath.Join(dir, "readup.db"), nil)
	require.NoError(t, err)
	user, err := st.GetUserByEmail(context.Background(), "reader@example.com")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err = run(t, dir, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, user.ID)

	_, err = run(t, dir, "book", "add", "--title", "Diary", "--owner", user.ID, "--private")
	require.NoError(t, err)
	_, err = run(t, dir, "book", "add", "--title", "Orphan", "--private", "--owner", "")
	require.Error(t, err)

	out, err = run(t, dir, "book", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Diary")
	assert.NotContains(t, out, "Orphan")

	_, err = run(t, dir, "token", "issue")
	require.Error(t, err)

	out, err = run(t, dir, "token", "issue", "--email", "reader@example.com")
	require.NoError(t, err)

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)
	claims, err := tokens.VerifyAccessToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	out, err = run(t, dir, "stats", "--user", user.ID)
	require.NoError(t, err)
	assert.Contains(t, out, user.ID)
}
