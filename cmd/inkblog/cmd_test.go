package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/inkblog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "inkblog dev"), out)
}

func TestServeRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	_, err := execute(t, "serve", "--database-url", filepath.Join(t.TempDir(), "blog.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestPromoteCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blog.db")
	store, err := inkblog.NewStore(dbPath)
	require.NoError(t, err)
	u := inkblog.User{Email: "ada@example.com", Password: "x", Name: "Ada"}
	require.NoError(t, store.CreateUser(context.Background(), &u))
	require.NoError(t, store.Close())

	out, err := execute(t, "promote", "--database-url", dbPath, "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada is now an admin.")

	store, err = inkblog.NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
}

func TestPromoteUnknownEmail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "blog.db")
	_, err := execute(t, "promote", "--database-url", dbPath, "nobody@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user registered")
}

func TestSiteConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITE_NAME", "Ink")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("COOKIE_SECURE", "true")

	v := viper.New()
	newServeCmd(v)
	require.NoError(t, loadConfig(v, ""))

	cfg := siteConfig(v)
	assert.Equal(t, "Ink", cfg.Name)
	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
}

func TestConfigFileFillsUnsetValues(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "inkblog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site-name: From File\naddr: \":9000\"\n"), 0o644))

	v := viper.New()
	newServeCmd(v)
	require.NoError(t, loadConfig(v, path))

	cfg := siteConfig(v)
	assert.Equal(t, "From File", cfg.Name)
	assert.Equal(t, ":9000", cfg.Addr)
}
