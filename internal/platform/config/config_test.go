package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"santacall/internal/platform/config"
)

func TestNewReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SANTACALL_URL", "")
	t.Setenv("SANTACALL_ANON_KEY", "")
	body := "backend_url: https://demo.example.co/\nanon_key: anon\nlog_level: debug\nhttp_timeout: 3s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))

	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.Equal(t, "https://demo.example.co", cfg.BackendURL)
	require.Equal(t, "anon", cfg.AnonKey)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, filepath.Join(dir, "santacall.db"), cfg.DBPath)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend_url: https://file.example\nanon_key: file\n"), 0o644))
	t.Setenv("SANTACALL_URL", "http://localhost:54321")
	t.Setenv("SANTACALL_ANON_KEY", "env-key")
	t.Setenv("SANTACALL_HTTP_TIMEOUT", "not-a-duration")

	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:54321", cfg.BackendURL)
	require.Equal(t, "env-key", cfg.AnonKey)
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func TestDotEnvIsLoaded(t *testing.T) {
	dir := t.TempDir()
	// godotenv never overrides a variable that is already present, even empty.
	t.Setenv("SANTACALL_URL", "")
	t.Setenv("SANTACALL_ANON_KEY", "")
	require.NoError(t, os.Unsetenv("SANTACALL_URL"))
	require.NoError(t, os.Unsetenv("SANTACALL_ANON_KEY"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SANTACALL_URL=https://dotenv.example\nSANTACALL_ANON_KEY=dot\n"), 0o644))

	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.Equal(t, "https://dotenv.example", cfg.BackendURL)
	require.Equal(t, "dot", cfg.AnonKey)
}

func TestValidationFailures(t *testing.T) {
	t.Setenv("SANTACALL_URL", "")
	t.Setenv("SANTACALL_ANON_KEY", "")
	_, err := config.New("")
	require.Error(t, err)

	_, err = config.New(t.TempDir())
	require.ErrorContains(t, err, "backend_url")

	err = config.Config{BackendURL: "ftp://x", AnonKey: "k", HTTPTimeout: time.Second}.Validate()
	require.ErrorContains(t, err, "http(s)")
}
