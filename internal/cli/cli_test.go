package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranphatthinh/gramctl/internal/auth"
	"github.com/tranphatthinh/gramctl/internal/config"
)

func TestHashPassword(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	HashPasswordCmd.SetIn(strings.NewReader("s3cret\n"))
	HashPasswordCmd.SetOut(stdout)
	HashPasswordCmd.SetErr(stderr)
	t.Cleanup(func() {
		HashPasswordCmd.SetIn(nil)
		HashPasswordCmd.SetOut(nil)
		HashPasswordCmd.SetErr(nil)
	})

	require.NoError(t, runHashPassword(HashPasswordCmd, nil))

	hash := strings.TrimSpace(stdout.String())
	assert.True(t, auth.CheckPassword(hash, "s3cret"))
	assert.Contains(t, stderr.String(), "users.yaml")
}

func TestReadPassword_Empty(t *testing.T) {
	_, err := readPassword(strings.NewReader("\n"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GRAM_STUB_AUTH_JWT_SECRET=from-dotenv\nGRAM_STUB_SERVER_PORT=7001\n"), 0600))

	t.Setenv("GRAM_STUB_SERVER_PORT", "7002")
	t.Setenv("GRAM_STUB_AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("GRAM_STUB_AUTH_JWT_SECRET"))

	require.NoError(t, loadEnvFile(path))

	cfg, err := loadConfig(config.NewViper())
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
	assert.Equal(t, 7002, cfg.Server.Port, "environment wins over .env")

	assert.NoError(t, loadEnvFile(filepath.Join(dir, "missing.env")))
	assert.NoError(t, loadEnvFile(""))
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("GRAM_STUB_AUTH_JWT_SECRET", "x")
	t.Setenv("GRAM_STUB_STORAGE_URI", "s3://bucket")

	_, err := loadConfig(config.NewViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
