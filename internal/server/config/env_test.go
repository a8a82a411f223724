package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysSetVariables(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("MAIL_PROVIDER", "resend")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, nil))

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, MailProviderResend, cfg.MailProvider)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
}

func TestParseEnv_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(path, []byte("S3_BUCKET=from-dotenv\n"), 0o600))
	t.Setenv("S3_BUCKET", "")
	require.NoError(t, os.Unsetenv("S3_BUCKET"))

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, []string{"-env", path}))

	assert.Equal(t, "from-dotenv", cfg.S3Bucket)
}

func TestParseEnv_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := &Config{}
	assert.Error(t, parseEnv(cfg, []string{"-env", "/does/not/exist.env"}))
}
