package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("PORT", "")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.terrepro.fr/")
	t.Setenv("ENVIRONMENT", "Development")
	t.Setenv("SESSION_DURATION", "12h")
	t.Setenv("API_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, "https://api.terrepro.fr", cfg.APIBaseURL)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 12*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terrepro.yaml")
	content := `port: "9000"
api_base_url: http://api.local:8000
api_timeout: 5s
mailgun_domain: mg.terrepro.fr
mailgun_api_key: key-123
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PORT", "9100")
	t.Setenv("API_BASE_URL", "")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "http://api.local:8000", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.True(t, cfg.MailgunEnabled())
	assert.Equal(t, ":9100", cfg.HTTPAddr())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
