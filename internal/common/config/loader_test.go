package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: test\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
	assert.Equal(t, 0, cfg.Backend.RequestTimeout)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 7200, cfg.Session.TTL)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTLDuration())
	assert.Equal(t, 20000, cfg.KBRender.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 80, cfg.UI.WordWrap)
	assert.NotNil(t, cfg.Actions)
}

func TestLoadFromFile_Values(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: https://kb.example.com/
  request_timeout: 1500
session:
  store: redis
  ttl: 60
  redis:
    address: cache:6379
    db: 2
actions:
  reindex-kb:
    enabled: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://kb.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(cfg.Backend.RequestTimeout))
	assert.True(t, cfg.Session.UsesRedis())
	assert.Equal(t, time.Minute, cfg.Session.TTLDuration())
	assert.Equal(t, "cache:6379", cfg.Session.Redis.Address)
	assert.Equal(t, 2, cfg.Session.Redis.DB)
	assert.False(t, IsActionEnabled(cfg, "reindex-kb"))
	assert.True(t, IsActionEnabled(cfg, "ask-question"))
	assert.True(t, GetActionConfig(cfg, "ask-question").Enabled)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_KB_BACKEND", "http://expanded:8000")
	path := writeConfig(t, "backend:\n  base_url: ${TEST_KB_BACKEND}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expanded:8000", cfg.Backend.BaseURL)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad url", "backend:\n  base_url: ftp://nope\n", "backend.base_url"},
		{"bad store", "session:\n  store: disk\n", "session.store"},
		{"negative timeout", "backend:\n  request_timeout: -1\n", "request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRedisConfig_StringMasksPassword(t *testing.T) {
	r := RedisConfig{Address: "h:1", Password: "secret", DB: 3}
	assert.NotContains(t, r.String(), "secret")
	assert.Contains(t, r.String(), "h:1/3")
}
