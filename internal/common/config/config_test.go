package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "facet.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_FACET_TOKEN", "123:abc")

	path := writeConfig(t, `
server:
  port: 9000
telegram:
  token: "${TEST_FACET_TOKEN}"
session:
  type: "redis"
  timeout: "30m"
rate_limit:
  limit: 3
  window: "5s"
`)

	cfg, cfgPath, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, path, cfgPath)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "redis", cfg.Session.Type)
	assert.Equal(t, 30*time.Minute, cfg.Session.Timeout.Duration())
	assert.Equal(t, 3, cfg.RateLimit.Limit)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.Window.Duration())
}

func TestDuration_BareSecondsAndStrings(t *testing.T) {
	// a bare number reads as seconds, matching SESSION_TIMEOUT and friends
	path := writeConfig(t, "session:\n  timeout: 3600\nrate_limit:\n  window: \"10s\"\n")
	cfg, _, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Session.Timeout.Duration())
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window.Duration())

	path = writeConfig(t, "session:\n  timeout: \"ten minutes\"\n")
	_, _, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	assert.Equal(t, 10000, cfg.Server.Port)
	assert.Equal(t, "disk", cfg.Blob.Type)
	assert.Equal(t, "data", cfg.Blob.Disk.BaseDir)
	assert.Equal(t, "memory", cfg.Session.Type)
	assert.Equal(t, 3600*time.Second, cfg.Session.Timeout.Duration())
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window.Duration())
	assert.Equal(t, "Asia/Kolkata", cfg.TimeZone)
	assert.Equal(t, "facet", cfg.Metrics.Namespace)

	// explicit values survive
	cfg.Server.Port = 8080
	cfg.SetDefaults()
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("TEST_FACET_SET", "from-env")
	os.Unsetenv("TEST_FACET_UNSET")

	in := []byte("a: ${TEST_FACET_SET}\nb: ${TEST_FACET_UNSET:fallback}\nc: ${TEST_FACET_UNSET}\nd: plain")
	out := string(resolveEnv(in))
	assert.Equal(t, "a: from-env\nb: fallback\nc: \nd: plain", out)

	// a set variable beats its default
	t.Setenv("TEST_FACET_BOTH", "real")
	out = string(resolveEnv([]byte("v: ${TEST_FACET_BOTH:default}")))
	assert.Equal(t, "v: real", out)
}
