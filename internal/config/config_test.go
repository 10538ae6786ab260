package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"VCWATCH_DB", "VCWATCH_NAMESPACE", "VCWATCH_LOG_LEVEL",
		"VCWATCH_RESET_POLICY", "VCWATCH_METRICS_ADDR", "VCWATCH_FEED_URL", "VCWATCH_CONFIG"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath(), cfg.Store.Path)
	assert.Equal(t, "StatusVCMonitorContext", cfg.Store.Namespace)
	assert.Equal(t, 2000, cfg.Engine.LogCapacity)
	assert.Equal(t, "session", cfg.Engine.ResetPolicy)
	assert.Equal(t, 60, cfg.Notify.ToastPerMinute)
	assert.Equal(t, 4*time.Second, cfg.Notify.ToastTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding)
	assert.Equal(t, "", cfg.Metrics.Addr)
	assert.Equal(t, "", cfg.Feed.URL)
	assert.Equal(t, 10*time.Second, cfg.Feed.HandshakeTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
store:
  path: /tmp/custom.db
engine:
  log_capacity: 50
  reset_policy: never
notify:
  toast_timeout: 2s
feed:
  url: ws://localhost:9000/feed
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.Store.Path)
	assert.Equal(t, "StatusVCMonitorContext", cfg.Store.Namespace)
	assert.Equal(t, 50, cfg.Engine.LogCapacity)
	assert.Equal(t, "never", cfg.Engine.ResetPolicy)
	assert.Equal(t, 2*time.Second, cfg.Notify.ToastTimeout)
	assert.Equal(t, "ws://localhost:9000/feed", cfg.Feed.URL)
	assert.Equal(t, 60, cfg.Notify.ToastPerMinute)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: /tmp/file.db\nlog:\n  level: warn\n"), 0o644))
	t.Setenv("VCWATCH_DB", "/tmp/env.db")
	t.Setenv("VCWATCH_LOG_LEVEL", "debug")
	t.Setenv("VCWATCH_RESET_POLICY", "never")
	t.Setenv("VCWATCH_METRICS_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "never", cfg.Engine.ResetPolicy)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, "/etc/vcwatch.yaml", ResolvePath("/etc/vcwatch.yaml"))
	assert.Equal(t, "", ResolvePath(""))

	t.Setenv("VCWATCH_CONFIG", "/tmp/from-env.yaml")
	assert.Equal(t, "/tmp/from-env.yaml", ResolvePath(""))
}
