package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8008, cfg.Server.Port)
	require.Equal(t, "https://gnews.io/api/v4", cfg.Upstream.BaseURL)
	require.Equal(t, 300*time.Second, cfg.Cache.TTL)
	require.Equal(t, 100, cfg.Cache.MaxEntries)
	require.Equal(t, time.Minute, cfg.Cache.PurgeInterval)
	require.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	require.False(t, cfg.Auth.Enabled)
	require.Equal(t, 24*time.Hour, cfg.Stats.Retention)
	require.Equal(t, 1024, cfg.Stats.Buffer)
	require.Equal(t, "0.0.0.0:8008", cfg.Server.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
upstream:
  base_url: http://file.example/api
cache:
  ttl: 30s
  max_entries: 5
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("GNEWS_API_KEY", "secret-key")
	t.Setenv("CACHE_MAX_ENTRIES", "7")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "http://file.example/api", cfg.Upstream.BaseURL)
	require.Equal(t, "secret-key", cfg.Upstream.APIKey)
	require.Equal(t, 30*time.Second, cfg.Cache.TTL)
	require.Equal(t, 7, cfg.Cache.MaxEntries)
}

func TestLoad_LegacyURLVariable(t *testing.T) {
	t.Setenv("GNEWS_API_URL", "http://legacy.example/v4")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "http://legacy.example/v4", cfg.Upstream.BaseURL)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Upstream: UpstreamConfig{BaseURL: "http://x"},
			Cache:    CacheConfig{TTL: time.Second, MaxEntries: 1},
		}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Cache.MaxEntries = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.TTL = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.Enabled = true
	require.Error(t, cfg.Validate())

	cfg.Auth.Secret = "s"
	require.NoError(t, cfg.Validate())
}
