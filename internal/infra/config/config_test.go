package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)

	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 3, cfg.Model.TopK)
	require.Equal(t, 0.6, cfg.Model.LowConfidence)
	require.Equal(t, 224, cfg.Model.FrameSize)
	require.Equal(t, "ignore", cfg.Weather.LateResultPolicy)
	require.Equal(t, time.Second, cfg.Capture.TickInterval)
	require.Equal(t, 4096, cfg.Capture.MaxFrameSide)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
model:
  baseUrl: "https://models.example.com/abc/"
weather:
  lateResultPolicy: overwrite
  cacheTtl: 1m
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("MODEL_TOP_K", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "https://models.example.com/abc/", cfg.Model.BaseURL)
	require.Equal(t, 5, cfg.Model.TopK)
	require.Equal(t, "overwrite", cfg.Weather.LateResultPolicy)
	require.Equal(t, time.Minute, cfg.Weather.CacheTTL)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, 0.6, cfg.Model.LowConfidence)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"policy":      func(c *Config) { c.Weather.LateResultPolicy = "latest" },
		"topK":        func(c *Config) { c.Model.TopK = 0 },
		"confidence":  func(c *Config) { c.Model.LowConfidence = 1.5 },
		"cache":       func(c *Config) { c.Cache.Enabled = true },
		"objectStore": func(c *Config) { c.Assets.ObjectStore.Enabled = true },
		"ticks":       func(c *Config) { c.Capture.CountdownTicks = 0 },
		"frameSide":   func(c *Config) { c.Capture.MaxFrameSide = 100 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
