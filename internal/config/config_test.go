package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, float64(5), cfg.Engine.ClickDistancePx)
	assert.Equal(t, int64(500), cfg.Engine.ClickDurationMs)
	assert.Equal(t, int64(1000), cfg.Engine.TextIdleMs)
	assert.Equal(t, 8, cfg.Engine.DragPoints)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `version = 1

[engine]
click_distance_px = 10.0
click_duration_ms = 300
text_idle_ms = 1500
drag_points = 16

[ingest]
spool_dirs = ["/var/spool/actiontrace"]
pattern = "*.jsonl"
debounce_sec = 5
strict = true
workers = 2

[storage]
type = "memory"

[logging]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float64(10), cfg.Engine.ClickDistancePx)
	assert.Equal(t, int64(300), cfg.Engine.ClickDurationMs)
	assert.Equal(t, 16, cfg.Engine.DragPoints)
	assert.Equal(t, []string{"/var/spool/actiontrace"}, cfg.Ingest.SpoolDirs)
	assert.True(t, cfg.Ingest.Strict)
	assert.Equal(t, 2, cfg.Ingest.Workers)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\ndrag_points = 12\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Engine.DragPoints)
	assert.Equal(t, int64(500), cfg.Engine.ClickDurationMs)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Engine.DragPoints = 10
	cfg.Ingest.Strict = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero version", func(c *Config) { c.Version = 0 }},
		{"future version", func(c *Config) { c.Version = Version + 1 }},
		{"negative click distance", func(c *Config) { c.Engine.ClickDistancePx = -1 }},
		{"negative click duration", func(c *Config) { c.Engine.ClickDurationMs = -1 }},
		{"negative idle", func(c *Config) { c.Engine.TextIdleMs = -1 }},
		{"single drag point", func(c *Config) { c.Engine.DragPoints = 1 }},
		{"negative workers", func(c *Config) { c.Ingest.Workers = -1 }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "etcd" }},
		{"sqlite without path", func(c *Config) { c.Storage.Type = "sqlite"; c.Storage.Path = "" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"file output without path", func(c *Config) { c.Logging.Output = "file"; c.Logging.FilePath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
