// Package config handles configuration loading, validation, and
// defaults for actiontrace.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete actiontrace configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Engine holds the reconstruction thresholds.
	Engine EngineConfig `toml:"engine" json:"engine" yaml:"engine"`

	// Ingest configures where session logs arrive and how they are
	// picked up.
	Ingest IngestConfig `toml:"ingest" json:"ingest" yaml:"ingest"`

	// Storage configures persistence of extracted sessions.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Metrics configuration.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// EngineConfig holds the gesture and text thresholds. Zero values fall
// back to the engine defaults.
type EngineConfig struct {
	// ClickDistancePx is the maximum pointer travel, in pixels, for a
	// press-release pair to count as a click.
	ClickDistancePx float64 `toml:"click_distance_px" json:"click_distance_px" yaml:"click_distance_px"`

	// ClickDurationMs is the maximum press duration, in milliseconds,
	// for a click.
	ClickDurationMs int64 `toml:"click_duration_ms" json:"click_duration_ms" yaml:"click_duration_ms"`

	// TextIdleMs is the keystroke gap that forces a typed-text flush.
	TextIdleMs int64 `toml:"text_idle_ms" json:"text_idle_ms" yaml:"text_idle_ms"`

	// DragPoints is the number of control points drags are resampled to.
	DragPoints int `toml:"drag_points" json:"drag_points" yaml:"drag_points"`
}

// IngestConfig holds session-log ingestion settings.
type IngestConfig struct {
	// SpoolDirs are the directories watched for arriving session logs.
	SpoolDirs []string `toml:"spool_dirs" json:"spool_dirs" yaml:"spool_dirs"`

	// Pattern is the glob matched against file names in the spool
	// directories.
	Pattern string `toml:"pattern" json:"pattern" yaml:"pattern"`

	// DebounceSec is how long a file must be unmodified before it is
	// considered complete and picked up.
	DebounceSec int `toml:"debounce_sec" json:"debounce_sec" yaml:"debounce_sec"`

	// Strict enables JSON Schema validation of every record before
	// extraction.
	Strict bool `toml:"strict" json:"strict" yaml:"strict"`

	// Workers is the number of sessions processed in parallel.
	Workers int `toml:"workers" json:"workers" yaml:"workers"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Type is the storage backend type: "sqlite" or "memory".
	Type string `toml:"type" json:"type" yaml:"type"`

	// Path is the SQLite database path.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log output format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log destination: stdout, stderr, file, or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when Output includes "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled turns the metrics registry on.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Engine: EngineConfig{
			ClickDistancePx: 5,
			ClickDurationMs: 500,
			TextIdleMs:      1000,
			DragPoints:      8,
		},
		Ingest: IngestConfig{
			SpoolDirs:   []string{defaultSpoolDir()},
			Pattern:     "*.jsonl",
			DebounceSec: 2,
			Workers:     4,
		},
		Storage: StorageConfig{
			Type: "sqlite",
			Path: filepath.Join(defaultDataDir(), "actiontrace.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// defaultDataDir returns the platform-specific data directory.
func defaultDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "actiontrace")
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		return filepath.Join(appData, "actiontrace")
	default: // Linux and other Unix
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, _ := os.UserHomeDir()
			dataHome = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(dataHome, "actiontrace")
	}
}

func defaultSpoolDir() string {
	return filepath.Join(defaultDataDir(), "spool")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return filepath.Join(defaultDataDir(), "config.toml")
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, "actiontrace", "config.toml")
	}
}

// Load reads and validates a TOML configuration file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when
// the file does not exist. An empty path means the default location.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Save writes the configuration as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Version <= 0 || c.Version > Version {
		return fmt.Errorf("version: unsupported value %d", c.Version)
	}

	if c.Engine.ClickDistancePx < 0 {
		return fmt.Errorf("engine.click_distance_px: must not be negative")
	}
	if c.Engine.ClickDurationMs < 0 {
		return fmt.Errorf("engine.click_duration_ms: must not be negative")
	}
	if c.Engine.TextIdleMs < 0 {
		return fmt.Errorf("engine.text_idle_ms: must not be negative")
	}
	if c.Engine.DragPoints == 1 || c.Engine.DragPoints < 0 {
		return fmt.Errorf("engine.drag_points: need at least 2 points, got %d", c.Engine.DragPoints)
	}

	if c.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers: must not be negative")
	}
	if c.Ingest.DebounceSec < 0 {
		return fmt.Errorf("ingest.debounce_sec: must not be negative")
	}

	switch c.Storage.Type {
	case "sqlite", "memory", "":
	default:
		return fmt.Errorf("storage.type: unknown backend %q", c.Storage.Type)
	}
	if c.Storage.Type == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path: required for sqlite storage")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	switch c.Logging.Output {
	case "", "stdout", "stderr", "file", "both":
	default:
		return fmt.Errorf("logging.output: unknown output %q", c.Logging.Output)
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path: required for file output")
	}

	return nil
}
