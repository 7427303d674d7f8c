// Package config provides configuration loading for the sound engine.
// Supports YAML files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the engine and its tooling.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Sidecar   SidecarConfig   `yaml:"sidecar"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CatalogConfig locates the catalog snapshot and URL shaping base.
type CatalogConfig struct {
	CSVPath       string `yaml:"csv_path"`
	BucketBaseURL string `yaml:"bucket_base_url"`
}

// SidecarConfig locates the precomputed embedding sidecar.
type SidecarConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig controls the local embedding capability.
type EmbeddingConfig struct {
	Enabled bool `yaml:"enabled"`
	Dim     int  `yaml:"dim"`
}

// RetrievalConfig holds pipeline toggles.
type RetrievalConfig struct {
	Fuzzy bool `yaml:"fuzzy"`
}

// CacheConfig controls the in-process suggestion response cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	TTL     Duration `yaml:"ttl"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Duration wraps time.Duration so YAML accepts "5m" style values as well as
// integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// AsDuration returns the wrapped time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Load reads configuration from a YAML file and applies environment overrides.
// An empty path or a path that does not exist yields defaults; the engine is
// expected to run with zero configuration in development.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with development defaults.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			CSVPath:       "data/soundlibrary.csv",
			BucketBaseURL: "https://storage.googleapis.com/cwsounds",
		},
		Sidecar: SidecarConfig{
			Path: "data/soundlibrary_embeddings.sqlite",
		},
		Embedding: EmbeddingConfig{
			Enabled: true,
			Dim:     256,
		},
		Retrieval: RetrievalConfig{
			Fuzzy: true,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     Duration(5 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Catalog.CSVPath == "" {
		return fmt.Errorf("catalog csv_path must not be empty")
	}

	base := c.Catalog.BucketBaseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("bucket_base_url must be an absolute http(s) URL, got %q", base)
	}

	if c.Embedding.Enabled && c.Embedding.Dim < 1 {
		return fmt.Errorf("embedding dim must be positive, got %d", c.Embedding.Dim)
	}

	if c.Cache.Enabled && c.Cache.TTL.AsDuration() <= 0 {
		return fmt.Errorf("cache ttl must be positive when cache is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// applyEnvOverrides applies SOUND_ENGINE_* environment overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SOUND_ENGINE_CATALOG_CSV"); v != "" {
		cfg.Catalog.CSVPath = v
	}

	if v := os.Getenv("SOUND_ENGINE_BUCKET_BASE_URL"); v != "" {
		cfg.Catalog.BucketBaseURL = v
	}

	if v := os.Getenv("SOUND_ENGINE_SIDECAR_PATH"); v != "" {
		cfg.Sidecar.Path = v
	}

	if v := os.Getenv("SOUND_ENGINE_EMBEDDING_ENABLED"); v != "" {
		cfg.Embedding.Enabled = parseBool(v, cfg.Embedding.Enabled)
	}

	if v := os.Getenv("SOUND_ENGINE_EMBEDDING_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dim = n
		}
	}

	if v := os.Getenv("SOUND_ENGINE_FUZZY"); v != "" {
		cfg.Retrieval.Fuzzy = parseBool(v, cfg.Retrieval.Fuzzy)
	}

	if v := os.Getenv("SOUND_ENGINE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v, cfg.Cache.Enabled)
	}

	if v := os.Getenv("SOUND_ENGINE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = Duration(parsed)
		}
	}

	if v := os.Getenv("SOUND_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("SOUND_ENGINE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if targetPath == "" || filepath.IsAbs(targetPath) {
		return targetPath
	}
	if configPath == "" {
		return targetPath
	}
	return filepath.Join(filepath.Dir(configPath), targetPath)
}
