package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "data/soundlibrary.csv", cfg.Catalog.CSVPath)
	assert.Equal(t, "https://storage.googleapis.com/cwsounds", cfg.Catalog.BucketBaseURL)
	assert.Equal(t, "data/soundlibrary_embeddings.sqlite", cfg.Sidecar.Path)
	assert.True(t, cfg.Embedding.Enabled)
	assert.Equal(t, 256, cfg.Embedding.Dim)
	assert.True(t, cfg.Retrieval.Fuzzy)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL.AsDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Catalog.CSVPath, cfg.Catalog.CSVPath)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Embedding.Dim, cfg.Embedding.Dim)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
catalog:
  csv_path: /srv/sounds/library.csv
  bucket_base_url: https://sounds.example.com/assets
sidecar:
  path: /srv/sounds/embeddings.sqlite
embedding:
  enabled: false
retrieval:
  fuzzy: false
cache:
  enabled: true
  ttl: 2m30s
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/sounds/library.csv", cfg.Catalog.CSVPath)
	assert.Equal(t, "https://sounds.example.com/assets", cfg.Catalog.BucketBaseURL)
	assert.Equal(t, "/srv/sounds/embeddings.sqlite", cfg.Sidecar.Path)
	assert.False(t, cfg.Embedding.Enabled)
	assert.Equal(t, 256, cfg.Embedding.Dim, "unset fields keep defaults")
	assert.False(t, cfg.Retrieval.Fuzzy)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 2*time.Minute+30*time.Second, cfg.Cache.TTL.AsDuration())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: [not a mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOUND_ENGINE_CATALOG_CSV", "/env/library.csv")
	t.Setenv("SOUND_ENGINE_EMBEDDING_ENABLED", "false")
	t.Setenv("SOUND_ENGINE_CACHE_ENABLED", "true")
	t.Setenv("SOUND_ENGINE_CACHE_TTL", "90s")
	t.Setenv("SOUND_ENGINE_LOG_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/env/library.csv", cfg.Catalog.CSVPath)
	assert.False(t, cfg.Embedding.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL.AsDuration())
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_EnvOverridesBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog:\n  csv_path: /file/library.csv\n"), 0o644))
	t.Setenv("SOUND_ENGINE_CATALOG_CSV", "/env/library.csv")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/env/library.csv", cfg.Catalog.CSVPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty csv path", func(c *Config) { c.Catalog.CSVPath = "" }, "csv_path"},
		{"relative bucket url", func(c *Config) { c.Catalog.BucketBaseURL = "bucket/sounds" }, "bucket_base_url"},
		{"zero dim with embedding on", func(c *Config) { c.Embedding.Dim = 0 }, "dim"},
		{"zero ttl with cache on", func(c *Config) { c.Cache.Enabled = true; c.Cache.TTL = 0 }, "ttl"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_AllowsDisabledVariants(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Embedding.Enabled = false
	cfg.Embedding.Dim = 0
	cfg.Sidecar.Path = ""

	assert.NoError(t, cfg.Validate(), "dim and sidecar are unchecked while embedding is off")
}

func TestDuration_YAMLForms(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected time.Duration
	}{
		{"duration string", "cache:\n  ttl: 5m\n", 5 * time.Minute},
		{"integer nanoseconds", "cache:\n  ttl: 1000000000\n", time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg.Cache.TTL.AsDuration())
		})
	}
}

func TestResolveRelativePath(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		targetPath string
		expected   string
	}{
		{"relative to config dir", "/etc/engine/config.yaml", "data/library.csv", "/etc/engine/data/library.csv"},
		{"absolute unchanged", "/etc/engine/config.yaml", "/srv/library.csv", "/srv/library.csv"},
		{"no config path", "", "data/library.csv", "data/library.csv"},
		{"empty target", "/etc/engine/config.yaml", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveRelativePath(tc.configPath, tc.targetPath))
		})
	}
}
