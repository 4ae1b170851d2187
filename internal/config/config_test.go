package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 120*time.Second, cfg.Pipeline.Timeout)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
pipeline:
  workers: 8
store:
  backend: sqlite
  path: /tmp/pins.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/pins.db", cfg.Store.Path)

	// Untouched fields keep their defaults.
	assert.Equal(t, 32, cfg.Pipeline.QueueDepth)
	assert.Equal(t, 24*time.Hour, cfg.Pipeline.Retention)
	assert.Equal(t, "eng", cfg.Pipeline.OCRLanguage)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "log: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }},
		{"excess workers", func(c *Config) { c.Pipeline.Workers = 1024 }},
		{"short timeout", func(c *Config) { c.Pipeline.Timeout = time.Millisecond }},
		{"confidence above one", func(c *Config) { c.Pipeline.MinConfidence = 1.5 }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }},
		{"missing font file", func(c *Config) { c.Preview.FontFile = "/no/such/font.ttf" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
