package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://example.python-scraping.com/", cfg.Crawler.SeedURL)
	assert.Equal(t, 30*time.Second, cfg.Crawler.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Crawler.CrawlDelay)
	assert.Equal(t, TextModeVisible, cfg.Crawler.TextMode)
	assert.Equal(t, 5, cfg.Crawler.SaveEvery)
	assert.Equal(t, 5, cfg.Search.TopN)
	assert.Equal(t, StorageJSON, cfg.Storage.Type)
	assert.True(t, cfg.Shell.ConfirmOverwrite)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
crawler:
  seed_url: http://localhost:8080/
  max_pages: 25
  crawl_delay: 250ms
search:
  top_n: 3
storage:
  type: bolt
  path: /tmp/index.db
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/", cfg.Crawler.SeedURL)
	assert.Equal(t, 25, cfg.Crawler.MaxPages)
	assert.Equal(t, 250*time.Millisecond, cfg.Crawler.CrawlDelay)
	assert.Equal(t, 3, cfg.Search.TopN)
	assert.Equal(t, StorageBolt, cfg.Storage.Type)
	// untouched keys keep their defaults
	assert.Equal(t, "IndexSmith/1.0", cfg.Crawler.UserAgent)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("INDEXSMITH_SEARCH_TOP_N", "9")
	t.Setenv("INDEXSMITH_STORAGE_TYPE", "none")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  top_n: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Search.TopN)
	assert.Equal(t, StorageNone, cfg.Storage.Type)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative max pages", func(c *Config) { c.Crawler.MaxPages = -1 }},
		{"negative delay", func(c *Config) { c.Crawler.CrawlDelay = -time.Second }},
		{"zero body limit", func(c *Config) { c.Crawler.MaxBodyBytes = 0 }},
		{"unknown text mode", func(c *Config) { c.Crawler.TextMode = "raw" }},
		{"zero top n", func(c *Config) { c.Search.TopN = 0 }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "s3" }},
		{"missing storage path", func(c *Config) { c.Storage.Path = "" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
