package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Crawler configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Query configuration
	Search SearchConfig `mapstructure:"search"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// Interactive shell configuration
	Shell ShellConfig `mapstructure:"shell"`
}

// CrawlerConfig holds crawler-specific configuration
type CrawlerConfig struct {
	SeedURL           string        `mapstructure:"seed_url"`
	Domain            string        `mapstructure:"domain"`
	IncludeSubdomains bool          `mapstructure:"include_subdomains"`
	MaxPages          int           `mapstructure:"max_pages"`
	CrawlDelay        time.Duration `mapstructure:"crawl_delay"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	TextMode          string        `mapstructure:"text_mode"` // "visible" or "article"
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
	SaveEvery         int           `mapstructure:"save_every"`
}

// SearchConfig holds query engine configuration
type SearchConfig struct {
	TopN int `mapstructure:"top_n"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type     string `mapstructure:"type"` // "json", "bolt" or "none"
	Path     string `mapstructure:"path"`
	Autoload bool   `mapstructure:"autoload"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "text"
	OutputPath string `mapstructure:"output_path"`
}

// ShellConfig holds command loop configuration
type ShellConfig struct {
	Prompt           string `mapstructure:"prompt"`
	ConfirmOverwrite bool   `mapstructure:"confirm_overwrite"`
}

const (
	StorageJSON = "json"
	StorageBolt = "bolt"
	StorageNone = "none"

	TextModeVisible = "visible"
	TextModeArticle = "article"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.indexsmith")
	}

	setDefaults(v)
	bindEnvVars(v)

	// Config file not found is not an error, we'll use defaults and env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// Default returns the built-in configuration without reading files or env
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults are all well-typed; Unmarshal cannot fail here.
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Crawler defaults
	v.SetDefault("crawler.seed_url", "http://example.python-scraping.com/")
	v.SetDefault("crawler.domain", "")
	v.SetDefault("crawler.include_subdomains", false)
	v.SetDefault("crawler.max_pages", 0)
	v.SetDefault("crawler.crawl_delay", "0s")
	v.SetDefault("crawler.timeout", "30s")
	v.SetDefault("crawler.user_agent", "IndexSmith/1.0")
	v.SetDefault("crawler.text_mode", TextModeVisible)
	v.SetDefault("crawler.max_body_bytes", 10<<20)
	v.SetDefault("crawler.save_every", 5)

	// Search defaults
	v.SetDefault("search.top_n", 5)

	// Storage defaults
	v.SetDefault("storage.type", StorageJSON)
	v.SetDefault("storage.path", "./crawled_index.json")
	v.SetDefault("storage.autoload", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output_path", "stderr")

	// Shell defaults
	v.SetDefault("shell.prompt", ">>> ")
	v.SetDefault("shell.confirm_overwrite", true)
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("INDEXSMITH")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Crawler.MaxPages < 0 {
		return fmt.Errorf("crawler.max_pages must not be negative")
	}
	if c.Crawler.CrawlDelay < 0 {
		return fmt.Errorf("crawler.crawl_delay must not be negative")
	}
	if c.Crawler.SaveEvery < 0 {
		return fmt.Errorf("crawler.save_every must not be negative")
	}
	if c.Crawler.MaxBodyBytes <= 0 {
		return fmt.Errorf("crawler.max_body_bytes must be positive")
	}
	switch c.Crawler.TextMode {
	case TextModeVisible, TextModeArticle:
	default:
		return fmt.Errorf("crawler.text_mode must be %q or %q, got %q", TextModeVisible, TextModeArticle, c.Crawler.TextMode)
	}
	if c.Search.TopN <= 0 {
		return fmt.Errorf("search.top_n must be positive")
	}
	switch c.Storage.Type {
	case StorageJSON, StorageBolt:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for storage type %q", c.Storage.Type)
		}
	case StorageNone:
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"text\", got %q", c.Logging.Format)
	}
	return nil
}
