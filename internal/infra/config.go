package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent identifies the tracker to the remote API.
	DefaultUserAgent = "platwatch/0.1 (+https://github.com/platwatch)"
)

// Config holds all application settings. After LoadConfig, sensitive or
// deployment-specific values may be overridden through environment
// variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		BaseURL        string `yaml:"base_url"`
		Platform       string `yaml:"platform"`
		TimeoutSec     int    `yaml:"timeout_sec"`
		RequestDelayMS int    `yaml:"request_delay_ms"`
		CycleDelayMS   int    `yaml:"cycle_delay_ms"`
		MaxRetries     int    `yaml:"max_retries"`
	} `yaml:"market"`

	Filter struct {
		DebounceMS int `yaml:"debounce_ms"`
	} `yaml:"filter"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Path string `yaml:"path"` // empty = user config dir
	} `yaml:"storage"`

	Icons struct {
		Enabled bool   `yaml:"enabled"`
		CDNURL  string `yaml:"cdn_url"`
	} `yaml:"icons"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Market.BaseURL == "" || (!strings.HasPrefix(c.Market.BaseURL, "http://") && !strings.HasPrefix(c.Market.BaseURL, "https://")) {
		return fmt.Errorf("invalid market base URL: %s", c.Market.BaseURL)
	}
	if c.Market.RequestDelayMS <= 0 {
		return fmt.Errorf("request delay must be positive")
	}
	if c.Market.CycleDelayMS < 0 {
		return fmt.Errorf("cycle delay must not be negative")
	}
	if c.Market.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if c.Filter.DebounceMS < 0 {
		return fmt.Errorf("filter debounce must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Icons.Enabled && c.Icons.CDNURL == "" {
		return fmt.Errorf("icon CDN URL is required when icons are enabled")
	}
	return nil
}

// overrideWithEnv applies environment overrides when the variables exist.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("PLATWATCH_MARKET_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("PLATWATCH_PLATFORM"); v != "" {
		cfg.Market.Platform = v
	}
	if v := os.Getenv("PLATWATCH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PLATWATCH_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("PLATWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
