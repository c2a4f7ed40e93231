package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the fatqt service.
type Config struct {
	Server  Server      `yaml:"server"`
	Storage Storage     `yaml:"storage"`
	Yahoo   Yahoo       `yaml:"yahoo"`
	Chart   ChartConfig `yaml:"chart"`
	Fetch   FetchConfig `yaml:"fetch"`
	Logging Logging     `yaml:"logging"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Yahoo holds endpoint configuration for the Yahoo Finance chart API.
type Yahoo struct {
	BaseURL    string `yaml:"base_url"`
	UserAgent  string `yaml:"user_agent"`
	TimeoutSec int    `yaml:"timeout_sec"`
	ProxyURL   string `yaml:"proxy_url"`
}

// ChartConfig controls live chart session behaviour.
type ChartConfig struct {
	// ExchangeTimezone is the IANA zone used for bar calendar dates and
	// trading-hours checks, e.g. "Asia/Jakarta" for IDX.
	ExchangeTimezone string `yaml:"exchange_timezone"`
	// QuotePollSec is the live quote poll cadence while the market is open.
	QuotePollSec int `yaml:"quote_poll_sec"`
	// ClosedPollSec is the poll cadence while the market is closed.
	ClosedPollSec int `yaml:"closed_poll_sec"`
}

// FetchConfig holds parameters for the offline bar archiver.
type FetchConfig struct {
	StartDate       string `yaml:"start_date"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	MaxWorkers      int    `yaml:"max_workers"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies defaults, and then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns a Config with all defaults applied and env overrides
// honoured, for running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/fatqt.db"
	}
	if cfg.Yahoo.BaseURL == "" {
		cfg.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Yahoo.UserAgent == "" {
		cfg.Yahoo.UserAgent = "Mozilla/5.0"
	}
	if cfg.Yahoo.TimeoutSec == 0 {
		cfg.Yahoo.TimeoutSec = 30
	}
	if cfg.Chart.ExchangeTimezone == "" {
		cfg.Chart.ExchangeTimezone = "Asia/Jakarta"
	}
	if cfg.Chart.QuotePollSec == 0 {
		cfg.Chart.QuotePollSec = 2
	}
	if cfg.Chart.ClosedPollSec == 0 {
		cfg.Chart.ClosedPollSec = 60
	}
	if cfg.Fetch.StartDate == "" {
		cfg.Fetch.StartDate = "2015-01-01"
	}
	if cfg.Fetch.RateLimitPerMin == 0 {
		cfg.Fetch.RateLimitPerMin = 60
	}
	if cfg.Fetch.MaxWorkers == 0 {
		cfg.Fetch.MaxWorkers = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FATQT_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FATQT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Yahoo.BaseURL = v
	}
	if v := os.Getenv("YAHOO_PROXY_URL"); v != "" {
		cfg.Yahoo.ProxyURL = v
	}
	if v := os.Getenv("EXCHANGE_TZ"); v != "" {
		cfg.Chart.ExchangeTimezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
