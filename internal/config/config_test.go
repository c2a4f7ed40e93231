package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	yamlContent := []byte(`
server:
  host: "127.0.0.1"
  port: 9000
storage:
  data_dir: "/tmp/fatqt/data"
  sqlite_path: "/tmp/fatqt/fatqt.db"
yahoo:
  base_url: "https://query2.finance.yahoo.com"
  user_agent: "test-agent"
  timeout_sec: 10
chart:
  exchange_timezone: "Asia/Jakarta"
  quote_poll_sec: 3
  closed_poll_sec: 90
fetch:
  start_date: "2018-01-01"
  rate_limit_per_min: 30
  max_workers: 2
logging:
  level: "debug"
  format: "json"
`)

	tmpFile, err := os.CreateTemp("", "fatqt-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("FATQT_HOST")
	os.Unsetenv("FATQT_PORT")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("YAHOO_BASE_URL")
	os.Unsetenv("EXCHANGE_TZ")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Server --
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/fatqt/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/fatqt/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/fatqt/fatqt.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/fatqt/fatqt.db")
	}

	// -- Yahoo --
	if cfg.Yahoo.BaseURL != "https://query2.finance.yahoo.com" {
		t.Errorf("Yahoo.BaseURL = %q, want %q", cfg.Yahoo.BaseURL, "https://query2.finance.yahoo.com")
	}
	if cfg.Yahoo.UserAgent != "test-agent" {
		t.Errorf("Yahoo.UserAgent = %q, want %q", cfg.Yahoo.UserAgent, "test-agent")
	}
	if cfg.Yahoo.TimeoutSec != 10 {
		t.Errorf("Yahoo.TimeoutSec = %d, want %d", cfg.Yahoo.TimeoutSec, 10)
	}

	// -- Chart --
	if cfg.Chart.ExchangeTimezone != "Asia/Jakarta" {
		t.Errorf("Chart.ExchangeTimezone = %q, want %q", cfg.Chart.ExchangeTimezone, "Asia/Jakarta")
	}
	if cfg.Chart.QuotePollSec != 3 {
		t.Errorf("Chart.QuotePollSec = %d, want %d", cfg.Chart.QuotePollSec, 3)
	}
	if cfg.Chart.ClosedPollSec != 90 {
		t.Errorf("Chart.ClosedPollSec = %d, want %d", cfg.Chart.ClosedPollSec, 90)
	}

	// -- Fetch --
	if cfg.Fetch.StartDate != "2018-01-01" {
		t.Errorf("Fetch.StartDate = %q, want %q", cfg.Fetch.StartDate, "2018-01-01")
	}
	if cfg.Fetch.RateLimitPerMin != 30 {
		t.Errorf("Fetch.RateLimitPerMin = %d, want %d", cfg.Fetch.RateLimitPerMin, 30)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "fatqt-config-empty-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte("server:\n  port: 8123\n")); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Unsetenv("FATQT_PORT")
	os.Unsetenv("YAHOO_BASE_URL")
	os.Unsetenv("EXCHANGE_TZ")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8123)
	}
	if cfg.Yahoo.BaseURL != "https://query1.finance.yahoo.com" {
		t.Errorf("Yahoo.BaseURL default = %q", cfg.Yahoo.BaseURL)
	}
	if cfg.Chart.ExchangeTimezone != "Asia/Jakarta" {
		t.Errorf("Chart.ExchangeTimezone default = %q", cfg.Chart.ExchangeTimezone)
	}
	if cfg.Chart.QuotePollSec != 2 || cfg.Chart.ClosedPollSec != 60 {
		t.Errorf("Chart poll defaults = %d/%d, want 2/60",
			cfg.Chart.QuotePollSec, cfg.Chart.ClosedPollSec)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level default = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
server:
  port: 8000
storage:
  data_dir: "/original/data"
`)

	tmpFile, err := os.CreateTemp("", "fatqt-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	os.Setenv("FATQT_PORT", "8222")
	os.Setenv("DATA_DIR", "/env/data")
	defer os.Unsetenv("FATQT_PORT")
	defer os.Unsetenv("DATA_DIR")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 8222 {
		t.Errorf("Server.Port = %d, want %d (env override)", cfg.Server.Port, 8222)
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
}
