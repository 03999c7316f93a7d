package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr   string `yaml:"addr"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`
	Telegram struct {
		BotToken   string `yaml:"bot_token"`
		ChatID     string `yaml:"chat_id"`
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider    string `yaml:"provider"` // yahoo, alphavantage or mock
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		HistoryDays int    `yaml:"history_days"`
		Benchmark   string `yaml:"benchmark"`
	} `yaml:"data_source"`
	Analysis struct {
		RiskFreeRate float64       `yaml:"risk_free_rate"`
		SymbolDelay  time.Duration `yaml:"symbol_delay"`
	} `yaml:"analysis"`
	Schedule struct {
		DailyCron     string `yaml:"daily_cron"`
		PortfolioCron string `yaml:"portfolio_cron"`
		SectorCron    string `yaml:"sector_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Redis struct {
		URL string        `yaml:"url"`
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	News struct {
		NewsAPIKey      string `yaml:"newsapi_key"`
		AlphaVantageKey string `yaml:"alphavantage_key"`
	} `yaml:"news"`
	Logging struct {
		Level       string `yaml:"level"`
		Format      string `yaml:"format"`
		Development bool   `yaml:"development"`
	} `yaml:"logging"`
	Tracing struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	// Numeric defaults are set before decoding so an explicit 0 in the file
	// or environment is kept.
	cfg := &Config{}
	cfg.DataSource.HistoryDays = 252
	cfg.Analysis.RiskFreeRate = 0.045
	cfg.Analysis.SymbolDelay = 300 * time.Millisecond
	cfg.Redis.TTL = 15 * time.Minute

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	str := map[string]*string{
		"SERVER_ADDR":                 &cfg.Server.Addr,
		"API_KEY":                     &cfg.Server.APIKey,
		"TELEGRAM_BOT_TOKEN":          &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":            &cfg.Telegram.ChatID,
		"WEBHOOK_URL":                 &cfg.Telegram.WebhookURL,
		"DATA_PROVIDER":               &cfg.DataSource.Provider,
		"DATA_BASE_URL":               &cfg.DataSource.BaseURL,
		"ALPHA_VANTAGE_KEY":           &cfg.News.AlphaVantageKey,
		"NEWSAPI_KEY":                 &cfg.News.NewsAPIKey,
		"CRON_DAILY":                  &cfg.Schedule.DailyCron,
		"CRON_PORTFOLIO":              &cfg.Schedule.PortfolioCron,
		"CRON_SECTOR":                 &cfg.Schedule.SectorCron,
		"SQLITE_PATH":                 &cfg.Database.SQLitePath,
		"REDIS_URL":                   &cfg.Redis.URL,
		"LOG_LEVEL":                   &cfg.Logging.Level,
		"LOG_FORMAT":                  &cfg.Logging.Format,
		"OTEL_EXPORTER_OTLP_ENDPOINT": &cfg.Tracing.Endpoint,
		"HTTPS_PROXY":                 &cfg.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RISK_FREE_RATE: %w", err)
		}
		cfg.Analysis.RiskFreeRate = rate
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = v == "true"
	}

	// The data provider key doubles as the news key unless one is set.
	if cfg.DataSource.APIKey == "" && cfg.DataSource.Provider == "alphavantage" {
		cfg.DataSource.APIKey = cfg.News.AlphaVantageKey
	}
	if cfg.News.AlphaVantageKey == "" && cfg.DataSource.Provider == "alphavantage" {
		cfg.News.AlphaVantageKey = cfg.DataSource.APIKey
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Benchmark == "" {
		cfg.DataSource.Benchmark = "SPY"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 16 * * 1-5"
	}
	if cfg.Schedule.PortfolioCron == "" {
		cfg.Schedule.PortfolioCron = "0 0 17 * * 1-5"
	}
	if cfg.Schedule.SectorCron == "" {
		cfg.Schedule.SectorCron = "0 0 8 * * 1"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stockscope.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for alphavantage")
		}
	default:
		return fmt.Errorf("data_source.provider %q: want yahoo, alphavantage or mock", c.DataSource.Provider)
	}
	if c.DataSource.HistoryDays < 2 {
		return fmt.Errorf("data_source.history_days must be at least 2")
	}
	if c.Analysis.RiskFreeRate < 0 || c.Analysis.RiskFreeRate >= 1 {
		return fmt.Errorf("analysis.risk_free_rate must be in [0, 1)")
	}
	if c.Analysis.SymbolDelay < 0 {
		return fmt.Errorf("analysis.symbol_delay must not be negative")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required with a bot token")
	}
	if c.Telegram.WebhookURL != "" && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.webhook_url needs telegram.bot_token")
	}
	return nil
}
