package config

import (
	"time"

	"golang-stock-insight/pkg/config"
)

// MarketData holds the configuration for the market data provider API.
type MarketData struct {
	BaseURL             string        `mapstructure:"base_url"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	CandleCount         int           `mapstructure:"candle_count"`
	FinancialPeriods    int           `mapstructure:"financial_periods"`
	NewsLimit           int           `mapstructure:"news_limit"`
	PeerLimit           int           `mapstructure:"peer_limit"`
}

// Analyzer holds analysis engine configuration.
type Analyzer struct {
	ReportCacheTTL time.Duration `mapstructure:"report_cache_ttl"`
}

// Warmup holds the watchlist cache-warmup job configuration.
type Warmup struct {
	Enabled   bool     `mapstructure:"enabled"`
	Schedule  string   `mapstructure:"schedule"`
	Watchlist []string `mapstructure:"watchlist"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analysis service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	MarketData MarketData      `mapstructure:"market_data"`
	Analyzer   Analyzer        `mapstructure:"analyzer"`
	Warmup     Warmup          `mapstructure:"warmup"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

// Load reads the analysis service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Analyzer.ReportCacheTTL == 0 {
		cfg.Analyzer.ReportCacheTTL = time.Hour
	}
	if cfg.MarketData.CandleCount == 0 {
		cfg.MarketData.CandleCount = 500
	}
	if cfg.MarketData.FinancialPeriods == 0 {
		cfg.MarketData.FinancialPeriods = 8
	}
	if cfg.MarketData.NewsLimit == 0 {
		cfg.MarketData.NewsLimit = 20
	}
	if cfg.MarketData.PeerLimit == 0 {
		cfg.MarketData.PeerLimit = 10
	}
	return &cfg, nil
}
