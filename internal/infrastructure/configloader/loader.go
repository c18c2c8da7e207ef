package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server specific configurations.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ChannelConfig holds the realtime channel configuration.
type ChannelConfig struct {
	URL                  string `yaml:"url"`
	ReconnectIntervalMs  int64  `yaml:"reconnectIntervalMs"`  // fixed interval between attempts
	MaxReconnectAttempts int    `yaml:"maxReconnectAttempts"` // cap before the channel gives up
	HandshakeTimeoutMs   int64  `yaml:"handshakeTimeoutMs"`
}

// WalletConfig holds the wallet provider boundary configuration.
type WalletConfig struct {
	ProviderRPCURL        string  `yaml:"providerRpcUrl"`
	AccountPollIntervalMs int64   `yaml:"accountPollIntervalMs"`
	RequestTimeoutMs      int64   `yaml:"requestTimeoutMs"`
	PollRateLimitPerSec   float64 `yaml:"pollRateLimitPerSec"`
	PollBurst             int     `yaml:"pollBurst"`
}

// RiskConfig holds risk engine and rate table configuration.
type RiskConfig struct {
	BaseCurrency     string `yaml:"baseCurrency"`  // unit aggregate values are normalized into
	PivotCurrency    string `yaml:"pivotCurrency"` // intermediate hop for two-step conversions
	RateMaxAgeMs     int64  `yaml:"rateMaxAgeMs"`
	PositionMaxAgeMs int64  `yaml:"positionMaxAgeMs"`
}

// FeedsConfig holds bounded-buffer capacities for the subscription facades.
type FeedsConfig struct {
	TransactionBufferSize  int `yaml:"transactionBufferSize"`
	NotificationBufferSize int `yaml:"notificationBufferSize"`
}

// RegistryConfig holds the external configuration service endpoints and the
// local fallback files for the currency/pair registry.
type RegistryConfig struct {
	BaseURL          string `yaml:"baseURL"`
	RequestTimeoutMs int64  `yaml:"requestTimeoutMs"`
	CurrenciesFile   string `yaml:"currenciesFile"`
	PairsFile        string `yaml:"pairsFile"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Channel  ChannelConfig  `yaml:"channel"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Risk     RiskConfig     `yaml:"risk"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Registry RegistryConfig `yaml:"registry"`
	Swagger  SwaggerConfig  `yaml:"swagger"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// Channel defaults: fixed 5s backoff, 5 attempts.
	if cfg.Channel.ReconnectIntervalMs <= 0 {
		cfg.Channel.ReconnectIntervalMs = 5000
	}
	if cfg.Channel.MaxReconnectAttempts <= 0 {
		cfg.Channel.MaxReconnectAttempts = 5
	}
	if cfg.Channel.HandshakeTimeoutMs <= 0 {
		cfg.Channel.HandshakeTimeoutMs = 10000
	}

	// Wallet defaults: 1s account poll while connected.
	if cfg.Wallet.AccountPollIntervalMs <= 0 {
		cfg.Wallet.AccountPollIntervalMs = 1000
	}
	if cfg.Wallet.RequestTimeoutMs <= 0 {
		cfg.Wallet.RequestTimeoutMs = 5000
	}
	if cfg.Wallet.PollRateLimitPerSec <= 0 {
		cfg.Wallet.PollRateLimitPerSec = 2
	}
	if cfg.Wallet.PollBurst <= 0 {
		cfg.Wallet.PollBurst = 1
	}

	if cfg.Risk.BaseCurrency == "" {
		cfg.Risk.BaseCurrency = "cUSD"
	}
	if cfg.Risk.PivotCurrency == "" {
		cfg.Risk.PivotCurrency = cfg.Risk.BaseCurrency
	}
	if cfg.Risk.RateMaxAgeMs <= 0 {
		cfg.Risk.RateMaxAgeMs = 60000
	}
	if cfg.Risk.PositionMaxAgeMs <= 0 {
		cfg.Risk.PositionMaxAgeMs = 120000
	}

	if cfg.Feeds.TransactionBufferSize <= 0 {
		cfg.Feeds.TransactionBufferSize = 20
	}
	if cfg.Feeds.NotificationBufferSize <= 0 {
		cfg.Feeds.NotificationBufferSize = 50
	}

	if cfg.Registry.RequestTimeoutMs <= 0 {
		cfg.Registry.RequestTimeoutMs = 10000
	}
	if cfg.Registry.CurrenciesFile == "" {
		cfg.Registry.CurrenciesFile = "data/currencies.yml"
	}
	if cfg.Registry.PairsFile == "" {
		cfg.Registry.PairsFile = "data/pairs.yml"
	}

	return &cfg, nil
}
