package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server: {}
channel:
  url: "wss://example.org/stream"
wallet:
  providerRpcUrl: "http://localhost:8545"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.Equal(t, int64(5000), cfg.Channel.ReconnectIntervalMs)
	assert.Equal(t, 5, cfg.Channel.MaxReconnectAttempts)
	assert.Equal(t, int64(10000), cfg.Channel.HandshakeTimeoutMs)

	assert.Equal(t, int64(1000), cfg.Wallet.AccountPollIntervalMs)
	assert.Equal(t, int64(5000), cfg.Wallet.RequestTimeoutMs)

	assert.Equal(t, "cUSD", cfg.Risk.BaseCurrency)
	assert.Equal(t, "cUSD", cfg.Risk.PivotCurrency, "pivot falls back to the base currency")
	assert.Equal(t, int64(60000), cfg.Risk.RateMaxAgeMs)

	assert.Equal(t, 20, cfg.Feeds.TransactionBufferSize)
	assert.Equal(t, 50, cfg.Feeds.NotificationBufferSize)

	assert.Equal(t, "data/currencies.yml", cfg.Registry.CurrenciesFile)
	assert.Equal(t, "data/pairs.yml", cfg.Registry.PairsFile)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
channel:
  url: "wss://example.org/stream"
  reconnectIntervalMs: 250
  maxReconnectAttempts: 2
wallet:
  accountPollIntervalMs: 500
risk:
  baseCurrency: "cEUR"
  pivotCurrency: "cUSD"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int64(250), cfg.Channel.ReconnectIntervalMs)
	assert.Equal(t, 2, cfg.Channel.MaxReconnectAttempts)
	assert.Equal(t, int64(500), cfg.Wallet.AccountPollIntervalMs)
	assert.Equal(t, "cEUR", cfg.Risk.BaseCurrency)
	assert.Equal(t, "cUSD", cfg.Risk.PivotCurrency)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}
