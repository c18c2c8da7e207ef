package registryloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"risk_monitor/internal/infrastructure/configloader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currenciesYAML = `
- symbol: "cUSD"
  name: "Celo Dollar"
  displayGlyph: "$"
  colorToken: "green"
  decimals: 18
- symbol: "CELO"
  name: "Celo"
  displayGlyph: "C"
  colorToken: "yellow"
  decimals: 18
`

const pairsYAML = `
- collateralSymbol: "CELO"
  borrowSymbol: "cUSD"
  apr: 4.5
  maxLoanToValue: 75.0
  liquidationThreshold: 110.0
  safeThreshold: 150.0
`

func writeRegistryFiles(t *testing.T) configloader.RegistryConfig {
	t.Helper()
	dir := t.TempDir()
	currenciesFile := filepath.Join(dir, "currencies.yml")
	pairsFile := filepath.Join(dir, "pairs.yml")
	require.NoError(t, os.WriteFile(currenciesFile, []byte(currenciesYAML), 0o644))
	require.NoError(t, os.WriteFile(pairsFile, []byte(pairsYAML), 0o644))
	return configloader.RegistryConfig{
		RequestTimeoutMs: 1000,
		CurrenciesFile:   currenciesFile,
		PairsFile:        pairsFile,
	}
}

func TestLoadFromLocalFiles(t *testing.T) {
	loader := NewLoader(writeRegistryFiles(t))

	registry, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, registry.Currencies(), 2)
	assert.Len(t, registry.Pairs(), 1)

	currency, ok := registry.Currency("cUSD")
	require.True(t, ok)
	assert.Equal(t, "Celo Dollar", currency.Name)

	pair, ok := registry.PairConfig("CELO", "cUSD")
	require.True(t, ok)
	assert.Equal(t, 110.0, pair.LiquidationThreshold)
}

func TestLookupsAreCaseInsensitive(t *testing.T) {
	loader := NewLoader(writeRegistryFiles(t))
	registry, err := loader.Load(context.Background())
	require.NoError(t, err)

	_, ok := registry.Currency("CUSD")
	assert.True(t, ok)
	_, ok = registry.Currency("celo")
	assert.True(t, ok)

	_, ok = registry.PairConfig("celo", "CUSD")
	assert.True(t, ok)
}

func TestUnknownEntriesAreReportedMissing(t *testing.T) {
	loader := NewLoader(writeRegistryFiles(t))
	registry, err := loader.Load(context.Background())
	require.NoError(t, err)

	_, ok := registry.Currency("DOGE")
	assert.False(t, ok)
	_, ok = registry.PairConfig("cUSD", "CELO")
	assert.False(t, ok, "pair direction matters")
}

func TestRemoteFailureFallsBackToFiles(t *testing.T) {
	cfg := writeRegistryFiles(t)
	cfg.BaseURL = "http://127.0.0.1:1" // nothing listens here
	loader := NewLoader(cfg)

	registry, err := loader.Load(context.Background())
	require.NoError(t, err, "an unreachable registry service must not be fatal")
	assert.Len(t, registry.Currencies(), 2)
}

func TestLoadFailsWithoutAnySource(t *testing.T) {
	loader := NewLoader(configloader.RegistryConfig{
		RequestTimeoutMs: 1000,
		CurrenciesFile:   filepath.Join(t.TempDir(), "missing.yml"),
		PairsFile:        filepath.Join(t.TempDir(), "missing.yml"),
	})

	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}
