package service

import (
	"fmt"
	"testing"
	"time"

	"risk_monitor/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positionMessage(owner string, collateral, borrowed float64) entity.ChannelMessage {
	payload := fmt.Sprintf(
		`{"owner":%q,"collateralCurrency":"CELO","borrowCurrency":"cUSD","collateralValue":%v,"borrowedValue":%v,"liquidationThreshold":110,"safeThreshold":150}`,
		owner, collateral, borrowed)
	return entity.ChannelMessage{Type: entity.MessageTypePositionUpdate, Data: []byte(payload)}
}

func newTestBook() *PositionBook {
	return NewPositionBook(NewRiskEngine("cUSD"), nil, nopLogger{}, time.Minute)
}

func TestPositionBookIngestAndDerive(t *testing.T) {
	book := newTestBook()

	book.HandleMessage(positionMessage("0xAbC", 300, 200))

	positions := book.PositionsFor("0xabc")
	require.Len(t, positions, 1, "owner lookup is case-insensitive")
	assert.InDelta(t, 150, positions[0].HealthFactor, 1e-9)
	assert.Equal(t, entity.RiskTierMedium, positions[0].Tier)
	assert.False(t, positions[0].Stale)
}

func TestPositionBookLatestUpdateWins(t *testing.T) {
	book := newTestBook()

	book.HandleMessage(positionMessage("0xabc", 300, 200))
	book.HandleMessage(positionMessage("0xabc", 150, 200))

	positions := book.PositionsFor("0xabc")
	require.Len(t, positions, 1, "same owner and pair replaces, never duplicates")
	assert.InDelta(t, 75, positions[0].HealthFactor, 1e-9)
	assert.Equal(t, entity.RiskTierCritical, positions[0].Tier)
}

func TestPositionBookDropsInvalidUpdates(t *testing.T) {
	book := newTestBook()

	book.HandleMessage(entity.ChannelMessage{
		Type: entity.MessageTypePositionUpdate,
		Data: []byte(`not json at all`),
	})
	book.HandleMessage(positionMessage("", 300, 200))
	book.HandleMessage(positionMessage("0xabc", -5, 200))

	assert.Empty(t, book.PositionsFor("0xabc"))
}

func TestPositionBookIgnoresOtherTypes(t *testing.T) {
	book := newTestBook()

	book.HandleMessage(entity.ChannelMessage{
		Type: entity.MessageTypeRateUpdate,
		Data: []byte(`{"from":"CELO","to":"cUSD","rate":0.5}`),
	})

	assert.Empty(t, book.PositionsFor("0xabc"))
}

type stubRegistry struct {
	pair entity.LendingPairConfig
}

func (r stubRegistry) Currency(symbol string) (entity.CurrencyInfo, bool) {
	return entity.CurrencyInfo{}, false
}

func (r stubRegistry) Currencies() []entity.CurrencyInfo { return nil }

func (r stubRegistry) PairConfig(collateral, borrow string) (entity.LendingPairConfig, bool) {
	if collateral == r.pair.CollateralSymbol && borrow == r.pair.BorrowSymbol {
		return r.pair, true
	}
	return entity.LendingPairConfig{}, false
}

func (r stubRegistry) Pairs() []entity.LendingPairConfig { return []entity.LendingPairConfig{r.pair} }

func TestPositionBookFillsThresholdFromRegistry(t *testing.T) {
	registry := stubRegistry{pair: entity.LendingPairConfig{
		CollateralSymbol:     "CELO",
		BorrowSymbol:         "cUSD",
		LiquidationThreshold: 110,
		SafeThreshold:        150,
	}}
	book := NewPositionBook(NewRiskEngine("cUSD"), registry, nopLogger{}, time.Minute)

	// An update without pair parameters picks them up from the registry.
	book.HandleMessage(entity.ChannelMessage{
		Type: entity.MessageTypePositionUpdate,
		Data: []byte(`{"owner":"0xabc","collateralCurrency":"CELO","borrowCurrency":"cUSD","collateralValue":230,"borrowedValue":200}`),
	})

	positions := book.PositionsFor("0xabc")
	require.Len(t, positions, 1)
	assert.Equal(t, 110.0, positions[0].Position.LiquidationThreshold)
	assert.Equal(t, entity.RiskTierCritical, positions[0].Tier)
}

func TestSummaryForWorstTier(t *testing.T) {
	book := newTestBook()

	// Two positions for the same owner on different pairs: one safe, one
	// critical. The summary reports the worst of the two.
	book.HandleMessage(positionMessage("0xabc", 400, 200)) // hf 200, Safe
	safePayload := fmt.Sprintf(
		`{"owner":%q,"collateralCurrency":"cEUR","borrowCurrency":"cUSD","collateralValue":%v,"borrowedValue":%v,"liquidationThreshold":110,"safeThreshold":150}`,
		"0xabc", 100.0, 200.0) // hf 50, Critical
	book.HandleMessage(entity.ChannelMessage{Type: entity.MessageTypePositionUpdate, Data: []byte(safePayload)})

	worst, positions := book.SummaryFor("0xABC")
	require.Len(t, positions, 2)
	assert.Equal(t, entity.RiskTierCritical, worst)
}

func TestSummaryForNoPositions(t *testing.T) {
	book := newTestBook()

	worst, positions := book.SummaryFor("0xnobody")
	assert.Equal(t, entity.RiskTierNone, worst)
	assert.Empty(t, positions)
}

func TestRateIngest(t *testing.T) {
	table := newTestTable(t)
	ingest := NewRateIngest(table, nopLogger{})

	ingest.HandleMessage(entity.ChannelMessage{
		Type: entity.MessageTypeRateUpdate,
		Data: []byte(`{"from":"CELO","to":"cUSD","rate":0.52,"change24h":-1.3,"source":"oracle"}`),
	})

	quote, ok := table.Rate("CELO", "cUSD")
	require.True(t, ok)
	assert.InDelta(t, 0.52, quote.Rate, 1e-9)
	assert.False(t, quote.Stale)

	_, ok = table.Rate("cUSD", "CELO")
	assert.False(t, ok, "the inverse direction is a distinct entry")
}

func TestRateIngestDropsIncompletePairs(t *testing.T) {
	table := newTestTable(t)
	ingest := NewRateIngest(table, nopLogger{})

	ingest.HandleMessage(entity.ChannelMessage{
		Type: entity.MessageTypeRateUpdate,
		Data: []byte(`{"from":"","to":"cUSD","rate":0.52}`),
	})
	ingest.HandleMessage(entity.ChannelMessage{
		Type: entity.MessageTypeRateUpdate,
		Data: []byte(`{"from":"CELO","to":"cUSD","rate":`),
	})

	assert.Empty(t, table.Pairs())
}
