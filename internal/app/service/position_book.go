package service

import (
	"strings"
	"sync"
	"time"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PositionBook holds the last known collateral positions per owner, fed by
// "position_update" channel messages, and derives their risk classification
// through the engine. Positions are never removed: an owner whose updates
// stop keeps the last value, flagged stale once it exceeds maxAge.
type PositionBook struct {
	engine   *RiskEngine
	registry port.CurrencyRegistry
	logger   port.Logger
	maxAge   time.Duration

	mu        sync.RWMutex
	positions map[string]entity.CollateralPosition
}

// NewPositionBook creates an empty position book. The registry supplies pair
// parameters for updates that omit them.
func NewPositionBook(engine *RiskEngine, registry port.CurrencyRegistry, logger port.Logger, maxAge time.Duration) *PositionBook {
	return &PositionBook{
		engine:    engine,
		registry:  registry,
		logger:    logger,
		maxAge:    maxAge,
		positions: make(map[string]entity.CollateralPosition),
	}
}

func positionKey(owner, collateral, borrow string) string {
	return strings.ToLower(owner) + "|" + collateral + "|" + borrow
}

// HandleMessage ingests one channel message. Types other than
// "position_update" are ignored here; other facades own them.
func (b *PositionBook) HandleMessage(msg entity.ChannelMessage) {
	if msg.Type != entity.MessageTypePositionUpdate {
		return
	}

	var update entity.PositionUpdate
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		b.logger.Warn("Dropping unparsable position update", "error", err)
		return
	}
	if update.Owner == "" || update.CollateralValue < 0 || update.BorrowedValue < 0 {
		b.logger.Warn("Dropping invalid position update",
			"owner", update.Owner,
			"collateral_value", update.CollateralValue,
			"borrowed_value", update.BorrowedValue)
		return
	}

	pos := entity.CollateralPosition{
		Owner:                update.Owner,
		CollateralCurrency:   update.CollateralCurrency,
		BorrowCurrency:       update.BorrowCurrency,
		CollateralValue:      update.CollateralValue,
		BorrowedValue:        update.BorrowedValue,
		LiquidationThreshold: update.LiquidationThreshold,
		SafeThreshold:        update.SafeThreshold,
		UpdatedAt:            time.Now().UnixMilli(),
	}

	// Updates may omit pair parameters; fill them from the registry.
	if pos.LiquidationThreshold <= 0 && b.registry != nil {
		if pair, ok := b.registry.PairConfig(pos.CollateralCurrency, pos.BorrowCurrency); ok {
			pos.LiquidationThreshold = pair.LiquidationThreshold
			pos.SafeThreshold = pair.SafeThreshold
		}
	}

	b.mu.Lock()
	b.positions[positionKey(pos.Owner, pos.CollateralCurrency, pos.BorrowCurrency)] = pos
	b.mu.Unlock()
}

// PositionsFor returns the derived risk view of every position owned by the
// given address. Positions that fail to evaluate are skipped with a warning;
// the caller sees an explicit absence rather than a default value.
func (b *PositionBook) PositionsFor(owner string) []entity.PositionRisk {
	b.mu.RLock()
	matched := make([]entity.CollateralPosition, 0)
	for _, pos := range b.positions {
		if strings.EqualFold(pos.Owner, owner) {
			matched = append(matched, pos)
		}
	}
	b.mu.RUnlock()

	out := make([]entity.PositionRisk, 0, len(matched))
	for _, pos := range matched {
		risk, err := b.engine.EvaluatePosition(pos, b.maxAge)
		if err != nil {
			b.logger.Warn("Skipping unevaluable position",
				"owner", pos.Owner,
				"pair", pos.CollateralCurrency+"/"+pos.BorrowCurrency,
				"error", err)
			continue
		}
		out = append(out, risk)
	}
	return out
}

// SummaryFor returns the worst tier across the owner's positions together
// with the per-position breakdown.
func (b *PositionBook) SummaryFor(owner string) (entity.RiskTier, []entity.PositionRisk) {
	positions := b.PositionsFor(owner)
	worst := entity.RiskTierNone
	for _, p := range positions {
		if p.Tier.Rank() > worst.Rank() {
			worst = p.Tier
		}
	}
	return worst, positions
}

var _ port.RiskView = (*PositionBook)(nil)

// RateIngest feeds "rate_update" channel messages into the rate table.
type RateIngest struct {
	table  port.RateTable
	logger port.Logger
}

// NewRateIngest creates a rate ingest bound to the given table.
func NewRateIngest(table port.RateTable, logger port.Logger) *RateIngest {
	return &RateIngest{table: table, logger: logger}
}

// HandleMessage ingests one channel message; non-rate types are ignored.
func (r *RateIngest) HandleMessage(msg entity.ChannelMessage) {
	if msg.Type != entity.MessageTypeRateUpdate {
		return
	}

	var update entity.RateUpdate
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		r.logger.Warn("Dropping unparsable rate update", "error", err)
		return
	}
	if update.From == "" || update.To == "" {
		r.logger.Warn("Dropping rate update without a currency pair")
		return
	}

	r.table.Put(entity.ExchangeRate{
		From:        update.From,
		To:          update.To,
		Rate:        update.Rate,
		Change24h:   update.Change24h,
		LastUpdated: time.Now().UnixMilli(),
		Source:      update.Source,
	})
}
