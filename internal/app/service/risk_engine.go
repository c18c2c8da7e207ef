package service

import (
	"fmt"
	"math"
	"time"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"
)

// Tier boundaries as multipliers of the pair's liquidation threshold. The
// lower bound of each band is exclusive and the upper bound inclusive: a
// health factor exactly at 1.1x the liquidation threshold classifies High,
// not Critical.
const (
	criticalBand = 1.1
	highBand     = 1.3
	mediumBand   = 1.5
)

// RiskEngine derives risk classification from current inputs. All operations
// are pure and synchronous: the engine owns no network, timers, or mutable
// state, and never retries — failures stem from invalid or missing input and
// are reported to the caller immediately.
type RiskEngine struct {
	pivot string
}

// NewRiskEngine creates an engine that routes two-hop currency conversions
// through the given pivot currency.
func NewRiskEngine(pivotCurrency string) *RiskEngine {
	return &RiskEngine{pivot: pivotCurrency}
}

func validValue(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ComputeHealthFactor returns (collateral / borrowed) * 100, or +Inf when
// nothing is borrowed. Negative or non-finite inputs fail with ErrInvalidInput.
func (e *RiskEngine) ComputeHealthFactor(collateralValue, borrowedValue float64) (float64, error) {
	if !validValue(collateralValue) || !validValue(borrowedValue) {
		return 0, fmt.Errorf("%w: collateral=%v borrowed=%v", entity.ErrInvalidInput, collateralValue, borrowedValue)
	}
	if borrowedValue == 0 {
		return math.Inf(1), nil
	}
	return (collateralValue / borrowedValue) * 100, nil
}

// ComputeCollateralRatio returns the collateralization ratio as a percent,
// with the same division-by-zero convention as the health factor.
func (e *RiskEngine) ComputeCollateralRatio(collateralValue, borrowedValue float64) (float64, error) {
	return e.ComputeHealthFactor(collateralValue, borrowedValue)
}

// Classify maps a health factor onto a risk tier relative to the pair's
// liquidation threshold. An infinite health factor (no debt) is tier None.
// Classification is monotonic: a higher health factor never yields a worse
// tier.
func (e *RiskEngine) Classify(healthFactor, liquidationThreshold float64) entity.RiskTier {
	if math.IsInf(healthFactor, 1) || liquidationThreshold <= 0 {
		return entity.RiskTierNone
	}
	switch {
	case healthFactor < criticalBand*liquidationThreshold:
		return entity.RiskTierCritical
	case healthFactor < highBand*liquidationThreshold:
		return entity.RiskTierHigh
	case healthFactor < mediumBand*liquidationThreshold:
		return entity.RiskTierMedium
	default:
		return entity.RiskTierSafe
	}
}

// ConvertToBase converts an amount using a directional rate lookup: a direct
// entry for (from -> to), or a two-hop path through the pivot currency. A 1:1
// rate is never assumed; when no path exists the conversion fails with
// ErrRateUnavailable.
func (e *RiskEngine) ConvertToBase(amount float64, fromCurrency, baseCurrency string, table port.RateTable) (float64, error) {
	if !validValue(amount) {
		return 0, fmt.Errorf("%w: amount=%v", entity.ErrInvalidInput, amount)
	}
	if fromCurrency == baseCurrency {
		return amount, nil
	}

	if quote, ok := table.Rate(fromCurrency, baseCurrency); ok {
		return amount * quote.Rate, nil
	}

	if e.pivot != fromCurrency && e.pivot != baseCurrency {
		first, okFirst := table.Rate(fromCurrency, e.pivot)
		second, okSecond := table.Rate(e.pivot, baseCurrency)
		if okFirst && okSecond {
			return amount * first.Rate * second.Rate, nil
		}
	}

	return 0, fmt.Errorf("%w: no path from %s to %s", entity.ErrRateUnavailable, fromCurrency, baseCurrency)
}

// AggregateBalances converts every balance to the base currency and sums the
// results. Each term must convert independently; one missing rate fails the
// whole aggregate rather than producing a partial total.
func (e *RiskEngine) AggregateBalances(balances map[string]float64, baseCurrency string, table port.RateTable) (float64, error) {
	var total float64
	for currency, amount := range balances {
		converted, err := e.ConvertToBase(amount, currency, baseCurrency, table)
		if err != nil {
			return 0, fmt.Errorf("aggregate %s: %w", currency, err)
		}
		total += converted
	}
	return total, nil
}

// EvaluatePosition derives the risk view of one position. Positions older
// than maxAge are flagged stale so the caller degrades the display instead of
// presenting frozen values as current.
func (e *RiskEngine) EvaluatePosition(pos entity.CollateralPosition, maxAge time.Duration) (entity.PositionRisk, error) {
	hf, err := e.ComputeHealthFactor(pos.CollateralValue, pos.BorrowedValue)
	if err != nil {
		return entity.PositionRisk{}, err
	}
	tier := e.Classify(hf, pos.LiquidationThreshold)
	age := time.Now().UnixMilli() - pos.UpdatedAt
	return entity.PositionRisk{
		Position:     pos,
		HealthFactor: hf,
		Tier:         tier,
		TierLabel:    tier.String(),
		Stale:        age > maxAge.Milliseconds(),
	}, nil
}
