package port

import "risk_monitor/internal/domain/entity"

// RateTable defines the directional exchange-rate lookup used by the risk
// engine. Rate returns the stored quote for the ordered pair (from -> to);
// the inverse direction is a distinct entry and is never derived as 1/rate.
type RateTable interface {
	Rate(from, to string) (entity.RateQuote, bool)
	Put(rate entity.ExchangeRate)
	Pairs() []entity.ExchangeRate
}

// RiskView defines the read side consumed by the API layer: derived risk for
// the positions of one owner address.
type RiskView interface {
	PositionsFor(owner string) []entity.PositionRisk
	SummaryFor(owner string) (worst entity.RiskTier, positions []entity.PositionRisk)
}

// CurrencyRegistry provides the static currency and lending-pair
// configuration supplied by the external configuration layer.
type CurrencyRegistry interface {
	Currency(symbol string) (entity.CurrencyInfo, bool)
	Currencies() []entity.CurrencyInfo
	PairConfig(collateral, borrow string) (entity.LendingPairConfig, bool)
	Pairs() []entity.LendingPairConfig
}
