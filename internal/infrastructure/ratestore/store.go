package ratestore

import (
	"time"

	"risk_monitor/internal/app/port"
	"risk_monitor/internal/domain/entity"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Store implements port.RateTable on top of an in-memory cache keyed by the
// ordered pair "FROM_TO". Entries never expire out of the cache: a rate that
// stopped updating is reported as stale, not as missing, so the caller can
// degrade the display instead of silently losing the value.
type Store struct {
	rates  *cache.Cache
	maxAge time.Duration
	logger *zap.Logger
}

// NewStore creates a rate table. maxAge is the age past which a quote is
// flagged stale, measured against the entry's LastUpdated timestamp.
func NewStore(maxAge time.Duration, logger *zap.Logger) *Store {
	return &Store{
		rates:  cache.New(cache.NoExpiration, 10*time.Minute),
		maxAge: maxAge,
		logger: logger.Named("RateStore"),
	}
}

func pairKey(from, to string) string {
	return from + "_" + to
}

// Put stores a directional rate. Non-positive rates violate the table's
// invariant and are dropped with a warning.
func (s *Store) Put(rate entity.ExchangeRate) {
	if rate.Rate <= 0 {
		s.logger.Warn("Dropping non-positive exchange rate",
			zap.String("from", rate.From),
			zap.String("to", rate.To),
			zap.Float64("rate", rate.Rate))
		return
	}
	if rate.LastUpdated == 0 {
		rate.LastUpdated = time.Now().UnixMilli()
	}
	s.rates.Set(pairKey(rate.From, rate.To), rate, cache.NoExpiration)
}

// Rate returns the stored quote for the ordered pair (from -> to). The
// inverse direction is a distinct entry and is never derived here.
func (s *Store) Rate(from, to string) (entity.RateQuote, bool) {
	v, found := s.rates.Get(pairKey(from, to))
	if !found {
		return entity.RateQuote{}, false
	}
	rate := v.(entity.ExchangeRate)
	age := time.Now().UnixMilli() - rate.LastUpdated
	return entity.RateQuote{
		ExchangeRate: rate,
		Stale:        age > s.maxAge.Milliseconds(),
	}, true
}

// Pairs returns all stored rates.
func (s *Store) Pairs() []entity.ExchangeRate {
	items := s.rates.Items()
	out := make([]entity.ExchangeRate, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(entity.ExchangeRate))
	}
	return out
}

var _ port.RateTable = (*Store)(nil)
