package entity

// ExchangeRate is a directional rate for an ordered currency pair (From -> To).
// The inverse direction is a separate entry; it is never assumed equal to 1/Rate.
type ExchangeRate struct {
	From        string  `json:"from" yaml:"from"`
	To          string  `json:"to" yaml:"to"`
	Rate        float64 `json:"rate" yaml:"rate"`
	Change24h   float64 `json:"change24h" yaml:"change24h"`
	LastUpdated int64   `json:"lastUpdated" yaml:"lastUpdated"` // epoch milliseconds
	Source      string  `json:"source" yaml:"source"`
}

// RateQuote is an ExchangeRate as returned from the rate table, annotated with
// whether the entry is older than the configured max age. A stale rate is
// still returned so the caller can decide to degrade instead of hiding it.
type RateQuote struct {
	ExchangeRate
	Stale bool `json:"stale"`
}
