package entity

// AggregateStats is the payload of an "aggregate_stats" message: protocol-wide
// totals displayed on the dashboard. State-style event, latest value wins.
type AggregateStats struct {
	TotalSupplied   float64 `json:"totalSupplied"`
	TotalBorrowed   float64 `json:"totalBorrowed"`
	ActivePositions int     `json:"activePositions"`
	BaseCurrency    string  `json:"baseCurrency"`
}

// PositionUpdate is the payload of a "position_update" message for one owner.
type PositionUpdate struct {
	Owner                string  `json:"owner"`
	CollateralCurrency   string  `json:"collateralCurrency"`
	BorrowCurrency       string  `json:"borrowCurrency"`
	CollateralValue      float64 `json:"collateralValue"`
	BorrowedValue        float64 `json:"borrowedValue"`
	LiquidationThreshold float64 `json:"liquidationThreshold"`
	SafeThreshold        float64 `json:"safeThreshold"`
}

// RateUpdate is the payload of a "rate_update" message.
type RateUpdate struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Rate      float64 `json:"rate"`
	Change24h float64 `json:"change24h"`
	Source    string  `json:"source"`
}

// TransactionEvent is the payload of a "new_transaction" message.
type TransactionEvent struct {
	Hash     string  `json:"hash"`
	Kind     string  `json:"kind"` // e.g. "borrow", "repay", "deposit"
	Owner    string  `json:"owner"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Notification is the payload of a "notification" message shown to the user.
type Notification struct {
	Level   string `json:"level"` // "info", "warning", "error"
	Title   string `json:"title"`
	Body    string `json:"body"`
	Address string `json:"address,omitempty"`
}
