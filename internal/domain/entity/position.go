package entity

// RiskTier classifies how close a borrowing position is to liquidation.
type RiskTier int

const (
	// RiskTierNone applies to positions with no debt (infinite health factor).
	RiskTierNone RiskTier = iota
	RiskTierSafe
	RiskTierMedium
	RiskTierHigh
	RiskTierCritical
)

func (t RiskTier) String() string {
	switch t {
	case RiskTierNone:
		return "none"
	case RiskTierSafe:
		return "safe"
	case RiskTierMedium:
		return "medium"
	case RiskTierHigh:
		return "high"
	case RiskTierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Rank orders tiers from safest to most dangerous, so that a higher health
// factor can never map to a higher rank.
func (t RiskTier) Rank() int {
	return int(t)
}

// CollateralPosition represents one open borrow for a wallet address.
// Values are USD-equivalent floats; thresholds are percentages.
// Positions are never destroyed locally — absence of updates freezes the last
// known values, which must then be surfaced as stale, not treated as current.
type CollateralPosition struct {
	Owner                string  `json:"owner"`
	CollateralCurrency   string  `json:"collateralCurrency"`
	BorrowCurrency       string  `json:"borrowCurrency"`
	CollateralValue      float64 `json:"collateralValue"`
	BorrowedValue        float64 `json:"borrowedValue"`
	LiquidationThreshold float64 `json:"liquidationThreshold"`
	SafeThreshold        float64 `json:"safeThreshold"`
	UpdatedAt            int64   `json:"updatedAt"` // epoch milliseconds
}

// PositionRisk is the derived view of a position used by the API layer.
// HealthFactor is never stored; it is recomputed from the position on demand.
type PositionRisk struct {
	Position     CollateralPosition `json:"position"`
	HealthFactor float64            `json:"healthFactor"`
	Tier         RiskTier           `json:"-"`
	TierLabel    string             `json:"tier"`
	Stale        bool               `json:"stale"`
}
