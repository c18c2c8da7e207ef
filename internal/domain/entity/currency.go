package entity

// CurrencyInfo holds the static registry entry for a single currency.
// Every currency referenced by a balance or rate must have an entry here;
// a missing entry is a lookup failure, not a crash.
type CurrencyInfo struct {
	Symbol          string `json:"symbol" yaml:"symbol"`
	Name            string `json:"name" yaml:"name"`
	DisplayGlyph    string `json:"displayGlyph" yaml:"displayGlyph"`
	ColorToken      string `json:"colorToken" yaml:"colorToken"`
	Decimals        uint8  `json:"decimals" yaml:"decimals"`
	ContractAddress string `json:"contractAddress" yaml:"contractAddress"`
}

// LendingPairConfig holds protocol parameters for a collateral/borrow pair,
// supplied by the external configuration layer.
type LendingPairConfig struct {
	CollateralSymbol     string  `json:"collateralSymbol" yaml:"collateralSymbol"`
	BorrowSymbol         string  `json:"borrowSymbol" yaml:"borrowSymbol"`
	APR                  float64 `json:"apr" yaml:"apr"`
	MaxLoanToValue       float64 `json:"maxLoanToValue" yaml:"maxLoanToValue"`
	LiquidationThreshold float64 `json:"liquidationThreshold" yaml:"liquidationThreshold"`
	SafeThreshold        float64 `json:"safeThreshold" yaml:"safeThreshold"`
	Liquidity            float64 `json:"liquidity" yaml:"liquidity"`
	Utilization          float64 `json:"utilization" yaml:"utilization"`
}
