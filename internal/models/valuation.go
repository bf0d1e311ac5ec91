package models

// StockValuation is the valued form of a single holding. When the quote was
// unavailable, Err is true and the numeric fields stay zero; such rows are
// shown to the user but excluded from every sum.
type StockValuation struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price,omitempty"`
	Change      float64 `json:"change,omitempty"`
	Value       float64 `json:"value,omitempty"`        // quantity * price, rounded to 2 decimals
	ValueChange float64 `json:"value_change,omitempty"` // quantity * change, rounded to 2 decimals
	Err         bool    `json:"error,omitempty"`
}

// AccountValuation aggregates one account's holdings.
type AccountValuation struct {
	Account     string  `json:"account"`
	TotalValue  float64 `json:"total_value"`  // sum over priced holdings only
	TotalChange float64 `json:"total_change"` // sum over priced holdings only
	StockCount  int     `json:"stock_count"`  // all holdings, priced or not
}

// PortfolioSummary is the whole-portfolio view: every account plus grand
// totals, which sum the already-rounded per-account figures.
type PortfolioSummary struct {
	TotalValue  float64            `json:"total_value"`
	TotalChange float64            `json:"total_change"`
	Accounts    []AccountValuation `json:"accounts"`
}
