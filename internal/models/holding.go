package models

// Holding is one (account, symbol, quantity) record from the uploaded CSV.
// Quantity is validated to be positive at ingestion and not re-checked later.
type Holding struct {
	Account  string  `json:"account"`
	Symbol   string  `json:"symbol"` // uppercase ticker
	Quantity float64 `json:"quantity"`
}
