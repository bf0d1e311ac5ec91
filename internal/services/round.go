package services

import "github.com/shopspring/decimal"

// round2 rounds to 2 decimal places, half away from zero. Every monetary
// figure in the system is rounded at the point of computation with this
// function, so aggregates are reproducible regardless of display code.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
