// Package trading implements order execution: fee calculation, the
// buy/sell settlement protocol, and the trading service surface.
package trading

import "github.com/jperaltad/tradesim/internal/domain"

// FeeCalculator computes transaction fees from the gross order value.
// Rates are per side; every order pays at least the minimum fee.
type FeeCalculator struct {
	buyRate  float64
	sellRate float64
	minimum  float64
}

// NewFeeCalculator creates a fee calculator with the given per-side
// rates and minimum fee
func NewFeeCalculator(buyRate, sellRate, minimum float64) *FeeCalculator {
	return &FeeCalculator{
		buyRate:  buyRate,
		sellRate: sellRate,
		minimum:  minimum,
	}
}

// Calculate returns the fee for an order of the given side and gross
// value. The fee is the larger of gross * rate and the minimum fee.
func (f *FeeCalculator) Calculate(side domain.TradeSide, gross float64) float64 {
	rate := f.buyRate
	if side == domain.SideSell {
		rate = f.sellRate
	}

	fee := gross * rate
	if fee < f.minimum {
		fee = f.minimum
	}
	return fee
}
