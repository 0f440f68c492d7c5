package model

import "github.com/shopspring/decimal"

// Position is the aggregated holding in one ticker across all its lots.
// Derived, never stored. AveragePrice is pre-fee: fees are tracked
// separately and only enter the cost basis for return calculations.
type Position struct {
	Ticker       string
	TotalShares  decimal.Decimal
	TotalCost    decimal.Decimal
	TotalFees    decimal.Decimal
	AveragePrice decimal.Decimal
	Lots         []PurchaseLot
}

// CostBasis is the total amount paid for the position including fees.
func (p Position) CostBasis() decimal.Decimal {
	return p.TotalCost.Add(p.TotalFees)
}
