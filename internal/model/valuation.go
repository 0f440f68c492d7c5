package model

import "github.com/shopspring/decimal"

// Valuation is the live-priced view of a Position in the base currency.
// Exactly one of {CurrentValue set, Error set} holds: a ticker whose price
// or FX lookup failed keeps its cost basis but has nil numerics and a
// human-readable Error.
type Valuation struct {
	Position

	CurrentPrice         *decimal.Decimal
	CurrentPriceCurrency string
	PriceKind            QuoteKind
	CurrentValue         *decimal.Decimal
	TotalProfit          *decimal.Decimal
	ProfitPercentage     *decimal.Decimal
	Error                string
}

func (v Valuation) Failed() bool {
	return v.Error != ""
}
