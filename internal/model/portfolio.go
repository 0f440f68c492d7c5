package model

import "github.com/shopspring/decimal"

// PortfolioSummary folds all valuations into portfolio-level totals.
// Cost figures cover every position; value and profit cover only the
// positions whose live price resolved (the rest contribute 0 but are
// still counted in InvestmentCount).
type PortfolioSummary struct {
	TotalInvested         decimal.Decimal
	TotalCosts            decimal.Decimal
	TotalCost             decimal.Decimal
	TotalCurrentValue     decimal.Decimal
	TotalProfit           decimal.Decimal
	TotalProfitPercentage decimal.Decimal
	InvestmentCount       int
}

type PortfolioReport struct {
	BaseCurrency string
	Summary      PortfolioSummary
	Valuations   []Valuation
}

// InvestmentSummary is the single-ticker view: the position, its live
// valuation and the contributing purchases.
type InvestmentSummary struct {
	BaseCurrency string
	Valuation    Valuation
}
