package portfolio

import (
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

// Summarize folds valuations into portfolio totals. It is total: it never
// fails, and an empty input yields an all-zero summary.
//
// Cost figures (TotalInvested, TotalCosts, TotalCost) sum over every
// valuation, errored or not: the cost basis is known even when the live
// price is not. Value and profit sum only over valuations that resolved;
// an errored ticker contributes 0 to both sides of the profit delta but
// still counts toward InvestmentCount.
func Summarize(valuations []model.Valuation) model.PortfolioSummary {
	summary := model.PortfolioSummary{InvestmentCount: len(valuations)}

	for _, v := range valuations {
		summary.TotalInvested = summary.TotalInvested.Add(v.TotalCost)
		summary.TotalCosts = summary.TotalCosts.Add(v.TotalFees)

		if v.Failed() {
			continue
		}
		if v.CurrentValue != nil {
			summary.TotalCurrentValue = summary.TotalCurrentValue.Add(*v.CurrentValue)
		}
		if v.TotalProfit != nil {
			summary.TotalProfit = summary.TotalProfit.Add(*v.TotalProfit)
		}
	}

	summary.TotalCost = summary.TotalInvested.Add(summary.TotalCosts)

	pricedCost := summary.TotalCurrentValue.Sub(summary.TotalProfit)
	if pricedCost.IsPositive() {
		summary.TotalProfitPercentage = summary.TotalProfit.Div(pricedCost).Mul(hundred)
	}

	return summary
}
