package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

func valued(ticker, cost, fees, value string) model.Valuation {
	v := model.Valuation{Position: position(ticker, "1", cost, fees)}
	cv := decimal.RequireFromString(value)
	profit := cv.Sub(v.CostBasis())
	v.CurrentValue = &cv
	v.TotalProfit = &profit
	v.PriceKind = model.QuoteKnown
	return v
}

func errored(ticker, cost, fees, reason string) model.Valuation {
	return model.Valuation{
		Position:  position(ticker, "1", cost, fees),
		PriceKind: model.QuoteUnavailable,
		Error:     reason,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.True(t, summary.TotalInvested.IsZero())
	assert.True(t, summary.TotalCosts.IsZero())
	assert.True(t, summary.TotalCost.IsZero())
	assert.True(t, summary.TotalCurrentValue.IsZero())
	assert.True(t, summary.TotalProfit.IsZero())
	assert.Equal(t, 0, summary.InvestmentCount)
}

func TestSummarize(t *testing.T) {
	valuations := []model.Valuation{
		valued("AAPL", "1650", "5", "1800"),
		valued("MSFT", "2000", "10", "1900"),
	}

	summary := Summarize(valuations)

	assert.Equal(t, 2, summary.InvestmentCount)
	assert.True(t, summary.TotalInvested.Equal(decimal.RequireFromString("3650")), "totalInvested = %s", summary.TotalInvested)
	assert.True(t, summary.TotalCosts.Equal(decimal.RequireFromString("15")))
	assert.True(t, summary.TotalCost.Equal(decimal.RequireFromString("3665")))
	assert.True(t, summary.TotalCurrentValue.Equal(decimal.RequireFromString("3700")))
	// (1800-1655) + (1900-2010)
	assert.True(t, summary.TotalProfit.Equal(decimal.RequireFromString("35")), "totalProfit = %s", summary.TotalProfit)
}

func TestSummarizePartialFailure(t *testing.T) {
	valuations := []model.Valuation{
		valued("AAPL", "1650", "5", "1800"),
		errored("MSFT", "2000", "10", "price lookup failed"),
	}

	summary := Summarize(valuations)

	// errored ticker still counted and its cost basis still included
	assert.Equal(t, 2, summary.InvestmentCount)
	assert.True(t, summary.TotalInvested.Equal(decimal.RequireFromString("3650")))
	assert.True(t, summary.TotalCost.Equal(decimal.RequireFromString("3665")))

	// but it contributes 0 to value and to profit, not a penalty
	assert.True(t, summary.TotalCurrentValue.Equal(decimal.RequireFromString("1800")))
	assert.True(t, summary.TotalProfit.Equal(decimal.RequireFromString("145")))
}

func TestSummarizeAllFailed(t *testing.T) {
	valuations := []model.Valuation{
		errored("AAPL", "100", "0", "down"),
		errored("MSFT", "200", "0", "down"),
	}

	summary := Summarize(valuations)

	assert.Equal(t, 2, summary.InvestmentCount)
	assert.True(t, summary.TotalCost.Equal(decimal.RequireFromString("300")))
	assert.True(t, summary.TotalCurrentValue.IsZero())
	assert.True(t, summary.TotalProfit.IsZero())
	assert.True(t, summary.TotalProfitPercentage.IsZero())
}

func TestSummarizeProfitPercentage(t *testing.T) {
	valuations := []model.Valuation{
		valued("AAPL", "1000", "0", "1100"),
	}

	summary := Summarize(valuations)
	require.False(t, summary.TotalProfitPercentage.IsZero())
	assert.Equal(t, "10.00", summary.TotalProfitPercentage.StringFixed(2))
}
