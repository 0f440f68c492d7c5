package portfolio

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

func TestComputePortfolioPartialFailure(t *testing.T) {
	lots := []model.PurchaseLot{
		lot("p1", "AAPL", "10", "100", "5", 1),
		lot("p2", "AAPL", "5", "130", "0", 2),
		lot("p3", "MSFT", "4", "250", "2", 3),
	}

	priceLookup := func(ticker string) (model.Quote, error) {
		if ticker == "MSFT" {
			return model.Quote{}, errors.New("feed down")
		}
		return model.Quote{Ticker: ticker, Price: decimal.RequireFromString("120"), Currency: "EUR", Kind: model.QuoteKnown}, nil
	}
	fx := func(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
		return decimal.Decimal{}, errors.New("unexpected fx call")
	}

	summary, valuations, err := ComputePortfolio(lots, priceLookup, fx, "EUR")
	require.NoError(t, err, "one ticker's feed outage must not fail the portfolio")

	require.Len(t, valuations, 2)
	assert.Equal(t, "AAPL", valuations[0].Ticker)
	assert.Equal(t, "MSFT", valuations[1].Ticker)
	assert.False(t, valuations[0].Failed())
	assert.True(t, valuations[1].Failed())

	assert.Equal(t, 2, summary.InvestmentCount)
	// AAPL 1650 + MSFT 1000 invested, + 7 fees
	assert.True(t, summary.TotalInvested.Equal(decimal.RequireFromString("2650")))
	assert.True(t, summary.TotalCost.Equal(decimal.RequireFromString("2657")))
	// only AAPL priced
	assert.True(t, summary.TotalCurrentValue.Equal(decimal.RequireFromString("1800")))
	assert.True(t, summary.TotalProfit.Equal(decimal.RequireFromString("145")))
}

func TestComputePortfolioDefaultsBaseCurrency(t *testing.T) {
	lots := []model.PurchaseLot{lot("p1", "AAPL", "1", "100", "0", 1)}

	priceLookup := func(ticker string) (model.Quote, error) {
		return model.Quote{Ticker: ticker, Price: decimal.RequireFromString("100"), Currency: "USD", Kind: model.QuoteKnown}, nil
	}
	fx := func(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
		assert.Equal(t, DefaultBaseCurrency, to)
		return amount, nil
	}

	_, valuations, err := ComputePortfolio(lots, priceLookup, fx, "")
	require.NoError(t, err)
	require.Len(t, valuations, 1)
	require.False(t, valuations[0].Failed())
}

func TestComputePortfolioValidationIsFatal(t *testing.T) {
	lots := []model.PurchaseLot{lot("p1", "AAPL", "-1", "100", "0", 1)}

	_, _, err := ComputePortfolio(lots, nil, nil, "EUR")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestComputePosition(t *testing.T) {
	lots := []model.PurchaseLot{
		lot("p1", "AAPL", "10", "100", "5", 1),
		lot("p2", "MSFT", "4", "250", "2", 3),
	}

	pos, ok, err := ComputePosition(lots, "aapl")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "AAPL", pos.Ticker)
	assert.True(t, pos.TotalShares.Equal(decimal.RequireFromString("10")))

	_, ok, err = ComputePosition(lots, "TSLA")
	require.NoError(t, err)
	assert.False(t, ok)
}
