package portfolio

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

func position(ticker, shares, cost, fees string) model.Position {
	totalShares := decimal.RequireFromString(shares)
	totalCost := decimal.RequireFromString(cost)
	pos := model.Position{
		Ticker:      ticker,
		TotalShares: totalShares,
		TotalCost:   totalCost,
		TotalFees:   decimal.RequireFromString(fees),
	}
	if totalShares.IsPositive() {
		pos.AveragePrice = totalCost.Div(totalShares)
	}
	return pos
}

func knownQuote(price, currency string) PriceLookupFunc {
	return func(ticker string) (model.Quote, error) {
		return model.Quote{
			Ticker:   ticker,
			Price:    decimal.RequireFromString(price),
			Currency: currency,
			Kind:     model.QuoteKnown,
		}, nil
	}
}

func noFx(t *testing.T) ConvertFunc {
	return func(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
		t.Fatalf("unexpected fx call %s->%s", from, to)
		return decimal.Decimal{}, nil
	}
}

func TestValuateSameCurrency(t *testing.T) {
	// 15 shares, cost 1650 + 5 fees, current price 120
	pos := position("AAPL", "15", "1650", "5")

	v := Valuate(pos, knownQuote("120", "EUR"), noFx(t), "EUR")

	require.Empty(t, v.Error)
	require.NotNil(t, v.CurrentValue)
	assert.True(t, v.CurrentValue.Equal(decimal.RequireFromString("1800")), "currentValue = %s", v.CurrentValue)
	require.NotNil(t, v.TotalProfit)
	assert.True(t, v.TotalProfit.Equal(decimal.RequireFromString("145")), "totalProfit = %s", v.TotalProfit)
	require.NotNil(t, v.ProfitPercentage)
	assert.Equal(t, "8.76", v.ProfitPercentage.StringFixed(2))
	assert.Equal(t, model.QuoteKnown, v.PriceKind)
}

func TestValuateFxConversion(t *testing.T) {
	pos := position("AAPL", "10", "1000", "0")

	fxCalled := false
	fx := func(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
		fxCalled = true
		assert.Equal(t, "USD", from)
		assert.Equal(t, "EUR", to)
		return amount.Mul(decimal.RequireFromString("0.9")), nil
	}

	v := Valuate(pos, knownQuote("120", "USD"), fx, "EUR")

	require.True(t, fxCalled)
	require.Empty(t, v.Error)
	require.NotNil(t, v.CurrentPrice)
	assert.True(t, v.CurrentPrice.Equal(decimal.RequireFromString("108")))
	assert.Equal(t, "USD", v.CurrentPriceCurrency)
	require.NotNil(t, v.CurrentValue)
	assert.True(t, v.CurrentValue.Equal(decimal.RequireFromString("1080")))
}

func TestValuatePriceLookupFailure(t *testing.T) {
	pos := position("AAPL", "10", "1000", "5")

	failing := func(ticker string) (model.Quote, error) {
		return model.Quote{}, errors.New("feed timeout")
	}

	v := Valuate(pos, failing, noFx(t), "EUR")

	assert.True(t, v.Failed())
	assert.Contains(t, v.Error, "feed timeout")
	assert.Nil(t, v.CurrentPrice)
	assert.Nil(t, v.CurrentValue)
	assert.Nil(t, v.TotalProfit)
	assert.Nil(t, v.ProfitPercentage)
	// cost basis stays visible even without a price
	assert.True(t, v.TotalCost.Equal(decimal.RequireFromString("1000")))
}

func TestValuateUnavailableQuote(t *testing.T) {
	pos := position("AAPL", "10", "1000", "0")

	unavailable := func(ticker string) (model.Quote, error) {
		return model.Quote{Ticker: ticker, Kind: model.QuoteUnavailable, Reason: "no price for ticker"}, nil
	}

	v := Valuate(pos, unavailable, noFx(t), "EUR")

	assert.True(t, v.Failed())
	assert.Equal(t, "no price for ticker", v.Error)
	assert.Nil(t, v.CurrentValue)
}

func TestValuateFxFailure(t *testing.T) {
	pos := position("AAPL", "10", "1000", "0")

	fx := func(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
		return decimal.Decimal{}, errors.New("rates unavailable")
	}

	v := Valuate(pos, knownQuote("120", "USD"), fx, "EUR")

	// fx failure must behave exactly like a price failure, never fall back
	// to the unconverted price
	assert.True(t, v.Failed())
	assert.Contains(t, v.Error, "rates unavailable")
	assert.Nil(t, v.CurrentValue)
	assert.Nil(t, v.TotalProfit)
}

func TestValuateZeroCostBasis(t *testing.T) {
	pos := position("GIFT", "10", "0", "0")

	v := Valuate(pos, knownQuote("50", "EUR"), noFx(t), "EUR")

	require.Empty(t, v.Error)
	require.NotNil(t, v.CurrentValue)
	assert.True(t, v.CurrentValue.Equal(decimal.RequireFromString("500")))
	require.NotNil(t, v.TotalProfit)
	assert.True(t, v.TotalProfit.Equal(decimal.RequireFromString("500")))
	assert.Nil(t, v.ProfitPercentage, "no percentage on a zero-cost position")
}

func TestValuateEstimatedQuoteKeepsTag(t *testing.T) {
	pos := position("AAPL", "10", "1000", "0")

	estimated := func(ticker string) (model.Quote, error) {
		return model.Quote{
			Ticker:   ticker,
			Price:    decimal.RequireFromString("100"),
			Currency: "EUR",
			Kind:     model.QuoteEstimated,
			Reason:   "average purchase price",
		}, nil
	}

	v := Valuate(pos, estimated, noFx(t), "EUR")

	require.Empty(t, v.Error)
	assert.Equal(t, model.QuoteEstimated, v.PriceKind)
	require.NotNil(t, v.CurrentValue)
	assert.True(t, v.CurrentValue.Equal(decimal.RequireFromString("1000")))
}

func TestValuateEmptyQuoteCurrencyAssumesBase(t *testing.T) {
	pos := position("AAPL", "1", "100", "0")

	v := Valuate(pos, knownQuote("110", ""), noFx(t), "EUR")

	require.Empty(t, v.Error)
	assert.Equal(t, "EUR", v.CurrentPriceCurrency)
	assert.True(t, v.CurrentValue.Equal(decimal.RequireFromString("110")))
}
