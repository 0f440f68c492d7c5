package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

// PriceLookupFunc resolves the current quote for a ticker. Implementations
// may hit a feed, a cache or an already-awaited snapshot; the valuation
// engine itself performs no I/O.
type PriceLookupFunc func(ticker string) (model.Quote, error)

// ConvertFunc converts an amount between currencies.
type ConvertFunc func(amount decimal.Decimal, from, to string) (decimal.Decimal, error)

var hundred = decimal.NewFromInt(100)

// Valuate prices a single position in baseCurrency. Any failure of the
// price lookup or the FX conversion is absorbed into the returned
// Valuation's Error field with all numeric fields nil; it never aborts the
// caller, so one ticker's feed outage cannot poison the rest of a portfolio.
// An unconverted foreign-currency price is never used silently.
func Valuate(pos model.Position, priceLookup PriceLookupFunc, fx ConvertFunc, baseCurrency string) model.Valuation {
	valuation := model.Valuation{Position: pos}

	quote, err := priceLookup(pos.Ticker)
	if err != nil {
		return failValuation(valuation, fmt.Sprintf("price lookup failed: %s", err))
	}

	if quote.Kind == model.QuoteUnavailable {
		reason := quote.Reason
		if reason == "" {
			reason = "price unavailable"
		}
		return failValuation(valuation, reason)
	}

	price := quote.Price
	currency := quote.Currency
	if currency == "" {
		currency = baseCurrency
	}

	if currency != baseCurrency {
		converted, err := fx(price, currency, baseCurrency)
		if err != nil {
			return failValuation(valuation, fmt.Sprintf("fx conversion %s->%s failed: %s", currency, baseCurrency, err))
		}
		price = converted
	}

	currentValue := pos.TotalShares.Mul(price)
	costBasis := pos.CostBasis()
	totalProfit := currentValue.Sub(costBasis)

	valuation.CurrentPrice = &price
	valuation.CurrentPriceCurrency = currency
	valuation.PriceKind = quote.Kind
	valuation.CurrentValue = &currentValue
	valuation.TotalProfit = &totalProfit

	// cost-plus-fees denominator; a zero-cost position (gifted lots) has no
	// meaningful return percentage.
	if costBasis.IsPositive() {
		pct := totalProfit.Div(costBasis).Mul(hundred)
		valuation.ProfitPercentage = &pct
	}

	return valuation
}

func failValuation(v model.Valuation, reason string) model.Valuation {
	v.CurrentPrice = nil
	v.CurrentValue = nil
	v.TotalProfit = nil
	v.ProfitPercentage = nil
	v.PriceKind = model.QuoteUnavailable
	v.Error = reason
	return v
}
