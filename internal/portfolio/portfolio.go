// Package portfolio is the pure aggregation and valuation core: an
// unordered set of purchase lots in, per-ticker positions and portfolio
// totals out. It holds no state, performs no I/O and owns no caching;
// price and FX lookups are injected by the caller.
package portfolio

import (
	"sort"
	"strings"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

const DefaultBaseCurrency = "EUR"

// ComputePortfolio runs the full pipeline over one lot snapshot:
// aggregate -> valuate per ticker -> summarize. Per-ticker price/FX
// failures end up inside the corresponding Valuation; only malformed lot
// data fails the whole call. Valuations are returned in ticker order.
func ComputePortfolio(lots []model.PurchaseLot, priceLookup PriceLookupFunc, fx ConvertFunc, baseCurrency string) (model.PortfolioSummary, []model.Valuation, error) {
	if baseCurrency == "" {
		baseCurrency = DefaultBaseCurrency
	}

	positions, err := Aggregate(lots)
	if err != nil {
		return model.PortfolioSummary{}, nil, err
	}

	tickers := make([]string, 0, len(positions))
	for ticker := range positions {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	valuations := make([]model.Valuation, 0, len(tickers))
	for _, ticker := range tickers {
		valuations = append(valuations, Valuate(positions[ticker], priceLookup, fx, baseCurrency))
	}

	return Summarize(valuations), valuations, nil
}

// ComputePosition aggregates the snapshot and returns the position for a
// single ticker. ok is false when the ticker holds no lots.
func ComputePosition(lots []model.PurchaseLot, ticker string) (model.Position, bool, error) {
	positions, err := Aggregate(lots)
	if err != nil {
		return model.Position{}, false, err
	}

	pos, ok := positions[strings.ToUpper(strings.TrimSpace(ticker))]
	return pos, ok, nil
}
