package portfolio

import (
	"sort"
	"strings"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

// Aggregate merges purchase lots into one Position per ticker. Grouping is
// case-insensitive (tickers normalized to uppercase), the input slice is
// never mutated and the result does not depend on input ordering: lots
// inside a position are sorted by purchase date, then id.
//
// AveragePrice is the pre-fee weighted average: totalCost / totalShares.
// A ticker without positive shares never appears in the result map.
func Aggregate(lots []model.PurchaseLot) (map[string]model.Position, error) {
	grouped := make(map[string][]model.PurchaseLot)

	for _, lot := range lots {
		if err := validateLot(lot); err != nil {
			return nil, err
		}
		ticker := strings.ToUpper(strings.TrimSpace(lot.Ticker))
		lot.Ticker = ticker
		grouped[ticker] = append(grouped[ticker], lot)
	}

	positions := make(map[string]model.Position, len(grouped))

	for ticker, tickerLots := range grouped {
		sort.Slice(tickerLots, func(i, j int) bool {
			if !tickerLots[i].Date.Equal(tickerLots[j].Date) {
				return tickerLots[i].Date.Before(tickerLots[j].Date)
			}
			return tickerLots[i].PurchaseID < tickerLots[j].PurchaseID
		})

		pos := model.Position{Ticker: ticker, Lots: tickerLots}
		for _, lot := range tickerLots {
			pos.TotalShares = pos.TotalShares.Add(lot.Shares)
			pos.TotalCost = pos.TotalCost.Add(lot.Shares.Mul(lot.PricePerShare))
			pos.TotalFees = pos.TotalFees.Add(lot.Fees)
		}

		// validateLot guarantees positive shares, but a zero-share position
		// must never be emitted regardless.
		if !pos.TotalShares.IsPositive() {
			continue
		}
		pos.AveragePrice = pos.TotalCost.Div(pos.TotalShares)

		positions[ticker] = pos
	}

	return positions, nil
}

func validateLot(lot model.PurchaseLot) error {
	if strings.TrimSpace(lot.Ticker) == "" {
		return &ValidationError{Field: "ticker", Reason: "must not be empty"}
	}
	if !lot.Shares.IsPositive() {
		return &ValidationError{Field: "shares", Reason: "must be positive"}
	}
	if lot.PricePerShare.IsNegative() {
		return &ValidationError{Field: "pricePerShare", Reason: "must not be negative"}
	}
	if lot.Fees.IsNegative() {
		return &ValidationError{Field: "fees", Reason: "must not be negative"}
	}
	return nil
}
