package model

import "github.com/shopspring/decimal"

type QuoteKind string

const (
	// QuoteKnown is a real market quote from the price feed.
	QuoteKnown QuoteKind = "known"
	// QuoteEstimated is a synthetic price derived from the position itself
	// (e.g. average purchase price). Never to be presented as a market quote.
	QuoteEstimated QuoteKind = "estimated"
	// QuoteUnavailable means no usable price exists; Reason says why.
	QuoteUnavailable QuoteKind = "unavailable"
)

type Quote struct {
	Ticker   string
	Price    decimal.Decimal
	Currency string
	Kind     QuoteKind
	Reason   string
}
