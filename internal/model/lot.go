package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLot is a single purchase transaction of one ticker.
type PurchaseLot struct {
	PurchaseID    string
	UserID        string
	Ticker        string
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
	Currency      string
	Fees          decimal.Decimal
	Date          time.Time
	CreatedAt     time.Time
}

// LotDraft carries the user-supplied fields of a purchase before the
// store assigns an id. Normalization and validation happen at the
// service boundary, never inside the aggregation core.
type LotDraft struct {
	Ticker        string
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
	Currency      string
	Fees          decimal.Decimal
	Date          time.Time
}
