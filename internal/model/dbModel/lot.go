package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Lot struct {
	PurchaseID    string          `db:"purchase_id"`
	UserID        string          `db:"user_id"`
	Ticker        string          `db:"ticker"`
	Shares        decimal.Decimal `db:"shares"`
	PricePerShare decimal.Decimal `db:"price_per_share"`
	Currency      string          `db:"currency"`
	Fees          decimal.Decimal `db:"fees"`
	PurchaseDate  time.Time       `db:"purchase_date"`
	CreatedAt     time.Time       `db:"dt_create"`
}
