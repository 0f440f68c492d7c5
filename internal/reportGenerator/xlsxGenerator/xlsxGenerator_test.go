package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
)

func TestGenerate(t *testing.T) {
	price := decimal.NewFromInt(120)
	value := decimal.NewFromInt(1200)
	profit := decimal.NewFromInt(200)
	pct := decimal.NewFromInt(20)

	report := model.PortfolioReport{
		BaseCurrency: "EUR",
		Summary: model.PortfolioSummary{
			TotalInvested:         decimal.NewFromInt(1000),
			TotalCost:             decimal.NewFromInt(1000),
			TotalCurrentValue:     decimal.NewFromInt(1200),
			TotalProfit:           decimal.NewFromInt(200),
			TotalProfitPercentage: decimal.NewFromInt(20),
			InvestmentCount:       2,
		},
		Valuations: []model.Valuation{
			{
				Position: model.Position{
					Ticker:       "AAPL",
					TotalShares:  decimal.NewFromInt(10),
					TotalCost:    decimal.NewFromInt(1000),
					AveragePrice: decimal.NewFromInt(100),
					Lots: []model.PurchaseLot{
						{
							Ticker:        "AAPL",
							Shares:        decimal.NewFromInt(10),
							PricePerShare: decimal.NewFromInt(100),
							Currency:      "EUR",
							Date:          time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
						},
					},
				},
				CurrentPrice:         &price,
				CurrentPriceCurrency: "EUR",
				PriceKind:            model.QuoteKnown,
				CurrentValue:         &value,
				TotalProfit:          &profit,
				ProfitPercentage:     &pct,
			},
			{
				Position: model.Position{
					Ticker:      "BROKEN",
					TotalShares: decimal.NewFromInt(1),
					TotalCost:   decimal.NewFromInt(50),
				},
				PriceKind: model.QuoteUnavailable,
				Error:     "price lookup failed",
			},
		},
	}

	gen := New()
	fileBytes, ext, err := gen.Generate(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f, err := excelize.OpenReader(bytes.NewReader(fileBytes))
	require.NoError(t, err)
	defer f.Close()

	ticker, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", ticker)

	status, err := f.GetCellValue(sheetName, "J4")
	require.NoError(t, err)
	assert.Equal(t, "price lookup failed", status)
}
