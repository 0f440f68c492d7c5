package restModel

import "github.com/shopspring/decimal"

type PurchaseRequest struct {
	Ticker        string          `json:"ticker"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	Currency      string          `json:"currency"`
	Fees          decimal.Decimal `json:"fees"`
	Date          string          `json:"date"`
}

type BatchPurchaseRequest struct {
	Purchases []PurchaseRequest `json:"purchases"`
}

type PurchaseResponse struct {
	PurchaseID    string          `json:"purchaseId"`
	Ticker        string          `json:"ticker"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	Currency      string          `json:"currency"`
	Fees          decimal.Decimal `json:"fees"`
	Date          string          `json:"date"`
	CreatedAt     string          `json:"createdAt,omitempty"`
}

type ValuationResponse struct {
	Ticker               string           `json:"ticker"`
	TotalShares          decimal.Decimal  `json:"totalShares"`
	AveragePrice         decimal.Decimal  `json:"averagePrice"`
	TotalCost            decimal.Decimal  `json:"totalCost"`
	TotalFees            decimal.Decimal  `json:"totalFees"`
	CostBasis            decimal.Decimal  `json:"costBasis"`
	CurrentPrice         *decimal.Decimal `json:"currentPrice"`
	CurrentPriceCurrency string           `json:"currentPriceCurrency,omitempty"`
	PriceKind            string           `json:"priceKind,omitempty"`
	CurrentValue         *decimal.Decimal `json:"currentValue"`
	TotalProfit          *decimal.Decimal `json:"totalProfit"`
	ProfitPercentage     *decimal.Decimal `json:"profitPercentage"`
	Error                string           `json:"error,omitempty"`
}

type SummaryResponse struct {
	TotalInvested         decimal.Decimal `json:"totalInvested"`
	TotalCosts            decimal.Decimal `json:"totalCosts"`
	TotalCost             decimal.Decimal `json:"totalCost"`
	TotalCurrentValue     decimal.Decimal `json:"totalCurrentValue"`
	TotalProfit           decimal.Decimal `json:"totalProfit"`
	TotalProfitPercentage decimal.Decimal `json:"totalProfitPercentage"`
	InvestmentCount       int             `json:"investmentCount"`
}

type PortfolioReportResponse struct {
	BaseCurrency string              `json:"baseCurrency"`
	Summary      SummaryResponse     `json:"summary"`
	Valuations   []ValuationResponse `json:"valuations"`
}

type InvestmentSummaryResponse struct {
	BaseCurrency string            `json:"baseCurrency"`
	Valuation    ValuationResponse `json:"valuation"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
