package restConverter

import (
	"time"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/restModel"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/portfolio"
)

const dateLayout = "2006-01-02"

// ConvertPurchaseRequest turns the wire payload into a LotDraft. The date
// is the only field parsed here; everything else is normalized by the
// service layer.
func ConvertPurchaseRequest(req restModel.PurchaseRequest) (model.LotDraft, error) {
	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return model.LotDraft{}, &portfolio.ValidationError{Field: "date", Reason: "must be in YYYY-MM-DD format"}
		}
		date = parsed
	}

	return model.LotDraft{
		Ticker:        req.Ticker,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		Currency:      req.Currency,
		Fees:          req.Fees,
		Date:          date,
	}, nil
}

func ConvertPurchaseLot(lot model.PurchaseLot) restModel.PurchaseResponse {
	resp := restModel.PurchaseResponse{
		PurchaseID:    lot.PurchaseID,
		Ticker:        lot.Ticker,
		Shares:        lot.Shares,
		PricePerShare: lot.PricePerShare,
		Currency:      lot.Currency,
		Fees:          lot.Fees,
		Date:          lot.Date.Format(dateLayout),
	}
	if !lot.CreatedAt.IsZero() {
		resp.CreatedAt = lot.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func ConvertPurchaseLots(lots []model.PurchaseLot) []restModel.PurchaseResponse {
	res := make([]restModel.PurchaseResponse, 0, len(lots))
	for _, lot := range lots {
		res = append(res, ConvertPurchaseLot(lot))
	}
	return res
}

func ConvertValuation(v model.Valuation) restModel.ValuationResponse {
	return restModel.ValuationResponse{
		Ticker:               v.Ticker,
		TotalShares:          v.TotalShares,
		AveragePrice:         v.AveragePrice,
		TotalCost:            v.TotalCost,
		TotalFees:            v.TotalFees,
		CostBasis:            v.CostBasis(),
		CurrentPrice:         v.CurrentPrice,
		CurrentPriceCurrency: v.CurrentPriceCurrency,
		PriceKind:            string(v.PriceKind),
		CurrentValue:         v.CurrentValue,
		TotalProfit:          v.TotalProfit,
		ProfitPercentage:     v.ProfitPercentage,
		Error:                v.Error,
	}
}

func ConvertPortfolioReport(report model.PortfolioReport) restModel.PortfolioReportResponse {
	valuations := make([]restModel.ValuationResponse, 0, len(report.Valuations))
	for _, v := range report.Valuations {
		valuations = append(valuations, ConvertValuation(v))
	}

	return restModel.PortfolioReportResponse{
		BaseCurrency: report.BaseCurrency,
		Summary: restModel.SummaryResponse{
			TotalInvested:         report.Summary.TotalInvested,
			TotalCosts:            report.Summary.TotalCosts,
			TotalCost:             report.Summary.TotalCost,
			TotalCurrentValue:     report.Summary.TotalCurrentValue,
			TotalProfit:           report.Summary.TotalProfit,
			TotalProfitPercentage: report.Summary.TotalProfitPercentage,
			InvestmentCount:       report.Summary.InvestmentCount,
		},
		Valuations: valuations,
	}
}

func ConvertInvestmentSummary(summary model.InvestmentSummary) restModel.InvestmentSummaryResponse {
	return restModel.InvestmentSummaryResponse{
		BaseCurrency: summary.BaseCurrency,
		Valuation:    ConvertValuation(summary.Valuation),
	}
}
