package dbConverter

import (
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/dbModel"
)

func ConvertLot(dbLot dbModel.Lot) model.PurchaseLot {
	return model.PurchaseLot{
		PurchaseID:    dbLot.PurchaseID,
		UserID:        dbLot.UserID,
		Ticker:        dbLot.Ticker,
		Shares:        dbLot.Shares,
		PricePerShare: dbLot.PricePerShare,
		Currency:      dbLot.Currency,
		Fees:          dbLot.Fees,
		Date:          dbLot.PurchaseDate,
		CreatedAt:     dbLot.CreatedAt,
	}
}
