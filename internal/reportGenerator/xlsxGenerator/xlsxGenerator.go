package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/utils"
)

const sheetName = "Portfolio"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	_, err = f.NewSheet(sheetName)
	if err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillSheet(f, report); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, report model.PortfolioReport) error {
	if err := g.writeHeader(f, "A1", "E1", fmt.Sprintf("Positions (%s)", report.BaseCurrency), "#cfe2f3"); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "ticker")
	_ = f.SetCellStr(sheetName, "B2", "shares")
	_ = f.SetCellStr(sheetName, "C2", "avg price")
	_ = f.SetCellStr(sheetName, "D2", "cost basis")
	_ = f.SetCellStr(sheetName, "E2", "fees")

	if err := g.writeHeader(f, "F1", "I1", "Valuation", "#d9ead3"); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "F2", "current price")
	_ = f.SetCellStr(sheetName, "G2", "current value")
	_ = f.SetCellStr(sheetName, "H2", "profit")
	_ = f.SetCellStr(sheetName, "I2", "profit %")

	_ = f.SetCellStr(sheetName, "J2", "status")

	for i, v := range report.Valuations {
		row := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), v.Ticker)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), v.TotalShares.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), v.AveragePrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), v.CostBasis().InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), v.TotalFees.InexactFloat64())

		if v.Failed() {
			_ = f.SetCellStr(sheetName, fmt.Sprintf("J%d", row), v.Error)
			continue
		}

		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), v.CurrentPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), v.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), v.TotalProfit.InexactFloat64())
		if v.ProfitPercentage != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), v.ProfitPercentage.InexactFloat64())
		}
		_ = f.SetCellStr(sheetName, fmt.Sprintf("J%d", row), string(v.PriceKind))
	}

	// summary block below the position table
	rowNum := len(report.Valuations) + 5

	if err := g.writeHeader(f, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("B%d", rowNum), "Summary", "#f9cb9c"); err != nil {
		return err
	}

	summary := report.Summary
	summaryRows := []struct {
		label string
		value float64
	}{
		{"total invested", summary.TotalInvested.InexactFloat64()},
		{"total fees", summary.TotalCosts.InexactFloat64()},
		{"total cost", summary.TotalCost.InexactFloat64()},
		{"current value", summary.TotalCurrentValue.InexactFloat64()},
		{"total profit", summary.TotalProfit.InexactFloat64()},
		{"profit %", summary.TotalProfitPercentage.InexactFloat64()},
		{"investments", float64(summary.InvestmentCount)},
	}

	for _, r := range summaryRows {
		rowNum++
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), r.label)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), r.value)
	}

	// purchase history
	rowNum += 3

	if err := g.writeHeader(f, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("F%d", rowNum), "Purchase history", "#cccccc"); err != nil {
		return err
	}

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "ticker")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), "shares")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), "price per share")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), "fees")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", rowNum), "currency")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", rowNum), "date")

	for _, v := range report.Valuations {
		for _, lot := range v.Lots {
			rowNum++
			_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), lot.Ticker)
			_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), lot.Shares.InexactFloat64())
			_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), lot.PricePerShare.InexactFloat64())
			_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), lot.Fees.InexactFloat64())
			_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", rowNum), lot.Currency)
			_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", rowNum), lot.Date.Format("2006-01-02"))
		}
	}

	return nil
}

func (g *XLSXGenerator) writeHeader(f *excelize.File, fromCell, toCell, title, color string) error {
	if err := f.MergeCell(sheetName, fromCell, toCell); err != nil {
		return err
	}

	f.SetCellValue(sheetName, fromCell, title)

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	return f.SetCellStyle(sheetName, fromCell, fromCell, styleID)
}
