package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliotrack/portfolio_tracker_api/config"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/restModel"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/portfolio"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/service"
)

type fakeService struct {
	lot       model.PurchaseLot
	report    model.PortfolioReport
	summary   model.InvestmentSummary
	err       error
	gotUserID string
}

func (f *fakeService) AddPurchase(_ context.Context, userID string, draft model.LotDraft) (model.PurchaseLot, error) {
	f.gotUserID = userID
	if f.err != nil {
		return model.PurchaseLot{}, f.err
	}
	return model.PurchaseLot{
		PurchaseID:    "p1",
		UserID:        userID,
		Ticker:        draft.Ticker,
		Shares:        draft.Shares,
		PricePerShare: draft.PricePerShare,
		Currency:      draft.Currency,
		Fees:          draft.Fees,
		Date:          draft.Date,
	}, nil
}

func (f *fakeService) AddPurchases(_ context.Context, userID string, drafts []model.LotDraft) ([]model.PurchaseLot, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	lots := make([]model.PurchaseLot, 0, len(drafts))
	for i, draft := range drafts {
		lots = append(lots, model.PurchaseLot{
			PurchaseID: fmt.Sprintf("p%d", i+1),
			UserID:     userID,
			Ticker:     draft.Ticker,
			Shares:     draft.Shares,
		})
	}
	return lots, nil
}

func (f *fakeService) GetPurchase(_ context.Context, userID, _ string) (model.PurchaseLot, error) {
	f.gotUserID = userID
	return f.lot, f.err
}

func (f *fakeService) GetPurchases(_ context.Context, userID string) ([]model.PurchaseLot, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return []model.PurchaseLot{f.lot}, nil
}

func (f *fakeService) UpdatePurchase(_ context.Context, userID, _ string, _ model.LotDraft) (model.PurchaseLot, error) {
	f.gotUserID = userID
	return f.lot, f.err
}

func (f *fakeService) DeletePurchase(_ context.Context, userID, _ string) error {
	f.gotUserID = userID
	return f.err
}

func (f *fakeService) GetPortfolioSummary(_ context.Context, userID string) (model.PortfolioReport, error) {
	f.gotUserID = userID
	return f.report, f.err
}

func (f *fakeService) GetInvestmentSummary(_ context.Context, userID, _ string) (model.InvestmentSummary, error) {
	f.gotUserID = userID
	return f.summary, f.err
}

func (f *fakeService) GeneratePortfolioReport(_ context.Context, userID string) ([]byte, string, string, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, "", "", f.err
	}
	return []byte("xlsx"), "portfolio.xlsx", "https://drive.example/portfolio.xlsx", nil
}

func newTestRouter(svc PortfolioService) http.Handler {
	cfg := &config.Config{}
	return NewRouter(cfg, NewController(svc))
}

func TestAddPurchase(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{"ticker":"AAPL","shares":"10","pricePerShare":"100","currency":"USD","fees":"5","date":"2026-03-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", strings.NewReader(body))
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", svc.gotUserID)

	var resp restModel.PurchaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp.PurchaseID)
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, "2026-03-01", resp.Date)
}

func TestAddPurchasesBatch(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	body := `{"purchases":[
		{"ticker":"AAPL","shares":"10","pricePerShare":"100","date":"2026-03-01"},
		{"ticker":"MSFT","shares":"2","pricePerShare":"400","date":"2026-03-02"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases/batch", strings.NewReader(body))
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Purchases []restModel.PurchaseResponse `json:"purchases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Purchases, 2)
	assert.Equal(t, "AAPL", resp.Purchases[0].Ticker)
	assert.Equal(t, "MSFT", resp.Purchases[1].Ticker)
}

func TestAddPurchaseMalformedDate(t *testing.T) {
	router := newTestRouter(&fakeService{})

	body := `{"ticker":"AAPL","shares":"10","pricePerShare":"100","date":"01.03.2026"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", strings.NewReader(body))
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddPurchaseValidationError(t *testing.T) {
	svc := &fakeService{err: &portfolio.ValidationError{Field: "shares", Reason: "must be positive"}}
	router := newTestRouter(svc)

	body := `{"ticker":"AAPL","shares":"0","pricePerShare":"100","date":"2026-03-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", strings.NewReader(body))
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissingUserIDHeader(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPurchaseNotFound(t *testing.T) {
	svc := &fakeService{err: service.ErrNotFound}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchases/missing", nil)
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePurchase(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/purchases/p1", nil)
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetPortfolioSummary(t *testing.T) {
	price := decimal.NewFromInt(120)
	value := decimal.NewFromInt(1200)
	profit := decimal.NewFromInt(200)

	svc := &fakeService{report: model.PortfolioReport{
		BaseCurrency: "EUR",
		Summary: model.PortfolioSummary{
			TotalInvested:     decimal.NewFromInt(1000),
			TotalCurrentValue: decimal.NewFromInt(1200),
			InvestmentCount:   1,
		},
		Valuations: []model.Valuation{
			{
				Position: model.Position{
					Ticker:       "AAPL",
					TotalShares:  decimal.NewFromInt(10),
					TotalCost:    decimal.NewFromInt(1000),
					AveragePrice: decimal.NewFromInt(100),
				},
				CurrentPrice:         &price,
				CurrentPriceCurrency: "EUR",
				PriceKind:            model.QuoteKnown,
				CurrentValue:         &value,
				TotalProfit:          &profit,
			},
		},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/investments/summary", nil)
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp restModel.PortfolioReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "EUR", resp.BaseCurrency)
	require.Len(t, resp.Valuations, 1)
	assert.Equal(t, "AAPL", resp.Valuations[0].Ticker)
	assert.True(t, value.Equal(*resp.Valuations[0].CurrentValue))
}

func TestGetInvestmentSummary(t *testing.T) {
	svc := &fakeService{summary: model.InvestmentSummary{
		BaseCurrency: "EUR",
		Valuation: model.Valuation{
			Position:  model.Position{Ticker: "AAPL", TotalShares: decimal.NewFromInt(10)},
			PriceKind: model.QuoteEstimated,
		},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/investments/AAPL/summary", nil)
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp restModel.InvestmentSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(model.QuoteEstimated), resp.Valuation.PriceKind)
}

func TestGeneratePortfolioReport(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio/report", nil)
	req.Header.Set("X-User-ID", "u1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "xlsx", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "portfolio.xlsx")
	assert.Equal(t, "https://drive.example/portfolio.xlsx", rec.Header().Get("X-Download-Link"))
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
