package priceApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/portfoliotrack/portfolio_tracker_api/config"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/externalApi"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/quoteModel"
	"github.com/portfoliotrack/portfolio_tracker_api/utils"
)

// PriceApi resolves live quotes from the chart endpoint of the price feed
// (Yahoo-compatible: /v8/finance/chart/{ticker}).
type PriceApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *PriceApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.PriceApi.Url).
		SetHeader("User-Agent", "portfolio-tracker/1.0")
	return &PriceApi{client: client}
}

func (a *PriceApi) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PriceApi.GetQuote"
	url := fmt.Sprintf("/v8/finance/chart/%s", ticker)

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing PriceApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	if resp.StatusCode() == 404 {
		return model.Quote{}, externalApi.ErrNotFound
	}
	if resp.IsError() {
		return model.Quote{}, fmt.Errorf("price feed status %d", resp.StatusCode())
	}

	rawChart := quoteModel.RawChart{}
	err = json.Unmarshal(resp.Body(), &rawChart)
	if err != nil {
		slog.Error("can't unmarshall response into quoteModel.RawChart", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	quote, err := a.parseRawChart(ticker, rawChart)
	if err != nil {
		slog.Error("can't parse raw chart", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Quote{}, err
	}

	slog.Debug("GetQuote completed", slog.String("rqID", rqID), slog.String("op", op))

	return quote, nil
}

func (a *PriceApi) parseRawChart(ticker string, rawChart quoteModel.RawChart) (model.Quote, error) {
	if rawChart.Chart.Error != nil {
		return model.Quote{}, fmt.Errorf("price feed error %s: %s", rawChart.Chart.Error.Code, rawChart.Chart.Error.Description)
	}

	if len(rawChart.Chart.Result) == 0 {
		return model.Quote{}, externalApi.ErrNotFound
	}

	meta := rawChart.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return model.Quote{}, externalApi.ErrNotFound
	}

	price := decimal.NewFromFloat(meta.RegularMarketPrice)

	currency := meta.Currency
	if currency == "" {
		currency = DetectCurrency(ticker)
	}

	return model.Quote{
		Ticker:   strings.ToUpper(ticker),
		Price:    price,
		Currency: currency,
		Kind:     model.QuoteKnown,
	}, nil
}

// DetectCurrency guesses the trading currency from the exchange suffix.
// Used only when the feed response carries no currency.
func DetectCurrency(ticker string) string {
	ticker = strings.ToUpper(ticker)

	eurSuffixes := []string{".AS", ".BR", ".DE", ".PA", ".MC", ".IE", ".CO", ".VI"}
	for _, suffix := range eurSuffixes {
		if strings.HasSuffix(ticker, suffix) {
			return "EUR"
		}
	}

	if strings.HasSuffix(ticker, ".L") {
		return "GBP"
	}

	if strings.HasSuffix(ticker, ".SW") {
		return "CHF"
	}

	return "USD"
}
