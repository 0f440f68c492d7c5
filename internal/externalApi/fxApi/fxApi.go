package fxApi

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
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/fxModel"
	"github.com/portfoliotrack/portfolio_tracker_api/utils"
)

// FxApi fetches spot exchange rates from the latest-rates endpoint of the
// FX feed (exchangerate-api compatible: /v4/latest/{base}).
type FxApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *FxApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.FxApi.Url)
	return &FxApi{client: client}
}

func (a *FxApi) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FxApi.GetRate"

	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return decimal.NewFromInt(1), nil
	}

	url := fmt.Sprintf("/v4/latest/%s", from)

	slog.Debug("GetRate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("from", from), slog.String("to", to))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)

	if err != nil {
		slog.Error("error while dialing FxApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return decimal.Decimal{}, err
	}

	if resp.IsError() {
		return decimal.Decimal{}, fmt.Errorf("fx feed status %d", resp.StatusCode())
	}

	rawRates := fxModel.RawRates{}
	err = json.Unmarshal(resp.Body(), &rawRates)
	if err != nil {
		slog.Error("can't unmarshall response into fxModel.RawRates", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return decimal.Decimal{}, err
	}

	rate, ok := rawRates.Rates[to]
	if !ok || rate <= 0 {
		slog.Warn("rate not found in fx feed response", slog.String("rqID", rqID), slog.String("op", op), slog.String("to", to))
		return decimal.Decimal{}, externalApi.ErrNotFound
	}

	slog.Debug("GetRate completed", slog.String("rqID", rqID), slog.String("op", op))

	return decimal.NewFromFloat(rate), nil
}
