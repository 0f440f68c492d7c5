package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/portfoliotrack/portfolio_tracker_api/config"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/utils"
)

const (
	quoteKeyTemplate = "quote:%s"
	rateKeyTemplate  = "rate:%s:%s"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetQuote(ctx context.Context, quote model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetQuote"
	slog.Debug("SetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", quote.Ticker))

	quoteJson, err := json.Marshal(quote)
	if err != nil {
		slog.Error("can't marshall quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.Any("quote", quote))
		return errors.New("can't marshall quote")
	}

	key := fmt.Sprintf(quoteKeyTemplate, quote.Ticker)
	_, err = r.redis.Set(ctx, key, quoteJson, r.cfg.Cache.QuotesExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	slog.Debug("SetQuote completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes []model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetQuotes"
	slog.Debug("SetQuotes start", slog.String("rqID", rqID), slog.String("op", op))

	pipe := r.redis.Pipeline()
	for _, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error("can't marshall quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.Any("quote", quote))
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, fmt.Sprintf(quoteKeyTemplate, quote.Ticker), quoteJson, r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.GetQuote"
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))

	key := fmt.Sprintf(quoteKeyTemplate, ticker)
	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		return model.Quote{}, err
	}

	quote := model.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Quote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op))

	return quote, nil
}

func (r *RedisCache) SetRate(ctx context.Context, from, to string, rate decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetRate"
	slog.Debug("SetRate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("from", from), slog.String("to", to))

	key := fmt.Sprintf(rateKeyTemplate, from, to)
	_, err := r.redis.Set(ctx, key, rate.String(), r.cfg.Cache.RatesExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	slog.Debug("SetRate completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (r *RedisCache) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.GetRate"
	slog.Debug("GetRate start", slog.String("rqID", rqID), slog.String("op", op), slog.String("from", from), slog.String("to", to))

	key := fmt.Sprintf(rateKeyTemplate, from, to)
	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		return decimal.Decimal{}, err
	}

	rate, err := decimal.NewFromString(res)
	if err != nil {
		slog.Error(
			"can't parse cached rate",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return decimal.Decimal{}, errors.New("can't parse cached rate")
	}

	slog.Debug("GetRate finished", slog.String("rqID", rqID), slog.String("op", op))

	return rate, nil
}
