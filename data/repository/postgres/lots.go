package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/portfoliotrack/portfolio_tracker_api/data/repository"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/converter/dbConverter"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/dbModel"
	"github.com/portfoliotrack/portfolio_tracker_api/utils"
)

func (r *Postgres) InsertLot(ctx context.Context, userID string, draft model.LotDraft) (lot model.PurchaseLot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertLot"
	query := `
		INSERT INTO purchases(user_id, ticker, shares, price_per_share, currency, fees, purchase_date)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING purchase_id, user_id, ticker, shares, price_per_share, currency, fees, purchase_date, dt_create
		`

	slog.Debug("InsertLot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertLot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertLot completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbLot := dbModel.Lot{}
	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		userID,
		draft.Ticker,
		draft.Shares,
		draft.PricePerShare,
		draft.Currency,
		draft.Fees,
		draft.Date,
	).StructScan(&dbLot)
	if err != nil {
		return model.PurchaseLot{}, err
	}

	return dbConverter.ConvertLot(dbLot), nil
}

func (r *Postgres) ListLots(ctx context.Context, userID string) (lots []model.PurchaseLot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.ListLots"
	query := `
		SELECT purchase_id, user_id, ticker, shares, price_per_share, currency, fees, purchase_date, dt_create
		FROM purchases
		WHERE user_id = $1
		ORDER BY purchase_date, purchase_id
		`

	slog.Debug("ListLots start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("ListLots failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListLots completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbLot dbModel.Lot
		err = rows.StructScan(&dbLot)
		if err != nil {
			return nil, err
		}
		lots = append(lots, dbConverter.ConvertLot(dbLot))
	}

	return lots, nil
}

func (r *Postgres) GetLot(ctx context.Context, userID, purchaseID string) (lot model.PurchaseLot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetLot"
	params := map[string]any{
		"userID":     userID,
		"purchaseID": purchaseID,
	}
	query := `
		SELECT purchase_id, user_id, ticker, shares, price_per_share, currency, fees, purchase_date, dt_create
		FROM purchases
		WHERE user_id = $1
		AND purchase_id = $2
		`

	slog.Debug("GetLot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("GetLot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetLot completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbLot := dbModel.Lot{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, purchaseID).StructScan(&dbLot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PurchaseLot{}, repository.ErrNotFound
		}
		return model.PurchaseLot{}, err
	}

	return dbConverter.ConvertLot(dbLot), nil
}

func (r *Postgres) UpdateLot(ctx context.Context, userID, purchaseID string, draft model.LotDraft) (lot model.PurchaseLot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateLot"
	params := map[string]any{
		"userID":     userID,
		"purchaseID": purchaseID,
	}
	query := `
		UPDATE purchases
		SET
			ticker = $1,
			shares = $2,
			price_per_share = $3,
			currency = $4,
			fees = $5,
			purchase_date = $6
		WHERE
			user_id = $7
			AND purchase_id = $8
		RETURNING purchase_id, user_id, ticker, shares, price_per_share, currency, fees, purchase_date, dt_create
		`

	slog.Debug("UpdateLot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("UpdateLot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateLot completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbLot := dbModel.Lot{}
	err = r.txOrDb(ctx).QueryRowxContext(
		ctx,
		query,
		draft.Ticker,
		draft.Shares,
		draft.PricePerShare,
		draft.Currency,
		draft.Fees,
		draft.Date,
		userID,
		purchaseID,
	).StructScan(&dbLot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PurchaseLot{}, repository.ErrNotFound
		}
		return model.PurchaseLot{}, err
	}

	return dbConverter.ConvertLot(dbLot), nil
}

func (r *Postgres) DeleteLot(ctx context.Context, userID, purchaseID string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteLot"
	params := map[string]any{
		"userID":     userID,
		"purchaseID": purchaseID,
	}
	query := `
		DELETE FROM purchases
		WHERE
			user_id = $1
			AND purchase_id = $2
		`

	slog.Debug("DeleteLot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("DeleteLot failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteLot completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, userID, purchaseID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *Postgres) GetDistinctTickers(ctx context.Context) (tickers []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetDistinctTickers"
	query := `SELECT DISTINCT ticker FROM purchases ORDER BY ticker`

	slog.Debug("GetDistinctTickers start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetDistinctTickers failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetDistinctTickers completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &tickers, query)
	if err != nil {
		return nil, err
	}

	return tickers, nil
}
