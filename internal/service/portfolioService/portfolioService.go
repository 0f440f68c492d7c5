package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/portfoliotrack/portfolio_tracker_api/config"
	"github.com/portfoliotrack/portfolio_tracker_api/data/repository"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/portfolio"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/service"
	"github.com/portfoliotrack/portfolio_tracker_api/utils"
)

type Repository interface {
	InsertLot(ctx context.Context, userID string, draft model.LotDraft) (model.PurchaseLot, error)
	ListLots(ctx context.Context, userID string) ([]model.PurchaseLot, error)
	GetLot(ctx context.Context, userID, purchaseID string) (model.PurchaseLot, error)
	UpdateLot(ctx context.Context, userID, purchaseID string, draft model.LotDraft) (model.PurchaseLot, error)
	DeleteLot(ctx context.Context, userID, purchaseID string) error
	GetDistinctTickers(ctx context.Context) ([]string, error)
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}

type Cache interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
	SetQuote(ctx context.Context, quote model.Quote) error
	SetQuotes(ctx context.Context, quotes []model.Quote) error
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
	SetRate(ctx context.Context, from, to string, rate decimal.Decimal) error
}

type PriceApi interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
}

type FxApi interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type PortfolioService struct {
	cfg          *config.Config
	repo         Repository
	cache        Cache
	priceApi     PriceApi
	fxApi        FxApi
	reportGen    ReportGenerator
	cloudStorage CloudStorage
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	priceApi PriceApi,
	fxApi FxApi,
	reportGen ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:          cfg,
		repo:         repo,
		cache:        cache,
		priceApi:     priceApi,
		fxApi:        fxApi,
		reportGen:    reportGen,
		cloudStorage: cloudStorage,
	}
}

// normalizeDraft coerces dynamic input into the strict lot shape at the
// edge: tickers uppercased, currency defaulted, and malformed values
// rejected before anything reaches the pure core or the store.
func normalizeDraft(draft model.LotDraft) (model.LotDraft, error) {
	draft.Ticker = strings.ToUpper(strings.TrimSpace(draft.Ticker))
	if draft.Ticker == "" {
		return model.LotDraft{}, &portfolio.ValidationError{Field: "ticker", Reason: "must not be empty"}
	}
	if !draft.Shares.IsPositive() {
		return model.LotDraft{}, &portfolio.ValidationError{Field: "shares", Reason: "must be positive"}
	}
	if draft.PricePerShare.IsNegative() {
		return model.LotDraft{}, &portfolio.ValidationError{Field: "pricePerShare", Reason: "must not be negative"}
	}
	if draft.Fees.IsNegative() {
		return model.LotDraft{}, &portfolio.ValidationError{Field: "fees", Reason: "must not be negative"}
	}
	if draft.Date.IsZero() {
		return model.LotDraft{}, &portfolio.ValidationError{Field: "date", Reason: "must be set"}
	}
	if draft.Currency == "" {
		draft.Currency = portfolio.DefaultBaseCurrency
	} else {
		draft.Currency = strings.ToUpper(strings.TrimSpace(draft.Currency))
	}
	return draft, nil
}

func (s *PortfolioService) AddPurchase(ctx context.Context, userID string, draft model.LotDraft) (model.PurchaseLot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddPurchase"

	slog.Debug("AddPurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", draft.Ticker))
	defer func() {
		slog.Debug("AddPurchase finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	draft, err := normalizeDraft(draft)
	if err != nil {
		slog.Warn("rejected malformed purchase", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PurchaseLot{}, err
	}

	lot, err := s.repo.InsertLot(ctx, userID, draft)
	if err != nil {
		slog.Error("got error from repo.InsertLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PurchaseLot{}, err
	}

	return lot, nil
}

// AddPurchases inserts a batch of purchases atomically: either every lot
// is stored or none is. Validation runs up front so a malformed lot never
// opens a transaction.
func (s *PortfolioService) AddPurchases(ctx context.Context, userID string, drafts []model.LotDraft) ([]model.PurchaseLot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddPurchases"

	slog.Debug("AddPurchases start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(drafts)))
	defer func() {
		slog.Debug("AddPurchases finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if len(drafts) == 0 {
		return nil, &portfolio.ValidationError{Field: "purchases", Reason: "must not be empty"}
	}

	normalized := make([]model.LotDraft, 0, len(drafts))
	for _, draft := range drafts {
		draft, err := normalizeDraft(draft)
		if err != nil {
			slog.Warn("rejected malformed purchase", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, err
		}
		normalized = append(normalized, draft)
	}

	lots := make([]model.PurchaseLot, 0, len(normalized))
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, draft := range normalized {
			lot, err := s.repo.InsertLot(ctx, userID, draft)
			if err != nil {
				return err
			}
			lots = append(lots, lot)
		}
		return nil
	})
	if err != nil {
		slog.Error("got error from repo.WithinTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return lots, nil
}

func (s *PortfolioService) UpdatePurchase(ctx context.Context, userID, purchaseID string, draft model.LotDraft) (model.PurchaseLot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdatePurchase"

	slog.Debug("UpdatePurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", purchaseID))
	defer func() {
		slog.Debug("UpdatePurchase finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", purchaseID))
	}()

	draft, err := normalizeDraft(draft)
	if err != nil {
		slog.Warn("rejected malformed purchase", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PurchaseLot{}, err
	}

	lot, err := s.repo.UpdateLot(ctx, userID, purchaseID, draft)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PurchaseLot{}, service.ErrNotFound
		}
		slog.Error("got error from repo.UpdateLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PurchaseLot{}, err
	}

	return lot, nil
}

func (s *PortfolioService) DeletePurchase(ctx context.Context, userID, purchaseID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeletePurchase"

	slog.Debug("DeletePurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", purchaseID))
	defer func() {
		slog.Debug("DeletePurchase finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", purchaseID))
	}()

	err := s.repo.DeleteLot(ctx, userID, purchaseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *PortfolioService) GetPurchase(ctx context.Context, userID, purchaseID string) (model.PurchaseLot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPurchase"

	slog.Debug("GetPurchase start", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", purchaseID))
	defer func() {
		slog.Debug("GetPurchase finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("purchaseID", purchaseID))
	}()

	lot, err := s.repo.GetLot(ctx, userID, purchaseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PurchaseLot{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetLot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PurchaseLot{}, err
	}

	return lot, nil
}

func (s *PortfolioService) GetPurchases(ctx context.Context, userID string) ([]model.PurchaseLot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPurchases"

	slog.Debug("GetPurchases start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetPurchases finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	lots, err := s.repo.ListLots(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.ListLots", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return lots, nil
}

// GetPortfolioSummary prices the user's whole portfolio against the live
// feeds. Per-ticker feed failures never fail the call: they surface inside
// the affected Valuation while the rest of the portfolio is priced normally.
func (s *PortfolioService) GetPortfolioSummary(ctx context.Context, userID string) (model.PortfolioReport, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolioSummary"

	slog.Debug("GetPortfolioSummary start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GetPortfolioSummary finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	lots, err := s.repo.ListLots(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.ListLots", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioReport{}, err
	}

	quotes := s.resolveQuotes(ctx, distinctTickers(lots))

	priceLookup := func(ticker string) (model.Quote, error) {
		quote, ok := quotes[ticker]
		if !ok {
			return model.Quote{Ticker: ticker, Kind: model.QuoteUnavailable, Reason: "price lookup not resolved"}, nil
		}
		return quote, nil
	}

	fx := func(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
		rate, err := s.getRate(ctx, from, to)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return amount.Mul(rate), nil
	}

	summary, valuations, err := portfolio.ComputePortfolio(lots, priceLookup, fx, s.cfg.BaseCurrency)
	if err != nil {
		slog.Error("got error from portfolio.ComputePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioReport{}, err
	}

	return model.PortfolioReport{
		BaseCurrency: s.cfg.BaseCurrency,
		Summary:      summary,
		Valuations:   valuations,
	}, nil
}

// GetInvestmentSummary prices a single ticker position. When the live quote
// is unavailable but the position has an average purchase price, the
// valuation falls back to an estimate that is explicitly tagged as such.
func (s *PortfolioService) GetInvestmentSummary(ctx context.Context, userID, ticker string) (model.InvestmentSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetInvestmentSummary"

	slog.Debug("GetInvestmentSummary start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	defer func() {
		slog.Debug("GetInvestmentSummary finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
	}()

	lots, err := s.repo.ListLots(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.ListLots", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.InvestmentSummary{}, err
	}

	pos, ok, err := portfolio.ComputePosition(lots, ticker)
	if err != nil {
		return model.InvestmentSummary{}, err
	}
	if !ok {
		return model.InvestmentSummary{}, service.ErrNotFound
	}

	quote := s.getQuote(ctx, pos.Ticker)
	if quote.Kind == model.QuoteUnavailable && pos.AveragePrice.IsPositive() {
		quote = model.Quote{
			Ticker:   pos.Ticker,
			Price:    pos.AveragePrice,
			Currency: s.cfg.BaseCurrency,
			Kind:     model.QuoteEstimated,
			Reason:   "estimated from average purchase price",
		}
	}

	fx := func(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
		rate, err := s.getRate(ctx, from, to)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return amount.Mul(rate), nil
	}

	valuation := portfolio.Valuate(pos, func(string) (model.Quote, error) { return quote, nil }, fx, s.cfg.BaseCurrency)

	return model.InvestmentSummary{
		BaseCurrency: s.cfg.BaseCurrency,
		Valuation:    valuation,
	}, nil
}

// GeneratePortfolioReport renders the priced portfolio as a spreadsheet.
// When cloud storage is configured the file is also uploaded and a
// shareable link returned.
func (s *PortfolioService) GeneratePortfolioReport(ctx context.Context, userID string) (fileBytes []byte, filename, downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GeneratePortfolioReport"

	slog.Debug("GeneratePortfolioReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GeneratePortfolioReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	report, err := s.GetPortfolioSummary(ctx, userID)
	if err != nil {
		return nil, "", "", err
	}

	fileBytes, fileExtension, err := s.reportGen.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", "", err
	}

	filename = fmt.Sprintf("portfolio_%s_%s%s", userID, time.Now().Format("2006-01-02"), fileExtension)

	if s.cloudStorage != nil {
		downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
		if err != nil {
			// the report itself is still usable, the upload is best effort
			slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			downloadLink = ""
			err = nil
		}
	}

	return fileBytes, filename, downloadLink, nil
}

// RefreshQuotes warms the quote cache for every ticker present in the
// store. Runs as a scheduled job.
func (s *PortfolioService) RefreshQuotes(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshQuotes"

	slog.Debug("RefreshQuotes start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshQuotes finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	tickers, err := s.repo.GetDistinctTickers(ctx)
	if err != nil {
		slog.Error("got error from repo.GetDistinctTickers", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	quotes := make([]model.Quote, 0, len(tickers))
	for _, ticker := range tickers {
		quote, err := s.priceApi.GetQuote(ctx, ticker)
		if err != nil {
			slog.Warn("can't refresh quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
			continue
		}
		quotes = append(quotes, quote)
	}

	if len(quotes) == 0 {
		return nil
	}

	err = s.cache.SetQuotes(ctx, quotes)
	if err != nil {
		slog.Error("got error from cache.SetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// resolveQuotes fires all per-ticker lookups concurrently and waits for
// them. Every ticker gets an entry: a lookup that failed, or was cut off
// by context cancellation, resolves to an Unavailable quote so partial
// results stay well-formed.
func (s *PortfolioService) resolveQuotes(ctx context.Context, tickers []string) map[string]model.Quote {
	quotes := make(map[string]model.Quote, len(tickers))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ticker := range tickers {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			quote := s.getQuote(ctx, ticker)

			mu.Lock()
			quotes[ticker] = quote
			mu.Unlock()
		}(ticker)
	}

	wg.Wait()

	return quotes
}

func (s *PortfolioService) getQuote(ctx context.Context, ticker string) model.Quote {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getQuote"

	if err := ctx.Err(); err != nil {
		return model.Quote{Ticker: ticker, Kind: model.QuoteUnavailable, Reason: fmt.Sprintf("price lookup cancelled: %s", err)}
	}

	quote, err := s.cache.GetQuote(ctx, ticker)
	if err == nil {
		return quote
	}

	slog.Warn("can't get quote from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))

	quote, err = s.priceApi.GetQuote(ctx, ticker)
	if err != nil {
		slog.Warn("can't get quote from priceApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		return model.Quote{Ticker: ticker, Kind: model.QuoteUnavailable, Reason: fmt.Sprintf("price lookup failed: %s", err)}
	}

	go s.cache.SetQuote(context.WithoutCancel(ctx), quote)

	return quote
}

func (s *PortfolioService) getRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getRate"

	if err := ctx.Err(); err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate lookup cancelled: %w", err)
	}

	rate, err := s.cache.GetRate(ctx, from, to)
	if err == nil {
		return rate, nil
	}

	slog.Warn("can't get rate from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("from", from), slog.String("to", to), slog.String("err", err.Error()))

	rate, err = s.fxApi.GetRate(ctx, from, to)
	if err != nil {
		slog.Warn("can't get rate from fxApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("from", from), slog.String("to", to), slog.String("err", err.Error()))
		return decimal.Decimal{}, err
	}

	go s.cache.SetRate(context.WithoutCancel(ctx), from, to, rate)

	return rate, nil
}

func distinctTickers(lots []model.PurchaseLot) []string {
	seen := make(map[string]struct{}, len(lots))
	tickers := make([]string, 0, len(lots))
	for _, lot := range lots {
		ticker := strings.ToUpper(strings.TrimSpace(lot.Ticker))
		if _, ok := seen[ticker]; ok {
			continue
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	}
	return tickers
}
