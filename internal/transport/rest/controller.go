package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfoliotrack/portfolio_tracker_api/internal/converter/restConverter"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/model/restModel"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/portfolio"
	"github.com/portfoliotrack/portfolio_tracker_api/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PortfolioService interface {
	AddPurchase(ctx context.Context, userID string, draft model.LotDraft) (model.PurchaseLot, error)
	AddPurchases(ctx context.Context, userID string, drafts []model.LotDraft) ([]model.PurchaseLot, error)
	GetPurchase(ctx context.Context, userID, purchaseID string) (model.PurchaseLot, error)
	GetPurchases(ctx context.Context, userID string) ([]model.PurchaseLot, error)
	UpdatePurchase(ctx context.Context, userID, purchaseID string, draft model.LotDraft) (model.PurchaseLot, error)
	DeletePurchase(ctx context.Context, userID, purchaseID string) error
	GetPortfolioSummary(ctx context.Context, userID string) (model.PortfolioReport, error)
	GetInvestmentSummary(ctx context.Context, userID, ticker string) (model.InvestmentSummary, error)
	GeneratePortfolioReport(ctx context.Context, userID string) (fileBytes []byte, filename, downloadLink string, err error)
}

type Controller struct {
	service PortfolioService
}

func NewController(service PortfolioService) *Controller {
	return &Controller{service: service}
}

func (ctrl *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (ctrl *Controller) AddPurchase(c *gin.Context) {
	var req restModel.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, restModel.ErrorResponse{Error: err.Error()})
		return
	}

	draft, err := restConverter.ConvertPurchaseRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, restModel.ErrorResponse{Error: err.Error()})
		return
	}

	lot, err := ctrl.service.AddPurchase(c.Request.Context(), c.GetString(userIDKey), draft)
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, restConverter.ConvertPurchaseLot(lot))
}

func (ctrl *Controller) AddPurchases(c *gin.Context) {
	var req restModel.BatchPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, restModel.ErrorResponse{Error: err.Error()})
		return
	}

	drafts := make([]model.LotDraft, 0, len(req.Purchases))
	for _, p := range req.Purchases {
		draft, err := restConverter.ConvertPurchaseRequest(p)
		if err != nil {
			c.JSON(http.StatusBadRequest, restModel.ErrorResponse{Error: err.Error()})
			return
		}
		drafts = append(drafts, draft)
	}

	lots, err := ctrl.service.AddPurchases(c.Request.Context(), c.GetString(userIDKey), drafts)
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchases": restConverter.ConvertPurchaseLots(lots)})
}

func (ctrl *Controller) GetPurchase(c *gin.Context) {
	lot, err := ctrl.service.GetPurchase(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, restConverter.ConvertPurchaseLot(lot))
}

func (ctrl *Controller) GetPurchases(c *gin.Context) {
	lots, err := ctrl.service.GetPurchases(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": restConverter.ConvertPurchaseLots(lots)})
}

func (ctrl *Controller) UpdatePurchase(c *gin.Context) {
	var req restModel.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, restModel.ErrorResponse{Error: err.Error()})
		return
	}

	draft, err := restConverter.ConvertPurchaseRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, restModel.ErrorResponse{Error: err.Error()})
		return
	}

	lot, err := ctrl.service.UpdatePurchase(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), draft)
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, restConverter.ConvertPurchaseLot(lot))
}

func (ctrl *Controller) DeletePurchase(c *gin.Context) {
	err := ctrl.service.DeletePurchase(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) GetPortfolioSummary(c *gin.Context) {
	report, err := ctrl.service.GetPortfolioSummary(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, restConverter.ConvertPortfolioReport(report))
}

func (ctrl *Controller) GetInvestmentSummary(c *gin.Context) {
	summary, err := ctrl.service.GetInvestmentSummary(c.Request.Context(), c.GetString(userIDKey), c.Param("ticker"))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, restConverter.ConvertInvestmentSummary(summary))
}

func (ctrl *Controller) GeneratePortfolioReport(c *gin.Context) {
	fileBytes, filename, downloadLink, err := ctrl.service.GeneratePortfolioReport(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		ctrl.writeError(c, err)
		return
	}

	if downloadLink != "" {
		c.Header("X-Download-Link", downloadLink)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, fileBytes)
}

func (ctrl *Controller) writeError(c *gin.Context, err error) {
	var vErr *portfolio.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, restModel.ErrorResponse{Error: vErr.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, restModel.ErrorResponse{Error: "not found"})
	default:
		c.JSON(http.StatusInternalServerError, restModel.ErrorResponse{Error: "internal server error"})
	}
}
