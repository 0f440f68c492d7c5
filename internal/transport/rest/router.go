package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/portfoliotrack/portfolio_tracker_api/config"
)

func NewRouter(cfg *config.Config, ctrl *Controller) *gin.Engine {
	if !cfg.API.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestID(), Logger(), Recovery())

	router.GET("/health", ctrl.Health)

	v1 := router.Group("/api/v1")
	v1.Use(Identity())
	{
		purchases := v1.Group("/purchases")
		{
			purchases.POST("", ctrl.AddPurchase)
			purchases.POST("/batch", ctrl.AddPurchases)
			purchases.GET("", ctrl.GetPurchases)
			purchases.GET("/:id", ctrl.GetPurchase)
			purchases.PUT("/:id", ctrl.UpdatePurchase)
			purchases.DELETE("/:id", ctrl.DeletePurchase)
		}

		investments := v1.Group("/investments")
		{
			investments.GET("/summary", ctrl.GetPortfolioSummary)
			investments.GET("/:ticker/summary", ctrl.GetInvestmentSummary)
		}

		v1.GET("/portfolio/report", ctrl.GeneratePortfolioReport)
	}

	return router
}
