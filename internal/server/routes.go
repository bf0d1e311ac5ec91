package routes

import (
	"portfolio-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches the portfolio HTTP surface to the router.
func RegisterRoutes(router *gin.Engine, handler *middleware.PortfolioHandler) {
	router.GET("/", handler.GetPortfolio)
	router.POST("/upload", handler.UploadHoldings)
	router.POST("/clear", handler.ClearHoldings)
	router.POST("/snapshot", handler.TakeSnapshot)
}
