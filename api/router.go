package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quincaillerie/internal/sales"
)

// InitRoutes registers the sales endpoints on the given Gin engine. The
// catalog route is only mounted when products is non-nil.
func InitRoutes(e *gin.Engine, salesService *sales.Service, products ProductResolver, logger *zap.Logger) {
	salesHandler := NewSalesHandler(salesService, products, logger)

	e.POST("/sales", salesHandler.handleCreateSale)
	e.GET("/sales", salesHandler.handleSearchSales)
	e.GET("/sales/:id", salesHandler.handleGetSale)
	e.PUT("/sales/:id", salesHandler.handleUpdateSale)
	e.PATCH("/sales/:id", salesHandler.handlePatchSale)

	if products != nil {
		e.GET("/catalog/products/:id", salesHandler.handleResolveProduct)
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
