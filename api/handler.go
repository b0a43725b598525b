package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quincaillerie/internal/catalog"
	"quincaillerie/internal/sales"
)

// ProductResolver looks up a catalog product for price pre-filling.
type ProductResolver interface {
	Resolve(ctx context.Context, productID string) (*catalog.Product, error)
}

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	products     ProductResolver
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, products ProductResolver, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		products:     products,
		logger:       logger,
	}
}

const dateLayout = "2006-01-02"

type saleRequest struct {
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	PaymentType   sales.PaymentType `json:"paymentType"`
	Items         []sales.ItemInput `json:"items"`
}

type patchSaleRequest struct {
	Status      sales.Status      `json:"status"`
	PaymentType sales.PaymentType `json:"payment_type"`
	PaymentDate *time.Time        `json:"payment_date"`
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req saleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	sale, err := h.salesService.CreateSale(ctx.Request.Context(), req.CustomerName, req.CustomerPhone, req.PaymentType, req.Items)
	if err != nil {
		h.logger.Error("failed to create sale", zap.Error(err), zap.String("customer", req.CustomerName))
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

// handleGetSale handles GET /sales/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.GetSale(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleUpdateSale handles PUT /sales/:id, editing a pending sale.
func (h *salesHandler) handleUpdateSale(ctx *gin.Context) {
	var req saleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}

	sale, err := h.salesService.UpdateSaleDetails(ctx.Request.Context(), ctx.Param("id"), req.CustomerName, req.CustomerPhone, req.PaymentType, req.Items)
	if err != nil {
		h.logger.Error("failed to update sale", zap.Error(err), zap.String("sale_id", ctx.Param("id")))
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handlePatchSale handles PATCH /sales/:id, moving a pending sale to PAID or
// CANCELLED.
func (h *salesHandler) handlePatchSale(ctx *gin.Context) {
	saleID := ctx.Param("id")

	var req patchSaleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	var paymentDate time.Time
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	updated, err := h.salesService.UpdateSaleStatus(ctx.Request.Context(), saleID, req.Status, req.PaymentType, paymentDate)
	if err != nil {
		h.logger.Warn("failed to change sale status",
			zap.String("sale_id", saleID),
			zap.String("status", string(req.Status)),
			zap.Error(err),
		)
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// handleSearchSales handles
// GET /sales?status=&payment_type=&start_date=&end_date=. Dates are
// YYYY-MM-DD in UTC and end_date includes the whole day.
func (h *salesHandler) handleSearchSales(ctx *gin.Context) {
	filter := sales.SearchFilter{
		Status:      ctx.Query("status"),
		PaymentType: ctx.Query("payment_type"),
	}

	var err error
	if v := ctx.Query("start_date"); v != "" {
		if filter.From, err = time.Parse(dateLayout, v); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD", "field": "start_date"})
			return
		}
	}
	if v := ctx.Query("end_date"); v != "" {
		end, err := time.Parse(dateLayout, v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD", "field": "end_date"})
			return
		}
		filter.To = end.AddDate(0, 0, 1)
	}

	// Llama al servicio para buscar y obtener metadatos
	salesResults, metadata, err := h.salesService.SearchSale(ctx.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Error searching sales",
			zap.String("status_filter", filter.Status),
			zap.String("payment_type_filter", filter.PaymentType),
			zap.Error(err),
		)
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": salesResults, "metadata": metadata})
}

// handleResolveProduct handles GET /catalog/products/:id so a new line item
// can be pre-filled with the current unit price.
func (h *salesHandler) handleResolveProduct(ctx *gin.Context) {
	productID := ctx.Param("id")

	product, err := h.products.Resolve(ctx.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("failed to resolve product", zap.String("product_id", productID), zap.Error(err))
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "failed to resolve product"})
		return
	}

	ctx.JSON(http.StatusOK, struct {
		ProductID string          `json:"productId"`
		Name      string          `json:"name"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
	}{product.ID, product.Name, product.Price})
}

func (h *salesHandler) writeError(ctx *gin.Context, err error) {
	var vErr *sales.ValidationError
	var gwErr *sales.GatewayError

	switch {
	case errors.As(err, &vErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, sales.ErrInvalidStatus), errors.Is(err, sales.ErrInvalidPaymentType):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
	case errors.Is(err, sales.ErrInvalidTransition), errors.Is(err, sales.ErrVersionConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &gwErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": gwErr.Message})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
