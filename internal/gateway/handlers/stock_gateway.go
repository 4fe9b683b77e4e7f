package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dukkan-system/internal/gateway/middleware"
	stockhandler "dukkan-system/internal/services/stock/handler"
)

type StockHTTPHandler struct {
	stock *stockhandler.StockHandler
}

func NewStockHTTPHandler(stock *stockhandler.StockHandler) *StockHTTPHandler {
	return &StockHTTPHandler{stock: stock}
}

type CreateMovementRequest struct {
	ProductID string   `json:"product_id" binding:"required"`
	Type      string   `json:"type" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Supplier  *string  `json:"supplier,omitempty" binding:"omitempty,max=200"`
	Note      *string  `json:"note,omitempty" binding:"omitempty,max=500"`
}

type ListMovementsQuery struct {
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=100"`
	ProductID string `form:"product_id"`
	Type      string `form:"movement_type"`
}

func (h *StockHTTPHandler) CreateMovement(c *gin.Context) {
	var req CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	movement, err := h.stock.RecordMovement(ctx, stockhandler.RecordMovementRequest{
		ProductID: req.ProductID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Supplier:  req.Supplier,
		Note:      req.Note,
	}, c.GetString(middleware.ContextUserID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Movement recorded", movement))
}

func (h *StockHTTPHandler) ListMovements(c *gin.Context) {
	var q ListMovementsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	movements, total, err := h.stock.ListMovements(ctx, stockhandler.ListMovementsQuery{
		Page:      q.Page,
		PageSize:  q.PageSize,
		ProductID: q.ProductID,
		Type:      q.Type,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("OK", movements, pageMeta(total, q.Page, q.PageSize)))
}

func (h *StockHTTPHandler) ListLowStock(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.stock.LowStockProducts(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", products))
}
