package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dukkan-system/internal/database/models"
	"dukkan-system/internal/gateway/middleware"
	saleshandler "dukkan-system/internal/services/sales/handler"
)

type POSHTTPHandler struct {
	sales *saleshandler.SalesHandler
}

func NewPOSHTTPHandler(sales *saleshandler.SalesHandler) *POSHTTPHandler {
	return &POSHTTPHandler{sales: sales}
}

type SaleItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unit_price" binding:"min=0"`
	TaxRate   int     `json:"tax_rate" binding:"min=0,max=100"`
}

type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" binding:"required,min=1"`
	PaymentMethod *string           `json:"payment_method,omitempty"`
}

type ListSalesQuery struct {
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=100"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (h *POSHTTPHandler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	items := make([]saleshandler.SaleItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, saleshandler.SaleItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
		})
	}

	sale, err := h.sales.CreateSale(ctx, saleshandler.CreateSaleRequest{
		Items:         items,
		PaymentMethod: req.PaymentMethod,
	}, c.GetString(middleware.ContextUserID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Sale created", sale))
}

func (h *POSHTTPHandler) GetSale(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sale, err := h.sales.GetSale(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	// Cashiers may only read their own sales.
	if c.GetString(middleware.ContextRole) == models.RoleCashier &&
		sale.CashierID != c.GetString(middleware.ContextUserID) {
		c.JSON(http.StatusForbidden, errorResponse("Access denied"))
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", sale))
}

func (h *POSHTTPHandler) ListSales(c *gin.Context) {
	var q ListSalesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	query := saleshandler.ListSalesQuery{Page: q.Page, PageSize: q.PageSize}
	if q.StartDate != "" {
		t, err := time.Parse(time.RFC3339, q.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("start_date must be RFC3339"))
			return
		}
		query.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := time.Parse(time.RFC3339, q.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("end_date must be RFC3339"))
			return
		}
		query.EndDate = &t
	}

	// Cashiers may only list their own sales.
	if c.GetString(middleware.ContextRole) == models.RoleCashier {
		query.CashierID = c.GetString(middleware.ContextUserID)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	sales, total, err := h.sales.ListSales(ctx, query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("OK", sales, pageMeta(total, q.Page, q.PageSize)))
}

func (h *POSHTTPHandler) DailyReport(c *gin.Context) {
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.sales.GetDailyStats(ctx, date)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", stats))
}
