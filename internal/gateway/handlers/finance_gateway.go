package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dukkan-system/internal/gateway/middleware"
	financehandler "dukkan-system/internal/services/finance/handler"
)

type FinanceHTTPHandler struct {
	finance *financehandler.FinanceHandler
}

func NewFinanceHTTPHandler(finance *financehandler.FinanceHandler) *FinanceHTTPHandler {
	return &FinanceHTTPHandler{finance: finance}
}

type CreateTransactionRequest struct {
	Type        string     `json:"type" binding:"required"`
	Amount      float64    `json:"amount" binding:"min=0"`
	Date        *time.Time `json:"date,omitempty"`
	Category    *string    `json:"category,omitempty" binding:"omitempty,max=100"`
	Description *string    `json:"description,omitempty" binding:"omitempty,max=500"`
	Person      *string    `json:"person,omitempty" binding:"omitempty,max=100"`
}

type UpdateTransactionRequest struct {
	Type        *string    `json:"type,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	Person      *string    `json:"person,omitempty"`
}

type ListTransactionsQuery struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=100"`
	Type     string `form:"type"`
}

func (h *FinanceHTTPHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	txn, err := h.finance.CreateTransaction(ctx, financehandler.TransactionRequest{
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		Person:      req.Person,
	}, c.GetString(middleware.ContextUserID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Transaction created", txn))
}

func (h *FinanceHTTPHandler) ListTransactions(c *gin.Context) {
	var q ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	txns, total, err := h.finance.ListTransactions(ctx, financehandler.ListTransactionsQuery{
		Page:     q.Page,
		PageSize: q.PageSize,
		Type:     q.Type,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("OK", txns, pageMeta(total, q.Page, q.PageSize)))
}

func (h *FinanceHTTPHandler) UpdateTransaction(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	txn, err := h.finance.UpdateTransaction(ctx, c.Param("id"), financehandler.UpdateTransactionRequest{
		Type:        req.Type,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
		Person:      req.Person,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Transaction updated", txn))
}

func (h *FinanceHTTPHandler) DeleteTransaction(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.finance.DeleteTransaction(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Transaction deleted successfully", nil))
}
