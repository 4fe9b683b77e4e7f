package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	dashboardhandler "dukkan-system/internal/services/dashboard/handler"
)

type DashboardHTTPHandler struct {
	dashboard *dashboardhandler.DashboardHandler
}

func NewDashboardHTTPHandler(dashboard *dashboardhandler.DashboardHandler) *DashboardHTTPHandler {
	return &DashboardHTTPHandler{dashboard: dashboard}
}

func (h *DashboardHTTPHandler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.dashboard.GetStats(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", stats))
}

func (h *DashboardHTTPHandler) GetTopProducts(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("limit must be an integer"))
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.dashboard.GetTopProducts(ctx, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", products))
}

func (h *DashboardHTTPHandler) GetCashierPerformance(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	performance, err := h.dashboard.GetCashierPerformance(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", performance))
}
