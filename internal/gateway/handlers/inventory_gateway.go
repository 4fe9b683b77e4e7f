package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cataloghandler "dukkan-system/internal/services/catalog/handler"
)

type InventoryHTTPHandler struct {
	catalog *cataloghandler.CatalogHandler
}

func NewInventoryHTTPHandler(catalog *cataloghandler.CatalogHandler) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{catalog: catalog}
}

type CreateProductRequest struct {
	Barcode   string  `json:"barcode" binding:"required,max=50"`
	Name      string  `json:"name" binding:"required,max=200"`
	Category  string  `json:"category" binding:"required,max=100"`
	Brand     string  `json:"brand" binding:"required,max=100"`
	Stock     int     `json:"stock" binding:"min=0"`
	MinStock  int     `json:"min_stock" binding:"min=0"`
	BuyPrice  float64 `json:"buy_price" binding:"min=0"`
	SellPrice float64 `json:"sell_price" binding:"min=0"`
	TaxRate   int     `json:"tax_rate" binding:"min=0,max=100"`
	Supplier  *string `json:"supplier,omitempty" binding:"omitempty,max=200"`
}

type UpdateProductRequest struct {
	Barcode   *string  `json:"barcode,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Brand     *string  `json:"brand,omitempty"`
	Stock     *int     `json:"stock,omitempty"`
	MinStock  *int     `json:"min_stock,omitempty"`
	BuyPrice  *float64 `json:"buy_price,omitempty"`
	SellPrice *float64 `json:"sell_price,omitempty"`
	TaxRate   *int     `json:"tax_rate,omitempty"`
	Supplier  *string  `json:"supplier,omitempty"`
}

type ListProductsQuery struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=100"`
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
}

func (h *InventoryHTTPHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.catalog.CreateProduct(ctx, cataloghandler.CreateProductRequest{
		Barcode:   req.Barcode,
		Name:      req.Name,
		Category:  req.Category,
		Brand:     req.Brand,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
		BuyPrice:  req.BuyPrice,
		SellPrice: req.SellPrice,
		TaxRate:   req.TaxRate,
		Supplier:  req.Supplier,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Product created", product))
}

func (h *InventoryHTTPHandler) ListProducts(c *gin.Context) {
	var q ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, total, err := h.catalog.ListProducts(ctx, cataloghandler.ListProductsQuery{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Category: q.Category,
		LowStock: q.LowStock,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("OK", products, pageMeta(total, q.Page, q.PageSize)))
}

func (h *InventoryHTTPHandler) GetProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", product))
}

func (h *InventoryHTTPHandler) GetProductByBarcode(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.catalog.GetProductByBarcode(ctx, c.Param("barcode"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("OK", product))
}

func (h *InventoryHTTPHandler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.catalog.UpdateProduct(ctx, c.Param("id"), cataloghandler.UpdateProductRequest{
		Barcode:   req.Barcode,
		Name:      req.Name,
		Category:  req.Category,
		Brand:     req.Brand,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
		BuyPrice:  req.BuyPrice,
		SellPrice: req.SellPrice,
		TaxRate:   req.TaxRate,
		Supplier:  req.Supplier,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product updated", product))
}

func (h *InventoryHTTPHandler) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product deleted successfully", nil))
}
