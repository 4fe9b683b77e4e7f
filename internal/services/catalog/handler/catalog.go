package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dukkan-system/internal/apperr"
	"dukkan-system/internal/database/models"
	"dukkan-system/internal/stocklock"
)

const (
	productListCacheKey = "catalog:products"
	cacheTTLShort       = 5 * time.Minute
)

type CatalogHandler struct {
	db    *gorm.DB
	rdb   *redis.Client
	locks *stocklock.Registry
}

func NewCatalogHandler(db *gorm.DB, rdb *redis.Client, locks *stocklock.Registry) *CatalogHandler {
	return &CatalogHandler{db: db, rdb: rdb, locks: locks}
}

type CreateProductRequest struct {
	Barcode   string
	Name      string
	Category  string
	Brand     string
	Stock     int
	MinStock  int
	BuyPrice  float64
	SellPrice float64
	TaxRate   int
	Supplier  *string
}

type UpdateProductRequest struct {
	Barcode   *string
	Name      *string
	Category  *string
	Brand     *string
	Stock     *int
	MinStock  *int
	BuyPrice  *float64
	SellPrice *float64
	TaxRate   *int
	Supplier  *string
}

type ListProductsQuery struct {
	Page     int
	PageSize int
	Search   string
	Category string
	LowStock bool
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func (s *CatalogHandler) InvalidateCatalogCaches(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, productListCacheKey)
}

func (s *CatalogHandler) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if req.Barcode == "" || req.Name == "" || req.Category == "" || req.Brand == "" {
		return nil, &apperr.InvalidArgumentError{Reason: "barcode, name, category and brand are required"}
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "stock and min_stock must not be negative"}
	}
	if req.BuyPrice < 0 || req.SellPrice < 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "prices must not be negative"}
	}
	if req.TaxRate < 0 || req.TaxRate > 100 {
		return nil, &apperr.InvalidArgumentError{Reason: "tax_rate must be between 0 and 100"}
	}

	var existing models.Product
	err := s.db.WithContext(ctx).Where("barcode = ?", req.Barcode).First(&existing).Error
	if err == nil {
		return nil, &apperr.AlreadyExistsError{Field: "Barcode"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := models.Product{
		Barcode:   req.Barcode,
		Name:      req.Name,
		Category:  req.Category,
		Brand:     req.Brand,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
		BuyPrice:  money(req.BuyPrice),
		SellPrice: money(req.SellPrice),
		TaxRate:   req.TaxRate,
		Supplier:  req.Supplier,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &product, nil
}

func (s *CatalogHandler) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "Product", ID: id}
		}
		return nil, err
	}
	return &product, nil
}

func (s *CatalogHandler) GetProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "Product", ID: barcode}
		}
		return nil, err
	}
	return &product, nil
}

func (s *CatalogHandler) ListProducts(ctx context.Context, q ListProductsQuery) ([]models.Product, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 1000 {
		q.PageSize = 100
	}

	cacheable := q.Search == "" && q.Category == "" && !q.LowStock && q.Page == 1 && s.rdb != nil
	if cacheable {
		if cached, err := s.rdb.Get(ctx, productListCacheKey).Result(); err == nil {
			var payload struct {
				Products []models.Product `json:"products"`
				Total    int64            `json:"total"`
			}
			if json.Unmarshal([]byte(cached), &payload) == nil && len(payload.Products) <= q.PageSize {
				return payload.Products, payload.Total, nil
			}
		}
	}

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(barcode) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?)",
			pattern, pattern, pattern)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.LowStock {
		query = query.Where("stock <= min_stock")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := query.Order("updated_at DESC").
		Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	if cacheable {
		payload := struct {
			Products []models.Product `json:"products"`
			Total    int64            `json:"total"`
		}{products, total}
		if raw, err := json.Marshal(payload); err == nil {
			s.rdb.Set(ctx, productListCacheKey, raw, cacheTTLShort)
		}
	}

	return products, total, nil
}

func (s *CatalogHandler) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*models.Product, error) {
	if req.Stock != nil && *req.Stock < 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "stock must not be negative"}
	}
	if req.MinStock != nil && *req.MinStock < 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "min_stock must not be negative"}
	}
	if (req.BuyPrice != nil && *req.BuyPrice < 0) || (req.SellPrice != nil && *req.SellPrice < 0) {
		return nil, &apperr.InvalidArgumentError{Reason: "prices must not be negative"}
	}
	if req.TaxRate != nil && (*req.TaxRate < 0 || *req.TaxRate > 100) {
		return nil, &apperr.InvalidArgumentError{Reason: "tax_rate must be between 0 and 100"}
	}

	// Direct stock writes race with sales and movements, so they take the
	// same per-product lock.
	if req.Stock != nil {
		unlock := s.locks.Lock(id)
		defer unlock()
	}

	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "Product", ID: id}
		}
		return nil, err
	}

	if req.Barcode != nil && *req.Barcode != product.Barcode {
		var other models.Product
		err := s.db.WithContext(ctx).Where("barcode = ? AND id <> ?", *req.Barcode, id).First(&other).Error
		if err == nil {
			return nil, &apperr.AlreadyExistsError{Field: "Barcode"}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		product.Barcode = *req.Barcode
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.BuyPrice != nil {
		product.BuyPrice = money(*req.BuyPrice)
	}
	if req.SellPrice != nil {
		product.SellPrice = money(*req.SellPrice)
	}
	if req.TaxRate != nil {
		product.TaxRate = *req.TaxRate
	}
	if req.Supplier != nil {
		product.Supplier = req.Supplier
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &product, nil
}

func (s *CatalogHandler) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperr.NotFoundError{Resource: "Product", ID: id}
	}
	s.InvalidateCatalogCaches(ctx)
	return nil
}

// AdjustStock applies delta to the product's stock under the product lock,
// flooring the result at zero. Callers that must reject instead of floor
// (the sale path) do their own guarded decrement.
func (s *CatalogHandler) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Resource: "Product", ID: id}
			}
			return err
		}

		newStock := product.Stock + delta
		if newStock < 0 {
			newStock = 0
		}
		product.Stock = newStock
		product.UpdatedAt = time.Now().UTC()

		return tx.Model(&models.Product{}).Where("id = ?", id).
			Updates(map[string]interface{}{"stock": product.Stock, "updated_at": product.UpdatedAt}).Error
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateCatalogCaches(ctx)
	return &product, nil
}
