package handler

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dukkan-system/internal/apperr"
	"dukkan-system/internal/database/models"
	"dukkan-system/internal/stocklock"
)

type StockHandler struct {
	db    *gorm.DB
	rdb   *redis.Client
	locks *stocklock.Registry
}

func NewStockHandler(db *gorm.DB, rdb *redis.Client, locks *stocklock.Registry) *StockHandler {
	return &StockHandler{db: db, rdb: rdb, locks: locks}
}

type RecordMovementRequest struct {
	ProductID string
	Type      string
	Quantity  int
	UnitPrice *float64
	Supplier  *string
	Note      *string
}

type ListMovementsQuery struct {
	Page      int
	PageSize  int
	ProductID string
	Type      string
}

// RecordMovement appends one immutable ledger entry and applies its effect
// to the product's stock in the same transaction, holding the product lock
// across the check-then-write. Stock-out beyond the current level floors at
// zero rather than failing; that asymmetry with the sale path is inherited
// behavior, kept until a product-owner decision says otherwise.
func (s *StockHandler) RecordMovement(ctx context.Context, req RecordMovementRequest, actorID string) (*models.StockMovement, error) {
	if req.Type != models.MovementIn && req.Type != models.MovementOut {
		return nil, &apperr.InvalidArgumentError{Reason: "type must be 'in' or 'out'"}
	}
	if req.Quantity <= 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "quantity must be greater than 0"}
	}
	if req.UnitPrice != nil && *req.UnitPrice < 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "unit_price must not be negative"}
	}

	unlock := s.locks.Lock(req.ProductID)
	defer unlock()

	var movement models.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.NotFoundError{Resource: "Product", ID: req.ProductID}
			}
			return err
		}

		now := time.Now().UTC()
		movement = models.StockMovement{
			ProductID: req.ProductID,
			Type:      req.Type,
			Quantity:  req.Quantity,
			Supplier:  req.Supplier,
			Note:      req.Note,
			CreatedBy: actorID,
			CreatedAt: now,
		}
		if req.UnitPrice != nil {
			unit := decimal.NewFromFloat(*req.UnitPrice)
			unitStr := unit.StringFixed(2)
			totalStr := unit.Mul(decimal.NewFromInt(int64(req.Quantity))).StringFixed(2)
			movement.UnitPrice = &unitStr
			movement.TotalPrice = &totalStr
		}

		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		newStock := product.Stock
		if req.Type == models.MovementIn {
			newStock += req.Quantity
		} else {
			newStock -= req.Quantity
			if newStock < 0 {
				newStock = 0
			}
		}

		return tx.Model(&models.Product{}).Where("id = ?", req.ProductID).
			Updates(map[string]interface{}{"stock": newStock, "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}

	return &movement, nil
}

// ListMovements is a plain read: newest first, no product locks held.
func (s *StockHandler) ListMovements(ctx context.Context, q ListMovementsQuery) ([]models.StockMovement, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 1000 {
		q.PageSize = 100
	}
	if q.Type != "" && q.Type != models.MovementIn && q.Type != models.MovementOut {
		return nil, 0, &apperr.InvalidArgumentError{Reason: "type must be 'in' or 'out'"}
	}

	query := s.db.WithContext(ctx).Model(&models.StockMovement{})
	if q.ProductID != "" {
		query = query.Where("product_id = ?", q.ProductID)
	}
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []models.StockMovement
	if err := query.Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

func (s *StockHandler) LowStockProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("stock <= min_stock").
		Order("updated_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
