package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dukkan-system/internal/apperr"
	"dukkan-system/internal/database/models"
	"dukkan-system/internal/stocklock"
)

const (
	EventSaleCreated  = "sale.created"
	salesEventChannel = "sales.events"
)

type SalesHandler struct {
	db    *gorm.DB
	rdb   *redis.Client
	locks *stocklock.Registry
}

func NewSalesHandler(db *gorm.DB, rdb *redis.Client, locks *stocklock.Registry) *SalesHandler {
	return &SalesHandler{db: db, rdb: rdb, locks: locks}
}

type SaleItemRequest struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	TaxRate   int
}

type CreateSaleRequest struct {
	Items         []SaleItemRequest
	PaymentMethod *string
}

type ListSalesQuery struct {
	Page      int
	PageSize  int
	StartDate *time.Time
	EndDate   *time.Time
	CashierID string
}

type DailyStats struct {
	Date           string  `json:"date"`
	TotalSales     int64   `json:"total_sales"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalItemsSold int     `json:"total_items_sold"`
}

type saleEvent struct {
	EventType string    `json:"event_type"`
	SaleID    string    `json:"sale_id"`
	CashierID string    `json:"cashier_id"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateSale validates every line against live stock, computes totals from
// the caller-supplied unit price and tax rate (point-of-sale overrides are
// allowed, so the live product price is NOT re-read for pricing), then
// commits the sale aggregate and all stock decrements in one transaction.
// Validation completes for all lines before anything is written: a failure
// on the last line leaves no trace of the earlier ones.
//
// Product locks are held in sorted ID order across the whole
// validate+commit sequence, so two concurrent sales cannot both pass the
// stock check on the same product. The conditional decrement is a second,
// storage-level guard: after validation under the lock it can only affect
// zero rows if something bypassed the lock discipline, which is surfaced
// as a consistency fault and rolled back, never retried.
func (s *SalesHandler) CreateSale(ctx context.Context, req CreateSaleRequest, cashierID string) (*models.Sale, error) {
	if len(req.Items) == 0 {
		return nil, &apperr.InvalidArgumentError{Reason: "sale must have at least one item"}
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return nil, &apperr.InvalidArgumentError{Reason: "product_id is required"}
		}
		if item.Quantity <= 0 {
			return nil, &apperr.InvalidArgumentError{Reason: "quantity must be greater than 0"}
		}
		if item.UnitPrice < 0 {
			return nil, &apperr.InvalidArgumentError{Reason: "unit_price must not be negative"}
		}
		if item.TaxRate < 0 || item.TaxRate > 100 {
			return nil, &apperr.InvalidArgumentError{Reason: "tax_rate must be between 0 and 100"}
		}
	}
	if req.PaymentMethod != nil && *req.PaymentMethod != models.PaymentCash && *req.PaymentMethod != models.PaymentCard {
		return nil, &apperr.InvalidArgumentError{Reason: "payment_method must be 'cash' or 'card'"}
	}

	productIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	unlock := s.locks.Lock(productIDs...)
	defer unlock()

	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Validate all lines before writing anything.
		products := make(map[string]*models.Product, len(req.Items))
		for _, item := range req.Items {
			if _, ok := products[item.ProductID]; ok {
				continue
			}
			var product models.Product
			if err := tx.Where("id = ?", item.ProductID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &apperr.NotFoundError{Resource: "Product", ID: item.ProductID}
				}
				return err
			}
			products[item.ProductID] = &product
		}

		// Stock checks in request order; lines repeating a product count
		// cumulatively against it.
		required := make(map[string]int, len(products))
		for _, item := range req.Items {
			product := products[item.ProductID]
			required[item.ProductID] += item.Quantity
			if product.Stock < required[item.ProductID] {
				return &apperr.InsufficientStockError{ProductName: product.Name}
			}
		}

		now := time.Now().UTC()
		subtotal := decimal.Zero
		taxTotal := decimal.Zero
		items := make([]models.SaleItem, 0, len(req.Items))
		for i, item := range req.Items {
			product := products[item.ProductID]
			unit := decimal.NewFromFloat(item.UnitPrice)
			lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			lineTax := lineTotal.Mul(decimal.NewFromInt(int64(item.TaxRate))).Div(decimal.NewFromInt(100))

			items = append(items, models.SaleItem{
				LineNo:      i,
				ProductID:   item.ProductID,
				Barcode:     product.Barcode,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   unit.StringFixed(2),
				TaxRate:     item.TaxRate,
				TotalPrice:  lineTotal.StringFixed(2),
			})

			subtotal = subtotal.Add(lineTotal)
			taxTotal = taxTotal.Add(lineTax)
		}

		taxRounded := taxTotal.Round(2)
		sale = models.Sale{
			CashierID:     cashierID,
			Subtotal:      subtotal.StringFixed(2),
			TaxAmount:     taxRounded.StringFixed(2),
			Total:         subtotal.Add(taxRounded).StringFixed(2),
			PaymentMethod: req.PaymentMethod,
			CreatedAt:     now,
			Items:         items,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for productID, qty := range required {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", productID, qty).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", qty),
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				fault := &apperr.ConsistencyFaultError{
					Op:        "CreateSale",
					ProductID: productID,
					Err:       errors.New("stock decrement affected no rows after validation"),
				}
				log.Printf("FATAL consistency fault: sale=%s cashier=%s product=%s qty=%d: %v",
					sale.ID, cashierID, productID, qty, fault.Err)
				return fault
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishSaleEvent(ctx, saleEvent{
		EventType: EventSaleCreated,
		SaleID:    sale.ID,
		CashierID: sale.CashierID,
		Total:     sale.Total,
		Timestamp: time.Now().UTC(),
	})

	return &sale, nil
}

func (s *SalesHandler) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		Where("id = ?", id).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "Sale", ID: id}
		}
		return nil, err
	}
	return &sale, nil
}

func (s *SalesHandler) ListSales(ctx context.Context, q ListSalesQuery) ([]models.Sale, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 1000 {
		q.PageSize = 100
	}

	query := s.db.WithContext(ctx).Model(&models.Sale{})
	if q.StartDate != nil {
		query = query.Where("created_at >= ?", q.StartDate.UTC())
	}
	if q.EndDate != nil {
		query = query.Where("created_at <= ?", q.EndDate.UTC())
	}
	if q.CashierID != "" {
		query = query.Where("cashier_id = ?", q.CashierID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []models.Sale
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no") }).
		Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

// GetDailyStats aggregates the sales committed in the UTC day containing
// the given time.
func (s *SalesHandler) GetDailyStats(ctx context.Context, date time.Time) (*DailyStats, error) {
	d := date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var sales []models.Sale
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&sales).Error; err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	itemsSold := 0
	for _, sale := range sales {
		total, err := decimal.NewFromString(sale.Total)
		if err != nil {
			return nil, err
		}
		revenue = revenue.Add(total)
		for _, item := range sale.Items {
			itemsSold += item.Quantity
		}
	}

	rev, _ := revenue.Float64()
	return &DailyStats{
		Date:           start.Format("2006-01-02"),
		TotalSales:     int64(len(sales)),
		TotalRevenue:   rev,
		TotalItemsSold: itemsSold,
	}, nil
}

func (s *SalesHandler) publishSaleEvent(ctx context.Context, event saleEvent) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal sale event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, salesEventChannel, raw).Err(); err != nil {
		log.Printf("Failed to publish sale event: %v", err)
	}
}
