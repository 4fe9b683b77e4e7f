package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"dukkan-system/internal/database/models"
	saleshandler "dukkan-system/internal/services/sales/handler"
)

const (
	dashboardStatsCacheKey = "dashboard:stats"
	cacheTTLShort          = 5 * time.Minute
)

// DashboardHandler derives read-only statistics from sales and products.
// It never mutates anything the sale engine or the ledger own.
type DashboardHandler struct {
	db    *gorm.DB
	rdb   *redis.Client
	sales *saleshandler.SalesHandler
}

func NewDashboardHandler(db *gorm.DB, rdb *redis.Client, sales *saleshandler.SalesHandler) *DashboardHandler {
	return &DashboardHandler{db: db, rdb: rdb, sales: sales}
}

type Stats struct {
	TotalProducts  int64   `json:"total_products"`
	TotalStock     int64   `json:"total_stock"`
	DailyRevenue   float64 `json:"daily_revenue"`
	LowStockCount  int64   `json:"low_stock_count"`
	DailyItemsSold int     `json:"daily_items_sold"`
	TotalSales     int64   `json:"total_sales"`
}

type TopProduct struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	QuantitySold int     `json:"quantity_sold"`
	Revenue      float64 `json:"revenue"`
}

type CashierPerformance struct {
	CashierID    string  `json:"cashier_id"`
	CashierName  string  `json:"cashier_name"`
	SalesCount   int64   `json:"sales_count"`
	TotalRevenue float64 `json:"total_revenue"`
	AverageSale  float64 `json:"average_sale"`
}

func (s *DashboardHandler) GetStats(ctx context.Context) (*Stats, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, dashboardStatsCacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	var totalStock *int64
	if err := db.Model(&models.Product{}).Select("SUM(stock)").Scan(&totalStock).Error; err != nil {
		return nil, err
	}
	if totalStock != nil {
		stats.TotalStock = *totalStock
	}

	if err := db.Model(&models.Product{}).Where("stock <= min_stock").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Sale{}).Count(&stats.TotalSales).Error; err != nil {
		return nil, err
	}

	daily, err := s.sales.GetDailyStats(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	stats.DailyRevenue = daily.TotalRevenue
	stats.DailyItemsSold = daily.TotalItemsSold

	if s.rdb != nil {
		if raw, err := json.Marshal(stats); err == nil {
			s.rdb.Set(ctx, dashboardStatsCacheKey, raw, cacheTTLShort)
		}
	}

	return &stats, nil
}

func (s *DashboardHandler) GetTopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit < 1 || limit > 20 {
		limit = 5
	}

	var rows []TopProduct
	err := s.db.WithContext(ctx).Raw(`
		SELECT si.product_id,
		       si.product_name AS name,
		       COALESCE(p.category, '') AS category,
		       SUM(si.quantity) AS quantity_sold,
		       SUM(CAST(si.total_price AS DECIMAL)) AS revenue
		FROM sale_items si
		LEFT JOIN products p ON p.id = si.product_id
		GROUP BY si.product_id, si.product_name, p.category
		ORDER BY revenue DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DashboardHandler) GetCashierPerformance(ctx context.Context) ([]CashierPerformance, error) {
	var rows []CashierPerformance
	err := s.db.WithContext(ctx).Raw(`
		SELECT s.cashier_id,
		       COALESCE(u.full_name, '') AS cashier_name,
		       COUNT(*) AS sales_count,
		       SUM(CAST(s.total AS DECIMAL)) AS total_revenue
		FROM sales s
		LEFT JOIN users u ON u.id = s.cashier_id
		GROUP BY s.cashier_id, u.full_name
		ORDER BY total_revenue DESC`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].SalesCount > 0 {
			rows[i].AverageSale = rows[i].TotalRevenue / float64(rows[i].SalesCount)
		}
	}
	return rows, nil
}
