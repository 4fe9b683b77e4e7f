package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dukkan-system/internal/database"
	"dukkan-system/internal/database/models"
	saleshandler "dukkan-system/internal/services/sales/handler"
	"dukkan-system/internal/stocklock"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedFixtures(t *testing.T, db *gorm.DB) (lamp, cable models.Product) {
	t.Helper()
	lamp = models.Product{
		Barcode: "b1", Name: "LED Ampul", Category: "Aydınlatma", Brand: "Philips",
		Stock: 45, MinStock: 10, BuyPrice: "12.50", SellPrice: "18.90", TaxRate: 18,
	}
	cable = models.Product{
		Barcode: "b2", Name: "NYM Kablo", Category: "Kablo", Brand: "Öznur",
		Stock: 3, MinStock: 5, BuyPrice: "200.00", SellPrice: "285.00", TaxRate: 18,
	}
	require.NoError(t, db.Create(&lamp).Error)
	require.NoError(t, db.Create(&cable).Error)
	return lamp, cable
}

func seedCashier(t *testing.T, db *gorm.DB, username, fullName string) *models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		PasswordHash: "x",
		FullName:     fullName,
		Role:         models.RoleCashier,
		Active:       true,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func createSale(t *testing.T, sales *saleshandler.SalesHandler, cashierID, productID string, qty int, unitPrice float64) {
	t.Helper()
	_, err := sales.CreateSale(context.Background(), saleshandler.CreateSaleRequest{
		Items: []saleshandler.SaleItemRequest{
			{ProductID: productID, Quantity: qty, UnitPrice: unitPrice, TaxRate: 0},
		},
	}, cashierID)
	require.NoError(t, err)
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	sales := saleshandler.NewSalesHandler(db, nil, stocklock.NewRegistry())
	s := NewDashboardHandler(db, nil, sales)

	lamp, _ := seedFixtures(t, db)
	cashier := seedCashier(t, db, "kasiyer1", "Ayşe Yılmaz")
	createSale(t, sales, cashier.ID, lamp.ID, 2, 10.00)

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	// 45 + 3 seeded, minus the 2 sold.
	assert.Equal(t, int64(46), stats.TotalStock)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(1), stats.TotalSales)
	assert.Equal(t, 2, stats.DailyItemsSold)
	assert.InDelta(t, 20.00, stats.DailyRevenue, 0.001)
}

func TestGetStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	sales := saleshandler.NewSalesHandler(db, nil, stocklock.NewRegistry())
	s := NewDashboardHandler(db, nil, sales)

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalProducts)
	assert.Zero(t, stats.TotalStock)
	assert.Zero(t, stats.TotalSales)
	assert.Zero(t, stats.DailyRevenue)
}

func TestGetTopProducts(t *testing.T) {
	db := setupTestDB(t)
	sales := saleshandler.NewSalesHandler(db, nil, stocklock.NewRegistry())
	s := NewDashboardHandler(db, nil, sales)

	lamp, cable := seedFixtures(t, db)
	cashier := seedCashier(t, db, "kasiyer1", "Ayşe Yılmaz")
	createSale(t, sales, cashier.ID, lamp.ID, 5, 18.90)
	createSale(t, sales, cashier.ID, cable.ID, 1, 285.00)

	top, err := s.GetTopProducts(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, cable.ID, top[0].ProductID)
	assert.Equal(t, "NYM Kablo", top[0].Name)
	assert.Equal(t, "Kablo", top[0].Category)
	assert.Equal(t, 1, top[0].QuantitySold)
	assert.InDelta(t, 285.00, top[0].Revenue, 0.001)
	assert.Equal(t, lamp.ID, top[1].ProductID)
	assert.Equal(t, 5, top[1].QuantitySold)
	assert.InDelta(t, 94.50, top[1].Revenue, 0.001)

	one, err := s.GetTopProducts(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestGetCashierPerformance(t *testing.T) {
	db := setupTestDB(t)
	sales := saleshandler.NewSalesHandler(db, nil, stocklock.NewRegistry())
	s := NewDashboardHandler(db, nil, sales)

	lamp, _ := seedFixtures(t, db)
	ayse := seedCashier(t, db, "kasiyer1", "Ayşe Yılmaz")
	mehmet := seedCashier(t, db, "kasiyer2", "Mehmet Kaya")
	createSale(t, sales, ayse.ID, lamp.ID, 1, 10.00)
	createSale(t, sales, ayse.ID, lamp.ID, 1, 30.00)
	createSale(t, sales, mehmet.ID, lamp.ID, 1, 15.00)

	rows, err := s.GetCashierPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, ayse.ID, rows[0].CashierID)
	assert.Equal(t, "Ayşe Yılmaz", rows[0].CashierName)
	assert.Equal(t, int64(2), rows[0].SalesCount)
	assert.InDelta(t, 40.00, rows[0].TotalRevenue, 0.001)
	assert.InDelta(t, 20.00, rows[0].AverageSale, 0.001)

	assert.Equal(t, mehmet.ID, rows[1].CashierID)
	assert.Equal(t, int64(1), rows[1].SalesCount)
	assert.InDelta(t, 15.00, rows[1].AverageSale, 0.001)
}
