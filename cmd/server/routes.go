package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dukkan-system/config"
	"dukkan-system/internal/database"
	"dukkan-system/internal/gateway/handlers"
	"dukkan-system/internal/gateway/middleware"
	cataloghandler "dukkan-system/internal/services/catalog/handler"
	dashboardhandler "dukkan-system/internal/services/dashboard/handler"
	financehandler "dukkan-system/internal/services/finance/handler"
	saleshandler "dukkan-system/internal/services/sales/handler"
	stockhandler "dukkan-system/internal/services/stock/handler"
	userhandler "dukkan-system/internal/services/user/handler"
	"dukkan-system/internal/stocklock"
	"dukkan-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.JwtSecret = []byte(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	locks := stocklock.NewRegistry()

	catalogSvc := cataloghandler.NewCatalogHandler(db, rdb, locks)
	stockSvc := stockhandler.NewStockHandler(db, rdb, locks)
	salesSvc := saleshandler.NewSalesHandler(db, rdb, locks)
	userSvc := userhandler.NewUserHandler(db, rdb, cfg.Auth.TokenTTL)
	financeSvc := financehandler.NewFinanceHandler(db)
	dashboardSvc := dashboardhandler.NewDashboardHandler(db, rdb, salesSvc)

	userHandler := handlers.NewUserHTTPHandler(userSvc)
	inventoryHandler := handlers.NewInventoryHTTPHandler(catalogSvc)
	stockHandler := handlers.NewStockHTTPHandler(stockSvc)
	posHandler := handlers.NewPOSHTTPHandler(salesSvc)
	financeHandler := handlers.NewFinanceHTTPHandler(financeSvc)
	dashboardHandler := handlers.NewDashboardHTTPHandler(dashboardSvc)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(cfg.Server.RateLimit))

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		auth := protected.Group("/auth")
		{
			auth.GET("/me", userHandler.Me)
			auth.POST("/logout", userHandler.Logout)
		}

		users := protected.Group("/users")
		users.Use(middleware.AdminOnly())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		products := protected.Group("/products")
		{
			products.GET("", inventoryHandler.ListProducts)
			products.GET("/barcode/:barcode", inventoryHandler.GetProductByBarcode)
			products.GET("/:id", inventoryHandler.GetProduct)
			products.POST("", middleware.AdminOnly(), inventoryHandler.CreateProduct)
			products.PUT("/:id", middleware.AdminOnly(), inventoryHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AdminOnly(), inventoryHandler.DeleteProduct)
		}

		stock := protected.Group("/stock")
		{
			stock.GET("/movements", stockHandler.ListMovements)
			stock.POST("/movement", stockHandler.CreateMovement)
			stock.GET("/low", stockHandler.ListLowStock)
		}

		sales := protected.Group("/sales")
		{
			sales.GET("", posHandler.ListSales)
			sales.POST("", posHandler.CreateSale)
			sales.GET("/reports/daily", posHandler.DailyReport)
			sales.GET("/:id", posHandler.GetSale)
		}

		finance := protected.Group("/finance")
		{
			finance.GET("", financeHandler.ListTransactions)
			finance.POST("", financeHandler.CreateTransaction)
			finance.PUT("/:id", financeHandler.UpdateTransaction)
			finance.DELETE("/:id", financeHandler.DeleteTransaction)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.GetStats)
			dashboard.GET("/top-products", dashboardHandler.GetTopProducts)
			dashboard.GET("/cashier-performance", middleware.AdminOnly(), dashboardHandler.GetCashierPerformance)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		status := "healthy"
		httpStatus := http.StatusOK

		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if rdb.Ping(ctx).Err() != nil {
			status = "degraded"
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"message":   "Server is running",
			"timestamp": time.Now().UTC(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
