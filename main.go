package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/controllers"
	"github.com/tabletap/tabletap-api/middleware"
	"github.com/tabletap/tabletap-api/models"
	"github.com/tabletap/tabletap-api/services"
)

func main() {
	log.Println("Starting TableTap API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database and run migrations
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := config.GetDB()
	if err := config.MigrateDatabase(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize services
	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitImageService(s3Service)
	services.InitQRService(s3Service, cfg.BaseURL)

	cartService := services.InitCartService()
	cartService.StartSweeper(10*time.Minute, make(chan struct{}))

	orderService := services.InitOrderService(cfg.Location())
	services.InitBillService(orderService, "TableTap Restaurant")

	// Realtime hub: order events fan out to every connected dashboard
	hub := services.NewHub()
	go hub.Run()
	services.InitNotifier(hub)

	// Tables created before QR storage was configured get their codes
	// generated on boot
	backfillTableQRCodes(db)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Realtime event stream
		v1.GET("/ws", controllers.Realtime(hub))

		// Customer surface: cart session cookie, no authentication
		customer := v1.Group("")
		customer.Use(middleware.CartSession())
		{
			customer.GET("/menu/:tableId", controllers.GetMenu)
			customer.GET("/cart", controllers.GetCart)
			customer.POST("/cart/items", controllers.UpdateCartItem)
			customer.POST("/orders", controllers.PlaceOrder)
			customer.GET("/tables/:id/orders", controllers.GetTableOrders)
		}

		// Staff surface: Auth0 JWT required
		admin := v1.Group("/admin")
		admin.Use(middleware.EnsureValidToken(cfg))
		{
			admin.GET("/categories", controllers.ListCategories)
			admin.POST("/categories", controllers.CreateCategory)
			admin.PUT("/categories/:id", controllers.UpdateCategory)
			admin.DELETE("/categories/:id", controllers.DeleteCategory)

			admin.GET("/products", controllers.ListProducts)
			admin.POST("/products", controllers.CreateProduct)
			admin.PUT("/products/:id", controllers.UpdateProduct)
			admin.DELETE("/products/:id", controllers.DeleteProduct)

			admin.GET("/tables", controllers.ListTables)
			admin.POST("/tables", controllers.CreateTable)
			admin.PUT("/tables/:id", controllers.UpdateTable)
			admin.DELETE("/tables/:id", controllers.DeleteTable)

			admin.GET("/orders", controllers.ListOrders)
			admin.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
			admin.DELETE("/orders/:id", controllers.DeleteOrder)

			admin.GET("/bills/:orderId", controllers.ViewBill)
			admin.GET("/bills/:orderId/download", controllers.DownloadBill)
		}
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// backfillTableQRCodes generates QR codes for tables that don't have one yet
func backfillTableQRCodes(db *gorm.DB) {
	var tables []models.Table
	if err := db.Where("qr_s3_key IS NULL").Find(&tables).Error; err != nil {
		log.Printf("warning: failed to scan tables for QR backfill: %v", err)
		return
	}

	for _, table := range tables {
		key, err := services.GetQRService().GenerateForTable(table.ID)
		if err != nil {
			log.Printf("warning: failed to generate QR for table %d: %v", table.ID, err)
			continue
		}
		if err := db.Model(&table).Update("qr_s3_key", key).Error; err != nil {
			log.Printf("warning: failed to record QR key for table %d: %v", table.ID, err)
		}
	}
	if len(tables) > 0 {
		log.Printf("QR backfill checked %d table(s)", len(tables))
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "TableTap API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
