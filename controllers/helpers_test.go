package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/middleware"
	"github.com/tabletap/tabletap-api/models"
	"github.com/tabletap/tabletap-api/services"
)

const testSessionID = "test-session"

// setupTest wires an in-memory database and mock services, and returns the
// mock notifier for event assertions.
func setupTest(t *testing.T) (*gorm.DB, *services.MockNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	// Every pool connection to :memory: gets its own database; pin the pool
	// to one connection so all handlers share the schema
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := config.MigrateDatabase(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)

	services.SetCartService(services.NewCartService(services.DefaultCartTTL))
	services.SetOrderService(services.NewOrderService(time.UTC))
	services.SetBillService(services.NewBillService(services.GetOrderService(), "Test Kitchen"))

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()
	services.NewMockImageService().SetAsMockForTesting()
	services.InitQRService(mockS3, "http://test.local")

	notifier := services.NewMockNotifier()
	notifier.SetAsMockForTesting()
	t.Cleanup(func() { services.SetNotifier(nil) })

	return db, notifier
}

// testSession stands in for middleware.CartSession with a fixed session ID
func testSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, testSessionID)
		c.Next()
	}
}

// newTestRouter builds the customer and admin routes without authentication
func newTestRouter(hub *services.Hub) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/api/v1")

	customer := v1.Group("")
	customer.Use(testSession())
	customer.GET("/menu/:tableId", GetMenu)
	customer.GET("/cart", GetCart)
	customer.POST("/cart/items", UpdateCartItem)
	customer.POST("/orders", PlaceOrder)
	customer.GET("/tables/:id/orders", GetTableOrders)

	admin := v1.Group("/admin")
	admin.GET("/categories", ListCategories)
	admin.POST("/categories", CreateCategory)
	admin.PUT("/categories/:id", UpdateCategory)
	admin.DELETE("/categories/:id", DeleteCategory)
	admin.GET("/products", ListProducts)
	admin.POST("/products", CreateProduct)
	admin.PUT("/products/:id", UpdateProduct)
	admin.DELETE("/products/:id", DeleteProduct)
	admin.GET("/tables", ListTables)
	admin.POST("/tables", CreateTable)
	admin.PUT("/tables/:id", UpdateTable)
	admin.DELETE("/tables/:id", DeleteTable)
	admin.GET("/orders", ListOrders)
	admin.PATCH("/orders/:id/status", UpdateOrderStatus)
	admin.DELETE("/orders/:id", DeleteOrder)
	admin.GET("/bills/:orderId", ViewBill)
	admin.GET("/bills/:orderId/download", DownloadBill)

	if hub != nil {
		v1.GET("/ws", Realtime(hub))
	}

	return router
}

// seedTestMenu creates a category, a table, and two products (100 and 50 paise)
func seedTestMenu(t *testing.T, db *gorm.DB) (models.Table, models.Product, models.Product) {
	t.Helper()

	category := models.Category{Name: "Mains"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}

	table := models.Table{Name: "T1"}
	db.Create(&table)

	productA := models.Product{Name: "Paneer Tikka", Price: 100, CategoryID: category.ID}
	productB := models.Product{Name: "Lassi", Price: 50, CategoryID: category.ID}
	db.Create(&productA)
	db.Create(&productB)
	return table, productA, productB
}

// performJSON issues a request with an optional JSON body and decodes nothing
func performJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return response
}

// errorCode extracts error.code from a response envelope
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	response := decodeBody(t, w)
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response has no error object: %s", w.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}
