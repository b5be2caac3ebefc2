package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabletap/tabletap-api/models"
	"github.com/tabletap/tabletap-api/services"
)

func TestPlaceOrderEndpoint(t *testing.T) {
	db, notifier := setupTest(t)
	table, productA, productB := seedTestMenu(t, db)
	router := newTestRouter(nil)

	carts := services.GetCartService()
	carts.SetQuantity(testSessionID, productA.ID, 2)
	carts.SetQuantity(testSessionID, productB.ID, 1)

	w := performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})
	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeBody(t, w)
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, float64(table.ID), data["table_id"])
	assert.Len(t, data["items"].([]interface{}), 2)

	// Cart cleared only after a committed placement
	assert.Empty(t, carts.Items(testSessionID))

	assert.Len(t, notifier.EventsNamed(services.EventNewOrder), 1)
}

func TestPlaceOrderEndpointEmptyCart(t *testing.T) {
	db, notifier := setupTest(t)
	table, _, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	w := performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_CART", errorCode(t, w))
	assert.Empty(t, notifier.Events())
}

func TestPlaceOrderEndpointVanishedProduct(t *testing.T) {
	db, _ := setupTest(t)
	table, productA, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	carts := services.GetCartService()
	carts.SetQuantity(testSessionID, productA.ID, 1)
	carts.SetQuantity(testSessionID, 9999, 1)

	w := performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, w))

	// Nothing committed, cart untouched for the customer to fix
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
	assert.Len(t, carts.Items(testSessionID), 2)
}

func TestPlaceOrderEndpointMerges(t *testing.T) {
	db, _ := setupTest(t)
	table, productA, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	carts := services.GetCartService()
	carts.SetQuantity(testSessionID, productA.ID, 2)
	performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})

	carts.SetQuantity(testSessionID, productA.ID, 1)
	w := performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var item models.OrderItem
	db.Where("product_id = ?", productA.ID).First(&item)
	assert.Equal(t, 3, item.Qty)
	assert.Equal(t, int64(300), item.Price)
}

func TestGetTableOrders(t *testing.T) {
	db, _ := setupTest(t)
	table, productA, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	carts := services.GetCartService()
	carts.SetQuantity(testSessionID, productA.ID, 1)
	performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/tables/%d/orders", table.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Len(t, response["data"].([]interface{}), 1)

	w = performJSON(router, http.MethodGet, "/api/v1/tables/9999/orders", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TABLE_NOT_FOUND", errorCode(t, w))
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	db, notifier := setupTest(t)
	table, productA, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	carts := services.GetCartService()
	carts.SetQuantity(testSessionID, productA.ID, 1)
	w := performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})
	orderID := uint(decodeBody(t, w)["data"].(map[string]interface{})["id"].(float64))
	notifier.Clear()

	w = performJSON(router, http.MethodPatch, fmt.Sprintf("/api/v1/admin/orders/%d/status", orderID),
		map[string]interface{}{"status": "preparing"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "preparing", data["status"])
	assert.Len(t, notifier.EventsNamed(services.EventStatusUpdated), 1)

	tests := []struct {
		name         string
		orderID      string
		status       string
		expectedCode int
		expectedErr  string
	}{
		{"unknown order", "9999", "preparing", http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"unknown status", fmt.Sprintf("%d", orderID), "burnt", http.StatusBadRequest, "INVALID_STATUS"},
		{"direct completion rejected", fmt.Sprintf("%d", orderID), "completed", http.StatusBadRequest, "INVALID_STATUS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPatch, "/api/v1/admin/orders/"+tt.orderID+"/status",
				map[string]interface{}{"status": tt.status})
			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.expectedErr, errorCode(t, w))
		})
	}
}

func TestListOrdersEndpoint(t *testing.T) {
	db, _ := setupTest(t)
	table, productA, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	carts := services.GetCartService()
	carts.SetQuantity(testSessionID, productA.ID, 1)
	performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})

	w := performJSON(router, http.MethodGet, "/api/v1/admin/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]interface{})
	assert.Len(t, data, 1)
	order := data[0].(map[string]interface{})
	assert.Equal(t, "T1", order["table"].(map[string]interface{})["name"])
}

func TestDeleteOrderEndpoint(t *testing.T) {
	db, _ := setupTest(t)
	table, productA, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	carts := services.GetCartService()
	carts.SetQuantity(testSessionID, productA.ID, 1)
	w := performJSON(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{"table_id": table.ID})
	orderID := uint(decodeBody(t, w)["data"].(map[string]interface{})["id"].(float64))

	w = performJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)

	w = performJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
