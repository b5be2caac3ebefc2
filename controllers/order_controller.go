package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/middleware"
	"github.com/tabletap/tabletap-api/services"
)

// PlaceOrderRequest represents the request body for placing an order
type PlaceOrderRequest struct {
	TableID uint `json:"table_id" binding:"required"`
}

// UpdateStatusRequest represents the request body for a staff status update
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlaceOrder handles POST /api/v1/orders - merges the caller's cart into the
// table's active order, creating one if the table has none. The cart is
// cleared only after the placement committed.
func PlaceOrder(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_SESSION", "Cart session missing")
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	carts := services.GetCartService()
	cart := carts.Items(sessionID)

	order, err := services.GetOrderService().PlaceOrder(config.GetDB(), req.TableID, cart)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	carts.Clear(sessionID)

	respondSuccess(c, http.StatusCreated, order)
}

// GetTableOrders handles GET /api/v1/tables/:id/orders - the table's
// non-completed orders, so customers can check what they have running.
func GetTableOrders(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orders, err := services.GetOrderService().ActiveOrdersForTable(config.GetDB(), tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, orders)
}

// ListOrders handles GET /api/v1/admin/orders - all orders, newest first
func ListOrders(c *gin.Context) {
	orders, err := services.GetOrderService().ListOrders(config.GetDB())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, orders)
}

// UpdateOrderStatus handles PATCH /api/v1/admin/orders/:id/status - moves an
// order between pending and preparing. Completing an order this way is
// rejected; bills are the only completion path.
func UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	order, err := services.GetOrderService().UpdateStatus(config.GetDB(), orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/admin/orders/:id - administrative
// removal of an order and its items
func DeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetOrderService().DeleteOrder(config.GetDB(), orderID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": orderID})
}
