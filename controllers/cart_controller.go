package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/middleware"
	"github.com/tabletap/tabletap-api/models"
	"github.com/tabletap/tabletap-api/services"
)

// CartItemRequest represents the request body for mutating a cart line
type CartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=increase decrease remove set"`
	Quantity  int    `json:"quantity"` // only used by the set action
}

// cartLine is one row of the cart as returned to the customer
type cartLine struct {
	Product  models.Product `json:"product"`
	Qty      int            `json:"qty"`
	Subtotal int64          `json:"subtotal"` // paise
}

// UpdateCartItem handles POST /api/v1/cart/items - applies one cart mutation
// for the caller's session and returns the updated cart.
func UpdateCartItem(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_SESSION", "Cart session missing")
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	carts := services.GetCartService()
	switch req.Action {
	case "increase":
		carts.Increase(sessionID, req.ProductID)
	case "decrease":
		carts.Decrease(sessionID, req.ProductID)
	case "remove":
		carts.Remove(sessionID, req.ProductID)
	case "set":
		carts.SetQuantity(sessionID, req.ProductID, req.Quantity)
	}

	respondCart(c, sessionID)
}

// GetCart handles GET /api/v1/cart - the caller's cart with subtotals
func GetCart(c *gin.Context) {
	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_SESSION", "Cart session missing")
		return
	}

	respondCart(c, sessionID)
}

func respondCart(c *gin.Context, sessionID string) {
	cart := services.GetCartService().Items(sessionID)
	lines := cartLines(c, cart)

	var total int64
	for _, line := range lines {
		total += line.Subtotal
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"items": lines,
		"total": total,
	})
}

// cartLines resolves cart entries against the product catalog. Entries whose
// product has vanished are silently omitted from the view; placement is where
// the strict check lives.
func cartLines(c *gin.Context, cart map[uint]int) []cartLine {
	lines := make([]cartLine, 0, len(cart))
	if len(cart) == 0 {
		return lines
	}

	ids := make([]uint, 0, len(cart))
	for pid := range cart {
		ids = append(ids, pid)
	}

	var products []models.Product
	if err := config.GetDB().Where("id IN ?", ids).Order("name").Find(&products).Error; err != nil {
		return lines
	}
	attachImageURLs(products)

	for _, product := range products {
		qty := cart[product.ID]
		lines = append(lines, cartLine{
			Product:  product,
			Qty:      qty,
			Subtotal: int64(qty) * product.Price,
		})
	}
	return lines
}
