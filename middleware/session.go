package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CartSessionCookie names the cookie carrying the customer's cart session ID
	CartSessionCookie = "cart_session"
	// cartSessionMaxAge matches the cart store's idle TTL (seconds)
	cartSessionMaxAge = 2 * 60 * 60
	// SessionIDKey is the gin context key the session ID is stored under
	SessionIDKey = "session_id"
)

// CartSession assigns each customer browser a private cart session ID via
// cookie. Carts are keyed by this ID, so two phones at the same table still
// build separate carts.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(CartSessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CartSessionCookie, sessionID, cartSessionMaxAge, "/", "", false, true)
		}
		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// GetSessionID extracts the cart session ID from the Gin context
func GetSessionID(c *gin.Context) (string, error) {
	sessionID, exists := c.Get(SessionIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_SESSION", Message: "Cart session not found in context"}
	}

	sessionIDStr, ok := sessionID.(string)
	if !ok || sessionIDStr == "" {
		return "", &AuthError{Code: "INVALID_SESSION", Message: "Cart session ID is invalid"}
	}

	return sessionIDStr, nil
}
