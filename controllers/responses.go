package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tabletap/tabletap-api/services"
	"github.com/tabletap/tabletap-api/utils"
)

// respondSuccess writes the standard success envelope
func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps domain errors onto HTTP responses. Anything not in
// the taxonomy is a server fault and logged.
func respondServiceError(c *gin.Context, err error) {
	var (
		emptyCart       *services.EmptyCartError
		productNotFound *services.ProductNotFoundError
		tableNotFound   *services.TableNotFoundError
		orderNotFound   *services.OrderNotFoundError
		invalidStatus   *services.InvalidStatusError
		fileUpload      *utils.FileUploadError
	)

	switch {
	case errors.As(err, &emptyCart):
		respondError(c, http.StatusBadRequest, "EMPTY_CART", emptyCart.Error())
	case errors.As(err, &productNotFound):
		respondError(c, http.StatusConflict, "PRODUCT_NOT_FOUND", productNotFound.Error())
	case errors.As(err, &tableNotFound):
		respondError(c, http.StatusNotFound, "TABLE_NOT_FOUND", tableNotFound.Error())
	case errors.As(err, &orderNotFound):
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", orderNotFound.Error())
	case errors.As(err, &invalidStatus):
		respondError(c, http.StatusBadRequest, "INVALID_STATUS", invalidStatus.Error())
	case errors.As(err, &fileUpload):
		respondError(c, http.StatusBadRequest, fileUpload.Code, fileUpload.Message)
	default:
		log.Printf("internal error: %v", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}

// parseIDParam reads a positive integer path parameter
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
