package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/middleware"
	"github.com/tabletap/tabletap-api/models"
	"github.com/tabletap/tabletap-api/services"
)

// GetMenu handles GET /api/v1/menu/:tableId - the page a customer lands on
// after scanning a table's QR code: the table, the menu grouped by category,
// and the customer's current cart.
func GetMenu(c *gin.Context) {
	tableID, ok := parseIDParam(c, "tableId")
	if !ok {
		return
	}

	db := config.GetDB()

	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "TABLE_NOT_FOUND", "Table not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	var categories []models.Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var products []models.Product
	if err := db.Preload("Category").Order("name").Find(&products).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	attachImageURLs(products)

	sessionID, err := middleware.GetSessionID(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_SESSION", "Cart session missing")
		return
	}
	cart := services.GetCartService().Items(sessionID)

	respondSuccess(c, http.StatusOK, gin.H{
		"table":      table,
		"categories": categories,
		"products":   products,
		"cart":       cartLines(c, cart),
	})
}

// attachImageURLs fills the computed ImageURL field with presigned URLs.
// URL generation failures leave the field empty rather than failing the menu.
func attachImageURLs(products []models.Product) {
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	for i := range products {
		if products[i].ImageS3Key == nil {
			continue
		}
		url, err := imageService.GetImageURL(*products[i].ImageS3Key)
		if err != nil || url == "" {
			continue
		}
		products[i].ImageURL = &url
	}
}
