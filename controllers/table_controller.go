package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/models"
	"github.com/tabletap/tabletap-api/services"
)

// TableRequest represents the request body for creating or updating a table
type TableRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListTables handles GET /api/v1/admin/tables
func ListTables(c *gin.Context) {
	var tables []models.Table
	if err := config.GetDB().Order("id").Find(&tables).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	attachQRURLs(tables)

	respondSuccess(c, http.StatusOK, tables)
}

// CreateTable handles POST /api/v1/admin/tables - creates the table and
// generates its QR code
func CreateTable(c *gin.Context) {
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	db := config.GetDB()
	table := models.Table{Name: req.Name}
	if err := db.Create(&table).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	if ok := generateTableQR(c, db, &table); !ok {
		return
	}

	respondSuccess(c, http.StatusCreated, table)
}

// UpdateTable handles PUT /api/v1/admin/tables/:id - renames the table and
// regenerates its QR code
func UpdateTable(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
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

	table.Name = req.Name
	if err := db.Save(&table).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	if ok := generateTableQR(c, db, &table); !ok {
		return
	}

	respondSuccess(c, http.StatusOK, table)
}

// DeleteTable handles DELETE /api/v1/admin/tables/:id - removes the table and
// its stored QR code
func DeleteTable(c *gin.Context) {
	tableID, ok := parseIDParam(c, "id")
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

	// QR removal is best-effort; a leftover object in the bucket is harmless
	if err := services.GetQRService().RemoveForTable(table.ID); err != nil {
		log.Printf("warning: failed to remove QR for table %d: %v", table.ID, err)
	}

	if err := db.Delete(&table).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": tableID})
}

// generateTableQR renders and stores the table's QR code and records its key.
// Returns false when a response was already written.
func generateTableQR(c *gin.Context, db *gorm.DB, table *models.Table) bool {
	key, err := services.GetQRService().GenerateForTable(table.ID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}

	table.QRS3Key = &key
	if err := db.Save(table).Error; err != nil {
		respondServiceError(c, err)
		return false
	}

	if url, err := services.GetQRService().GetQRURL(key); err == nil && url != "" {
		table.QRURL = &url
	}
	return true
}

// attachQRURLs fills the computed QRURL field with presigned URLs
func attachQRURLs(tables []models.Table) {
	qrService := services.GetQRService()
	if qrService == nil {
		return
	}
	for i := range tables {
		if tables[i].QRS3Key == nil {
			continue
		}
		url, err := qrService.GetQRURL(*tables[i].QRS3Key)
		if err != nil || url == "" {
			continue
		}
		tables[i].QRURL = &url
	}
}
