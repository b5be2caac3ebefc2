package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/models"
	"github.com/tabletap/tabletap-api/services"
)

const productsPerPage = 10

// ListProducts handles GET /api/v1/admin/products with pagination, category
// filtering, and sorting. Query params: page, category_id, sort_by
// (name_asc, name_desc, price_asc, price_desc, newest, oldest).
func ListProducts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	sortBy := c.DefaultQuery("sort_by", "newest")

	db := config.GetDB()
	query := db.Model(&models.Product{}).Preload("Category")

	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil && categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	switch sortBy {
	case "name_asc":
		query = query.Order("name ASC")
	case "name_desc":
		query = query.Order("name DESC")
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "newest":
		query = query.Order("id DESC")
	default:
		query = query.Order("id ASC")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var products []models.Product
	if err := query.Limit(productsPerPage).Offset((page - 1) * productsPerPage).Find(&products).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	attachImageURLs(products)

	respondSuccess(c, http.StatusOK, gin.H{
		"products": products,
		"page":     page,
		"per_page": productsPerPage,
		"total":    total,
	})
}

// CreateProduct handles POST /api/v1/admin/products. Multipart form: name,
// price (paise), category_id, optional image file.
func CreateProduct(c *gin.Context) {
	name, price, categoryID, ok := parseProductForm(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	product := models.Product{
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
	}

	if key, ok := uploadProductImage(c); !ok {
		return
	} else if key != "" {
		product.ImageS3Key = &key
	}

	if err := db.Create(&product).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := db.Preload("Category").First(&product, product.ID).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/admin/products/:id. Replaces name, price
// and category; a new image replaces (and deletes) the old one.
func UpdateProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	name, price, categoryID, ok := parseProductForm(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	var category models.Category
	if err := db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	oldKey := product.ImageS3Key
	if key, ok := uploadProductImage(c); !ok {
		return
	} else if key != "" {
		product.ImageS3Key = &key
		if oldKey != nil && *oldKey != key {
			// Best-effort cleanup of the replaced image
			if err := services.GetImageService().DeleteImage(*oldKey); err != nil {
				respondServiceError(c, err)
				return
			}
		}
	}

	product.Name = name
	product.Price = price
	product.CategoryID = categoryID

	if err := db.Save(&product).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if err := db.Preload("Category").First(&product, product.ID).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/admin/products/:id. The product is
// soft-deleted so items on already-placed orders keep resolving its name.
func DeleteProduct(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	if err := db.Delete(&product).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": productID})
}

// parseProductForm reads the shared multipart fields for create/update
func parseProductForm(c *gin.Context) (name string, price int64, categoryID uint, ok bool) {
	name = c.PostForm("name")
	if name == "" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return "", 0, 0, false
	}

	price, err := strconv.ParseInt(c.PostForm("price"), 10, 64)
	if err != nil || price < 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price must be a non-negative integer (paise)")
		return "", 0, 0, false
	}

	rawCategory, err := strconv.ParseUint(c.PostForm("category_id"), 10, 32)
	if err != nil || rawCategory == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "category_id is required")
		return "", 0, 0, false
	}

	return name, price, uint(rawCategory), true
}

// uploadProductImage uploads the optional image field. Returns ok=false when
// a response was already written.
func uploadProductImage(c *gin.Context) (key string, ok bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No image attached is fine
		return "", true
	}

	key, err = services.GetImageService().UploadImage(fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return "", false
	}
	return key, true
}
