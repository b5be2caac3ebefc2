package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabletap/tabletap-api/models"
)

func TestCreateCategory(t *testing.T) {
	db, _ := setupTest(t)
	router := newTestRouter(nil)

	w := performJSON(router, http.MethodPost, "/api/v1/admin/categories", map[string]interface{}{"name": "Starters"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	setupTest(t)
	router := newTestRouter(nil)

	performJSON(router, http.MethodPost, "/api/v1/admin/categories", map[string]interface{}{"name": "Starters"})
	w := performJSON(router, http.MethodPost, "/api/v1/admin/categories", map[string]interface{}{"name": "Starters"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_CATEGORY", errorCode(t, w))
}

func TestCreateCategoryValidation(t *testing.T) {
	setupTest(t)
	router := newTestRouter(nil)

	w := performJSON(router, http.MethodPost, "/api/v1/admin/categories", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestListCategoriesSortedByName(t *testing.T) {
	db, _ := setupTest(t)
	router := newTestRouter(nil)

	db.Create(&models.Category{Name: "Sides"})
	db.Create(&models.Category{Name: "Drinks"})
	db.Create(&models.Category{Name: "Mains"})

	w := performJSON(router, http.MethodGet, "/api/v1/admin/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].([]interface{})
	assert.Len(t, data, 3)
	assert.Equal(t, "Drinks", data[0].(map[string]interface{})["name"])
	assert.Equal(t, "Sides", data[2].(map[string]interface{})["name"])
}

func TestUpdateCategory(t *testing.T) {
	db, _ := setupTest(t)
	router := newTestRouter(nil)

	category := models.Category{Name: "Starters"}
	db.Create(&category)

	w := performJSON(router, http.MethodPut, fmt.Sprintf("/api/v1/admin/categories/%d", category.ID),
		map[string]interface{}{"name": "Appetizers"})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Category
	db.First(&updated, category.ID)
	assert.Equal(t, "Appetizers", updated.Name)

	w = performJSON(router, http.MethodPut, "/api/v1/admin/categories/9999", map[string]interface{}{"name": "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", errorCode(t, w))
}

func TestDeleteCategory(t *testing.T) {
	db, _ := setupTest(t)
	router := newTestRouter(nil)

	category := models.Category{Name: "Starters"}
	db.Create(&category)

	w := performJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", category.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.Equal(t, int64(0), count)

	w = performJSON(router, http.MethodDelete, fmt.Sprintf("/api/v1/admin/categories/%d", category.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", errorCode(t, w))
}
