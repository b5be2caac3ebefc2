package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabletap/tabletap-api/services"
)

func TestGetMenu(t *testing.T) {
	db, _ := setupTest(t)
	table, productA, _ := seedTestMenu(t, db)
	router := newTestRouter(nil)

	services.GetCartService().SetQuantity(testSessionID, productA.ID, 2)

	w := performJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/menu/%d", table.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "T1", data["table"].(map[string]interface{})["name"])
	assert.Len(t, data["categories"].([]interface{}), 1)

	// Products come back name-sorted
	products := data["products"].([]interface{})
	assert.Len(t, products, 2)
	assert.Equal(t, "Lassi", products[0].(map[string]interface{})["name"])
	assert.Equal(t, "Paneer Tikka", products[1].(map[string]interface{})["name"])

	cart := data["cart"].([]interface{})
	assert.Len(t, cart, 1)
	line := cart[0].(map[string]interface{})
	assert.Equal(t, float64(2), line["qty"])
	assert.Equal(t, float64(200), line["subtotal"])
}

func TestGetMenuUnknownTable(t *testing.T) {
	setupTest(t)
	router := newTestRouter(nil)

	w := performJSON(router, http.MethodGet, "/api/v1/menu/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TABLE_NOT_FOUND", errorCode(t, w))
}

func TestGetMenuBadTableID(t *testing.T) {
	setupTest(t)
	router := newTestRouter(nil)

	w := performJSON(router, http.MethodGet, "/api/v1/menu/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
}
