package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tabletap/tabletap-api/config"
	"github.com/tabletap/tabletap-api/services"
)

// ViewBill handles GET /api/v1/admin/bills/:orderId - the bill as JSON,
// without completing the order. Staff preview bills here before printing.
func ViewBill(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	bill, err := services.GetBillService().View(config.GetDB(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"order_id":     bill.OrderID,
		"table_name":   bill.TableName,
		"lines":        bill.Lines,
		"total":        bill.Total,
		"generated_at": bill.GeneratedAt,
	})
}

// DownloadBill handles GET /api/v1/admin/bills/:orderId/download - renders
// the bill PDF and completes the order. Downloading again after completion
// returns a fresh copy of the PDF without another status change.
func DownloadBill(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	bill, err := services.GetBillService().Finalize(config.GetDB(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", bill.FileName))
	c.Data(http.StatusOK, bill.ContentType, bill.Data)
}
