package services

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/tabletap/tabletap-api/models"
)

// Bill is the rendered, downloadable artifact for one order. It is derived
// from the order's items and never stored.
type Bill struct {
	OrderID     uint
	TableName   string
	Lines       []BillLine
	Total       int64 // paise
	GeneratedAt time.Time
	FileName    string
	ContentType string
	Data        []byte
}

// BillLine is one itemized row on a bill
type BillLine struct {
	ProductName string `json:"product_name"`
	Qty         int    `json:"qty"`
	UnitPrice   int64  `json:"unit_price"` // paise
	LinePrice   int64  `json:"line_price"` // paise
}

// BillService renders bills and finalizes orders. Downloading a bill is the
// only way an order reaches the completed status.
type BillService struct {
	orders         *OrderService
	restaurantName string
}

var billServiceInstance *BillService

// InitBillService initializes the global bill service
func InitBillService(orders *OrderService, restaurantName string) *BillService {
	billServiceInstance = NewBillService(orders, restaurantName)
	return billServiceInstance
}

// GetBillService returns the initialized bill service instance
func GetBillService() *BillService {
	return billServiceInstance
}

// SetBillService sets the bill service instance (primarily for testing)
func SetBillService(s *BillService) {
	billServiceInstance = s
}

// NewBillService creates a bill service
func NewBillService(orders *OrderService, restaurantName string) *BillService {
	if restaurantName == "" {
		restaurantName = "TableTap"
	}
	return &BillService{orders: orders, restaurantName: restaurantName}
}

// View computes the bill without finalizing the order or rendering a PDF.
// Staff use this to preview a bill before handing it to the customer.
func (s *BillService) View(db *gorm.DB, orderID uint) (*Bill, error) {
	order, err := s.loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildBill(order), nil
}

// Finalize renders the order's bill PDF and completes the order. The
// completing transition and its order_completed event happen at most once;
// calling Finalize again on a completed order regenerates the artifact
// without re-transitioning or re-notifying.
func (s *BillService) Finalize(db *gorm.DB, orderID uint) (*Bill, error) {
	order, err := s.loadOrder(db, orderID)
	if err != nil {
		return nil, err
	}

	bill := s.buildBill(order)
	if err := s.renderPDF(bill); err != nil {
		return nil, fmt.Errorf("failed to render bill for order %d: %w", orderID, err)
	}

	// Complete only after the artifact rendered; a render failure must not
	// leave the order completed without a bill.
	if _, _, err := s.orders.CompleteForBilling(db, orderID); err != nil {
		return nil, err
	}

	return bill, nil
}

func (s *BillService) loadOrder(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	// Unscoped product preload: a product removed from the menu still has to
	// show its name on bills for orders that already contain it.
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_items.id") }).
		Preload("Items.Product", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Table").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &OrderNotFoundError{OrderID: orderID}
		}
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	return &order, nil
}

func (s *BillService) buildBill(order *models.Order) *Bill {
	bill := &Bill{
		OrderID:     order.ID,
		TableName:   order.Table.Name,
		GeneratedAt: time.Now().In(order.CreatedAt.Location()),
		FileName:    fmt.Sprintf("bill_%d.pdf", order.ID),
		ContentType: "application/pdf",
	}
	for _, item := range order.Items {
		unit := int64(0)
		if item.Qty > 0 {
			unit = item.Price / int64(item.Qty)
		}
		bill.Lines = append(bill.Lines, BillLine{
			ProductName: item.Product.Name,
			Qty:         item.Qty,
			UnitPrice:   unit,
			LinePrice:   item.Price,
		})
		bill.Total += item.Price
	}
	return bill
}

// renderPDF fills bill.Data with a fixed-layout A5 bill. The layout is
// deterministic apart from the generation timestamp.
func (s *BillService) renderPDF(bill *Bill) error {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle(fmt.Sprintf("Bill #%d", bill.OrderID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, s.restaurantName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Bill #%d  -  Table: %s", bill.OrderID, bill.TableName), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, bill.GeneratedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(58, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(28, 7, "Rate", "B", 0, "R", false, 0, "")
	pdf.CellFormat(28, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range bill.Lines {
		pdf.CellFormat(58, 7, line.ProductName, "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", line.Qty), "", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, FormatPaise(line.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, FormatPaise(line.LinePrice), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(101, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(28, 8, FormatPaise(bill.Total), "T", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, "Thank you for dining with us!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return err
	}
	bill.Data = buf.Bytes()
	return nil
}

// FormatPaise renders a paise amount as rupees with two decimals. The "Rs."
// prefix keeps the PDF within the core-font character set.
func FormatPaise(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%sRs. %d.%02d", sign, paise/100, paise%100)
}
