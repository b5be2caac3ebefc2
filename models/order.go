package models

import (
	"time"
)

// Order statuses. An order starts as pending, staff move it between pending
// and preparing, and bill generation moves it to completed. Completed is
// terminal.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusCompleted = "completed"
)

// ActiveStatuses are the non-terminal statuses. A table's order in one of
// these statuses is its "active" order and absorbs further placements.
var ActiveStatuses = []string{StatusPending, StatusPreparing}

// Order represents a table's running order. Orders are deleted hard, not
// soft: the partial unique index on (table_id, active status) must free up
// when an order row goes away.
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	TableID   uint        `gorm:"not null;index" json:"table_id"`
	Table     Table       `gorm:"foreignKey:TableID" json:"table"`
	Status    string      `gorm:"not null;default:'pending'" json:"status"`
	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time   `json:"created_at"` // restaurant-local time, set explicitly
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsActive reports whether the order still accepts merges and status updates.
func (o *Order) IsActive() bool {
	return o.Status == StatusPending || o.Status == StatusPreparing
}

// Total returns the sum of the order's line prices in paise.
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusPreparing || s == StatusCompleted
}

// OrderItem is one product line on an order. Qty and Price grow as repeat
// placements merge the same product into the line; (order_id, product_id) is
// unique so a product never appears twice on one order.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;uniqueIndex:uq_order_product" json:"order_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:uq_order_product" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Qty       int       `gorm:"not null;check:qty > 0" json:"qty"`
	Price     int64     `gorm:"not null" json:"price"` // Qty x unit price at merge time, paise
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
