package services

import "fmt"

// EmptyCartError is returned when a placement is attempted with no cart items
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string {
	return "cannot place an order from an empty cart"
}

// ProductNotFoundError is returned when a cart references a product that no
// longer exists. The whole placement rolls back; nothing is skipped.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// TableNotFoundError is returned when an operation references an unknown table
type TableNotFoundError struct {
	TableID uint
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table %d not found", e.TableID)
}

// OrderNotFoundError is returned when a status update or bill request
// references an unknown order
type OrderNotFoundError struct {
	OrderID uint
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.OrderID)
}

// InvalidStatusError is returned when a status update names an unknown
// status, targets a completed order, or tries to complete an order directly
// instead of going through bill generation.
type InvalidStatusError struct {
	Status string
	Reason string
}

func (e *InvalidStatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid status %q: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("invalid status %q", e.Status)
}
