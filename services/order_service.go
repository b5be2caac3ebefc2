package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tabletap/tabletap-api/models"
)

// OrderService owns the order lifecycle: merging carts into a table's single
// active order, moving orders between statuses, and completing them when a
// bill is generated.
//
// Per-table mutation is serialized two ways. In-process, a mutex striped by
// table ID makes concurrent placements against one table take turns. Across
// processes, the partial unique index on orders(table_id) for active statuses
// rejects a second simultaneous active order; the loser of that race retries
// and merges into the winner's order instead of surfacing an error.
type OrderService struct {
	loc        *time.Location
	tableLocks sync.Map // table ID -> *sync.Mutex
}

var orderServiceInstance *OrderService

// InitOrderService initializes the global order service. Order timestamps are
// recorded in loc, the restaurant's local zone.
func InitOrderService(loc *time.Location) *OrderService {
	orderServiceInstance = NewOrderService(loc)
	return orderServiceInstance
}

// GetOrderService returns the initialized order service instance
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// SetOrderService sets the order service instance (primarily for testing)
func SetOrderService(s *OrderService) {
	orderServiceInstance = s
}

// NewOrderService creates an order service recording timestamps in loc
func NewOrderService(loc *time.Location) *OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{loc: loc}
}

func (s *OrderService) lockTable(tableID uint) func() {
	v, _ := s.tableLocks.LoadOrStore(tableID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// PlaceOrder merges the cart into the table's active order, creating one if
// the table has none. The whole placement is one transaction: if any cart
// entry references a product that no longer exists, nothing is committed.
// The caller is responsible for clearing the cart after a nil error return.
func (s *OrderService) PlaceOrder(db *gorm.DB, tableID uint, cart map[uint]int) (*models.Order, error) {
	// Entries with non-positive quantities cannot exist in a well-formed
	// cart; drop them rather than writing invalid lines.
	productIDs := make([]uint, 0, len(cart))
	for pid, qty := range cart {
		if qty > 0 {
			productIDs = append(productIDs, pid)
		}
	}
	if len(productIDs) == 0 {
		return nil, &EmptyCartError{}
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TableNotFoundError{TableID: tableID}
		}
		return nil, fmt.Errorf("failed to load table %d: %w", tableID, err)
	}

	unlock := s.lockTable(tableID)
	defer unlock()

	order, err := s.mergeCart(db, tableID, productIDs, cart)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another process created the active order between our lookup and
		// insert. Its order exists now, so a retry merges into it.
		order, err = s.mergeCart(db, tableID, productIDs, cart)
	}
	if err != nil {
		return nil, err
	}

	// Reload with relations for the caller's response
	if err := db.Preload("Items.Product").Preload("Table").First(order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order %d: %w", order.ID, err)
	}

	// Best-effort; placement is already committed and must not fail here
	publishEvent(EventNewOrder, NewOrderData{
		OrderID:   order.ID,
		TableID:   order.TableID,
		Status:    order.Status,
		CreatedAt: FormatEventTime(order.CreatedAt),
	})

	return order, nil
}

// mergeCart runs one find-or-create-and-merge attempt in a transaction
func (s *OrderService) mergeCart(db *gorm.DB, tableID uint, productIDs []uint, cart map[uint]int) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("table_id = ? AND status IN ?", tableID, models.ActiveStatuses).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order = models.Order{
				TableID:   tableID,
				Status:    models.StatusPending,
				CreatedAt: time.Now().In(s.loc),
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up active order: %w", err)
		}

		for _, pid := range productIDs {
			qty := cart[pid]

			var product models.Product
			if err := tx.First(&product, pid).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductNotFoundError{ProductID: pid}
				}
				return fmt.Errorf("failed to load product %d: %w", pid, err)
			}

			var item models.OrderItem
			err := tx.Where("order_id = ? AND product_id = ?", order.ID, pid).First(&item).Error
			switch {
			case err == nil:
				item.Qty += qty
				item.Price = int64(item.Qty) * product.Price
				if err := tx.Save(&item).Error; err != nil {
					return fmt.Errorf("failed to update order item: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				item = models.OrderItem{
					OrderID:   order.ID,
					ProductID: pid,
					Qty:       qty,
					Price:     int64(qty) * product.Price,
				}
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("failed to create order item: %w", err)
				}
			default:
				return fmt.Errorf("failed to look up order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves an order between the non-terminal statuses. Completed is
// deliberately unreachable here: the only path to completed is bill
// generation, so a bill exists for every finished order.
func (s *OrderService) UpdateStatus(db *gorm.DB, orderID uint, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, &InvalidStatusError{Status: status, Reason: "unknown status"}
	}
	if status == models.StatusCompleted {
		return nil, &InvalidStatusError{Status: status, Reason: "orders are completed via bill generation"}
	}

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &OrderNotFoundError{OrderID: orderID}
		}
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	unlock := s.lockTable(order.TableID)
	defer unlock()

	// Reload under the lock; the order may have been completed meanwhile
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &OrderNotFoundError{OrderID: orderID}
		}
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order.Status == models.StatusCompleted {
		return nil, &InvalidStatusError{Status: status, Reason: "order is already completed"}
	}

	if err := db.Model(&order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order %d status: %w", orderID, err)
	}

	publishEvent(EventStatusUpdated, StatusUpdatedData{OrderID: order.ID, Status: order.Status})

	return &order, nil
}

// CompleteForBilling transitions the order to completed on behalf of the bill
// finalizer. It reports whether this call performed the transition: an
// already-completed order returns false and emits nothing, so regenerating a
// bill never duplicates the order_completed event.
func (s *OrderService) CompleteForBilling(db *gorm.DB, orderID uint) (*models.Order, bool, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, &OrderNotFoundError{OrderID: orderID}
		}
		return nil, false, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	unlock := s.lockTable(order.TableID)
	defer unlock()

	if err := db.First(&order, orderID).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order.Status == models.StatusCompleted {
		return &order, false, nil
	}

	if err := db.Model(&order).Update("status", models.StatusCompleted).Error; err != nil {
		return nil, false, fmt.Errorf("failed to complete order %d: %w", orderID, err)
	}

	publishEvent(EventOrderCompleted, OrderCompletedData{OrderID: order.ID, TableID: order.TableID})

	return &order, true, nil
}

// ListOrders returns all orders, newest first, for the staff dashboard
func (s *OrderService) ListOrders(db *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Items.Product").Preload("Table").
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ActiveOrdersForTable returns the table's non-completed orders, newest
// first. Under the single-active-order invariant this is at most one row,
// but the query does not assume it.
func (s *OrderService) ActiveOrdersForTable(db *gorm.DB, tableID uint) ([]models.Order, error) {
	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &TableNotFoundError{TableID: tableID}
		}
		return nil, fmt.Errorf("failed to load table %d: %w", tableID, err)
	}

	var orders []models.Order
	err := db.Preload("Items.Product").Preload("Table").
		Where("table_id = ? AND status <> ?", tableID, models.StatusCompleted).
		Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for table %d: %w", tableID, err)
	}
	return orders, nil
}

// DeleteOrder removes an order and its items. Administrative only; customer
// flows never delete orders.
func (s *OrderService) DeleteOrder(db *gorm.DB, orderID uint) error {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OrderNotFoundError{OrderID: orderID}
		}
		return fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	unlock := s.lockTable(order.TableID)
	defer unlock()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := tx.Delete(&models.Order{}, orderID).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}
