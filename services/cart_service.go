package services

import (
	"sync"
	"time"
)

// DefaultCartTTL is how long an idle cart session is kept before the sweeper
// drops it.
const DefaultCartTTL = 2 * time.Hour

// CartService keeps one cart per browsing session, mapping product ID to a
// positive quantity. Carts are private to a session and never persisted; a
// cart is cleared when its order is placed successfully.
type CartService struct {
	mu       sync.RWMutex
	carts    map[string]map[uint]int
	lastSeen map[string]time.Time
	ttl      time.Duration
}

var cartServiceInstance *CartService

// InitCartService initializes the global cart service
func InitCartService() *CartService {
	cartServiceInstance = NewCartService(DefaultCartTTL)
	return cartServiceInstance
}

// GetCartService returns the initialized cart service instance
func GetCartService() *CartService {
	return cartServiceInstance
}

// SetCartService sets the cart service instance (primarily for testing)
func SetCartService(s *CartService) {
	cartServiceInstance = s
}

// NewCartService creates a cart service with the given idle TTL
func NewCartService(ttl time.Duration) *CartService {
	return &CartService{
		carts:    make(map[string]map[uint]int),
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
	}
}

// touch must be called with the write lock held
func (s *CartService) touch(sessionID string) map[uint]int {
	cart, ok := s.carts[sessionID]
	if !ok {
		cart = make(map[uint]int)
		s.carts[sessionID] = cart
	}
	s.lastSeen[sessionID] = time.Now()
	return cart
}

// Increase adds one unit of the product to the session's cart, creating the
// entry at quantity 1 if absent.
func (s *CartService) Increase(sessionID string, productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.touch(sessionID)
	cart[productID]++
}

// Decrease removes one unit of the product. When the quantity would drop to
// zero or below the entry is removed entirely; a zero-quantity entry never
// exists. Decreasing a missing product is a no-op.
func (s *CartService) Decrease(sessionID string, productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.touch(sessionID)
	if cart[productID] <= 1 {
		delete(cart, productID)
		return
	}
	cart[productID]--
}

// SetQuantity sets the product's quantity to an absolute value. Values <= 0
// remove the entry.
func (s *CartService) SetQuantity(sessionID string, productID uint, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.touch(sessionID)
	if qty <= 0 {
		delete(cart, productID)
		return
	}
	cart[productID] = qty
}

// Remove deletes the product from the cart unconditionally
func (s *CartService) Remove(sessionID string, productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.touch(sessionID)
	delete(cart, productID)
}

// Items returns a copy of the session's cart. Mutating the returned map does
// not affect the stored cart.
func (s *CartService) Items(sessionID string) map[uint]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart := s.carts[sessionID]
	out := make(map[uint]int, len(cart))
	for pid, qty := range cart {
		out[pid] = qty
	}
	return out
}

// Clear empties the session's cart
func (s *CartService) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	delete(s.lastSeen, sessionID)
}

// PruneExpired drops carts idle longer than the TTL and returns how many were
// removed.
func (s *CartService) PruneExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for sessionID, seen := range s.lastSeen {
		if seen.Before(cutoff) {
			delete(s.carts, sessionID)
			delete(s.lastSeen, sessionID)
			removed++
		}
	}
	return removed
}

// StartSweeper prunes expired carts on the given interval until stop is
// closed.
func (s *CartService) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.PruneExpired()
			case <-stop:
				return
			}
		}
	}()
}
