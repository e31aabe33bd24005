package repositories

import (
	"fmt"
	"sync"

	"kasir/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts      map[uint]*models.Cart // keyed by user ID
	nextCartID uint
	nextItemID uint
	mu         sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts:      make(map[uint]*models.Cart),
		nextCartID: 1,
		nextItemID: 1,
	}
}

// GetByUserID returns a copy of the user's cart.
func (r *MockCartRepository) GetByUserID(userID uint) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", ErrCartNotFound, userID)
	}
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

// Create adds a new cart for a user.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == 0 {
		cart.ID = r.nextCartID
		r.nextCartID++
	}
	stored := *cart
	stored.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &stored
	return nil
}

// SaveItem inserts or updates a single cart item.
func (r *MockCartRepository) SaveItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.cartByID(item.CartID)
	if cart == nil {
		return fmt.Errorf("%w: cart %d", ErrCartNotFound, item.CartID)
	}
	if item.ID == 0 {
		item.ID = r.nextItemID
		r.nextItemID++
		cart.Items = append(cart.Items, *item)
		return nil
	}
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i] = *item
			return nil
		}
	}
	cart.Items = append(cart.Items, *item)
	return nil
}

// DeleteItem removes a single cart item by its ID.
func (r *MockCartRepository) DeleteItem(itemID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

// ClearItems removes all items from a cart.
func (r *MockCartRepository) ClearItems(cartID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.cartByID(cartID)
	if cart != nil {
		cart.Items = nil
	}
	return nil
}

func (r *MockCartRepository) cartByID(cartID uint) *models.Cart {
	for _, cart := range r.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}
