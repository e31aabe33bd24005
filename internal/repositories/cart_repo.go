package repositories

import (
	"kasir/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetByUserID(userID uint) (*models.Cart, error)
	Create(cart *models.Cart) error
	SaveItem(item *models.CartItem) error
	DeleteItem(itemID uint) error
	ClearItems(cartID uint) error
}
