package repositories

import (
	"kasir/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByUserID(userID uint) ([]models.Order, error)
	GetByOrderNumber(number string) (*models.Order, error)
	// Update persists the order's status together with its payment as one
	// atomic write. No reader may observe a confirmed order without its
	// payment, or the other way around.
	Update(order *models.Order) error
}
