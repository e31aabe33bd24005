package repositories

import (
	"errors"
	"fmt"

	"kasir/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves a user's cart with its items, in insertion order.
func (r *GORMCartRepository) GetByUserID(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrCartNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get cart for user %d: %w", userID, err)
	}
	return &cart, nil
}

// Create creates a new empty cart for a user.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if err := r.db.Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart for user %d: %w", cart.UserID, err)
	}
	return nil
}

// SaveItem inserts or updates a single cart item.
func (r *GORMCartRepository) SaveItem(item *models.CartItem) error {
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item for product %d: %w", item.ProductID, err)
	}
	return nil
}

// DeleteItem removes a single cart item by its ID.
func (r *GORMCartRepository) DeleteItem(itemID uint) error {
	if err := r.db.Delete(&models.CartItem{}, "id = ?", itemID).Error; err != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", itemID, err)
	}
	return nil
}

// ClearItems removes all items from a cart. Clearing a cart that is already
// empty is not an error.
func (r *GORMCartRepository) ClearItems(cartID uint) error {
	if err := r.db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to clear items for cart %d: %w", cartID, err)
	}
	return nil
}
