package repositories

import (
	"errors"
	"fmt"

	"kasir/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create persists a new order together with its item snapshots.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// GetByID retrieves a single order with its items and payment.
func (r *GORMOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Payment").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order by ID %d: %w", id, err)
	}
	return &order, nil
}

// GetByUserID retrieves all orders placed by a user, newest first.
func (r *GORMOrderRepository) GetByUserID(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Preload("Payment").
		Order("orders.id DESC").
		Find(&orders, "user_id = ?", userID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// GetByOrderNumber retrieves a single order by its human-facing number.
func (r *GORMOrderRepository) GetByOrderNumber(number string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("Payment").First(&order, "order_number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: number %s", ErrOrderNotFound, number)
		}
		return nil, fmt.Errorf("failed to get order by number %s: %w", number, err)
	}
	return &order, nil
}

// Update persists the order's status and payment in one transaction.
func (r *GORMOrderRepository) Update(order *models.Order) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if order.Payment != nil {
			order.Payment.OrderID = order.ID
			if err := tx.Save(order.Payment).Error; err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
		}
		res := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", order.Status)
		if res.Error != nil {
			return fmt.Errorf("failed to update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d for update", ErrOrderNotFound, order.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", order.OrderNumber, err)
	}
	return nil
}
