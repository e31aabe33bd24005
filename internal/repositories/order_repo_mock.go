package repositories

import (
	"fmt"
	"sort"
	"sync"

	"kasir/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[uint]models.Order
	nextID uint
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[uint]models.Order),
		nextID: 1,
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == 0 {
		order.ID = r.nextID
		r.nextID++
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = copyOrder(order)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id uint) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	copied := copyOrder(&order)
	return &copied, nil
}

// GetByUserID returns all orders placed by a user, newest first.
func (r *MockOrderRepository) GetByUserID(userID uint) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, copyOrder(&order))
		}
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].ID > orderList[j].ID
	})
	return orderList, nil
}

// GetByOrderNumber returns an order by its human-facing number.
func (r *MockOrderRepository) GetByOrderNumber(number string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.OrderNumber == number {
			copied := copyOrder(&order)
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: number %s", ErrOrderNotFound, number)
}

// Update replaces the stored order's status and payment.
func (r *MockOrderRepository) Update(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("%w: id %d for update", ErrOrderNotFound, order.ID)
	}
	stored.Status = order.Status
	if order.Payment != nil {
		payment := *order.Payment
		payment.OrderID = order.ID
		stored.Payment = &payment
	}
	r.orders[order.ID] = stored
	return nil
}

// copyOrder makes a deep enough copy that callers cannot mutate stored state.
func copyOrder(order *models.Order) models.Order {
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	if order.Payment != nil {
		payment := *order.Payment
		copied.Payment = &payment
	}
	return copied
}
