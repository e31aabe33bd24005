package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"kasir/internal/models"
	"kasir/internal/repositories"

	"github.com/google/uuid"
)

// CartProvider is the cart-store boundary consumed during order placement.
// CartService satisfies it.
type CartProvider interface {
	GetCart(userID uint) (*models.CartResponse, error)
	ClearCart(userID uint) error
}

// PaymentAuthorizer decides the payment outcome for an order.
// PaymentService satisfies it.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, order *models.Order, req *models.PlaceOrderRequest) (*models.Payment, error)
}

// Notifier delivers order confirmations best-effort.
// NotificationService satisfies it.
type Notifier interface {
	SendOrderConfirmation(order *models.Order)
}

// OrderService turns a cart into a confirmed order and answers order queries.
//
// PlaceOrder runs a fixed step sequence across the cart store, the order
// store, the payment authorizer and the notifier, with one durability
// checkpoint (the PENDING order write) and a per-step failure policy instead
// of a distributed transaction:
//
//	fetch cart -> create PENDING order -> authorize payment ->
//	confirm + attach payment -> clear cart -> notify
//
// Everything up to and including the confirm write is fail-fast; cart clear
// and notification are logged-and-swallowed because the order is already
// placed by then.
type OrderService struct {
	orderRepo      repositories.OrderRepository
	cart           CartProvider
	payments       PaymentAuthorizer
	notifier       Notifier
	paymentTimeout time.Duration

	mu        sync.Mutex
	userLocks map[uint]*sync.Mutex
}

// NewOrderService creates a new OrderService. paymentTimeout bounds the
// authorization step; an expired deadline counts as a declined payment.
func NewOrderService(orderRepo repositories.OrderRepository, cart CartProvider, payments PaymentAuthorizer, notifier Notifier, paymentTimeout time.Duration) *OrderService {
	if paymentTimeout <= 0 {
		paymentTimeout = 5 * time.Second
	}
	return &OrderService{
		orderRepo:      orderRepo,
		cart:           cart,
		payments:       payments,
		notifier:       notifier,
		paymentTimeout: paymentTimeout,
		userLocks:      make(map[uint]*sync.Mutex),
	}
}

// PlaceOrder executes one placement attempt for the requesting user.
//
// The whole cart-read-through-cart-clear window runs under a per-user lock,
// so a second concurrent placement for the same user waits and then fails
// with ErrEmptyCart instead of duplicating the order. Each call creates a
// new order; placement is not idempotent across retries.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.OrderResponse, error) {
	lock := s.userLock(req.UserID)
	lock.Lock()
	defer lock.Unlock()

	// Step 1: fetch the cart snapshot. Read only, nothing mutated yet.
	cart, err := s.cart.GetCart(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetching cart for user %d: %w", req.UserID, err)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: user %d", ErrEmptyCart, req.UserID)
	}

	// Step 2: persist a PENDING order against the snapshot. This is the
	// durability checkpoint: from here on an order record exists even if a
	// later step fails.
	order := &models.Order{
		OrderNumber:           generateOrderNumber(),
		UserID:                req.UserID,
		CustomerName:          req.CustomerName,
		CustomerEmail:         req.CustomerEmail,
		CustomerMobile:        req.CustomerMobile,
		TotalAmount:           cart.TotalAmount,
		Status:                models.OrderStatusPending,
		OrderDate:             time.Now(),
		EstimatedDeliveryDate: estimateDeliveryDate(),
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal,
		})
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("creating order for user %d: %w", req.UserID, err)
	}

	// Step 3: authorize payment. On decline the PENDING order stays in the
	// store with no payment attached, left for out-of-band reconciliation.
	payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()
	payment, err := s.payments.Authorize(payCtx, order, req)
	if err != nil {
		return nil, fmt.Errorf("authorizing payment for order %s: %w", order.OrderNumber, err)
	}

	// Step 4: reconcile. Completed card payments and pending cash payments
	// both confirm the order; a failed payment never reaches this point.
	order.Payment = payment
	if payment.Status == models.PaymentStatusCompleted || payment.Status == models.PaymentStatusPending {
		order.Status = models.OrderStatusConfirmed
	}

	// Step 5: persist status and payment as one atomic update.
	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("persisting confirmed order %s: %w", order.OrderNumber, err)
	}

	// Step 6: clear the cart. The order is already confirmed, so a failure
	// here is logged and the stale cart is left for out-of-band cleanup.
	if err := s.cart.ClearCart(req.UserID); err != nil {
		log.Printf("Warning: failed to clear cart for user %d after order %s: %v", req.UserID, order.OrderNumber, err)
	}

	// Step 7: notify, best effort. The notifier swallows its own failures.
	s.notifier.SendOrderConfirmation(order)

	return buildOrderResponse(order, "Order placed successfully!"), nil
}

// GetOrderByID retrieves a single order by its numeric ID.
func (s *OrderService) GetOrderByID(id uint) (*models.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return buildOrderResponse(order, ""), nil
}

// GetOrdersByUser retrieves all orders placed by a user.
func (s *OrderService) GetOrdersByUser(userID uint) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrderByNumber retrieves a single order by its human-facing number.
func (s *OrderService) GetOrderByNumber(number string) (*models.OrderResponse, error) {
	order, err := s.orderRepo.GetByOrderNumber(number)
	if err != nil {
		return nil, err
	}
	return buildOrderResponse(order, ""), nil
}

// userLock returns the placement lock for a user, creating it on first use.
func (s *OrderService) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// generateOrderNumber builds a time-derived order number with a short random
// suffix. Collisions are astronomically rare and not retried.
func generateOrderNumber() string {
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return "ORD" + strconv.FormatInt(time.Now().UnixMilli(), 10) + suffix
}

// estimateDeliveryDate picks a delivery date 4 to 9 days out, computed once
// at order creation.
func estimateDeliveryDate() time.Time {
	return time.Now().AddDate(0, 0, 4+rand.Intn(6))
}

// buildOrderResponse maps an order to its outbound view.
func buildOrderResponse(order *models.Order, message string) *models.OrderResponse {
	resp := &models.OrderResponse{
		OrderID:               order.ID,
		OrderNumber:           order.OrderNumber,
		UserID:                order.UserID,
		CustomerName:          order.CustomerName,
		CustomerEmail:         order.CustomerEmail,
		CustomerMobile:        order.CustomerMobile,
		TotalAmount:           order.TotalAmount,
		OrderStatus:           order.Status,
		OrderDate:             order.OrderDate,
		EstimatedDeliveryDate: order.EstimatedDeliveryDate,
		OrderItems:            order.Items,
		Message:               message,
	}
	if order.Payment != nil {
		resp.PaymentMethod = order.Payment.Method
	}
	return resp
}
