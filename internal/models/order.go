package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
)

// PaymentStatus is the authorization outcome for a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// OrderItem is a line-item snapshot copied from the cart at order time.
// It is never re-read from the cart after the order is created.
type OrderItem struct {
	ID           uint    `json:"-" gorm:"primaryKey"`
	OrderID      uint    `json:"-" gorm:"index"`
	ProductID    uint    `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
}

// Payment is the single payment record owned by an order. Amount is copied
// from the order total at authorization time.
type Payment struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	OrderID      uint          `json:"-" gorm:"uniqueIndex"`
	Method       PaymentMethod `json:"method" gorm:"type:varchar(16)"`
	Status       PaymentStatus `json:"status" gorm:"type:varchar(16)"`
	Amount       float64       `json:"amount"`
	CardLastFour string        `json:"cardLastFour,omitempty" gorm:"type:varchar(4)"`
	PaymentDate  time.Time     `json:"paymentDate"`
}

// Order is the durable record of one placement attempt. Items and TotalAmount
// are immutable after creation; only Status and the Payment change, and only
// while the placement itself is running.
type Order struct {
	ID                    uint        `json:"id" gorm:"primaryKey"`
	OrderNumber           string      `json:"orderNumber" gorm:"uniqueIndex;type:varchar(32)"`
	UserID                uint        `json:"userId" gorm:"index"`
	CustomerName          string      `json:"customerName"`
	CustomerEmail         string      `json:"customerEmail"`
	CustomerMobile        string      `json:"customerMobile"`
	Items                 []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount           float64     `json:"totalAmount"`
	Status                OrderStatus `json:"status" gorm:"type:varchar(16)"`
	OrderDate             time.Time   `json:"orderDate"`
	EstimatedDeliveryDate time.Time   `json:"estimatedDeliveryDate"`
	Payment               *Payment    `json:"payment,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// PlaceOrderRequest is the inbound request for placing an order.
// Card fields are only required for card payments.
type PlaceOrderRequest struct {
	UserID         uint          `json:"userId" validate:"required"`
	CustomerName   string        `json:"customerName" validate:"required,max=100"`
	CustomerEmail  string        `json:"customerEmail" validate:"required,email"`
	CustomerMobile string        `json:"customerMobile" validate:"required,max=20"`
	PaymentMethod  PaymentMethod `json:"paymentMethod" validate:"required,oneof=CASH CARD"`
	CardNumber     string        `json:"cardNumber,omitempty" validate:"required_if=PaymentMethod CARD"`
	CardHolderName string        `json:"cardHolderName,omitempty"`
	ExpiryDate     string        `json:"expiryDate,omitempty"`
	CVV            string        `json:"cvv,omitempty" validate:"required_if=PaymentMethod CARD"`
}

// OrderResponse is the order view returned after placement or lookup.
type OrderResponse struct {
	OrderID               uint          `json:"orderId"`
	OrderNumber           string        `json:"orderNumber"`
	UserID                uint          `json:"userId"`
	CustomerName          string        `json:"customerName"`
	CustomerEmail         string        `json:"customerEmail"`
	CustomerMobile        string        `json:"customerMobile"`
	TotalAmount           float64       `json:"totalAmount"`
	OrderStatus           OrderStatus   `json:"orderStatus"`
	OrderDate             time.Time     `json:"orderDate"`
	EstimatedDeliveryDate time.Time     `json:"estimatedDeliveryDate"`
	OrderItems            []OrderItem   `json:"orderItems"`
	PaymentMethod         PaymentMethod `json:"paymentMethod,omitempty"`
	Message               string        `json:"message,omitempty"`
}
