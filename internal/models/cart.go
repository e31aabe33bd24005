package models

import "time"

// Cart holds a user's shopping cart. Each user has at most one cart, created
// on the first add and keyed by user ID.
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"userId" gorm:"uniqueIndex"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

// CartItem is one product line in a cart. Name and price are captured when
// the product is first added and are not refreshed on later adds.
type CartItem struct {
	ID           uint    `json:"-" gorm:"primaryKey"`
	CartID       uint    `json:"-" gorm:"index:idx_cart_product,unique"`
	ProductID    uint    `json:"productId" gorm:"index:idx_cart_product,unique"`
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
}

// AddToCartRequest is the request body for adding a product to a cart.
type AddToCartRequest struct {
	UserID    uint `json:"userId" validate:"required"`
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// UpdateQuantityRequest is the request body for changing an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the cart view returned to clients and consumed by the
// order placement flow. Totals are derived from the items.
type CartResponse struct {
	CartID      uint       `json:"cartId"`
	UserID      uint       `json:"userId"`
	Items       []CartItem `json:"items"`
	TotalItems  int        `json:"totalItems"`
	TotalAmount float64    `json:"totalAmount"`
}
