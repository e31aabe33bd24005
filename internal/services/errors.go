package services

import "errors"

// Sentinel errors for business-rule failures. Handlers branch on these with
// errors.Is to pick HTTP status codes; repository-level not-found errors
// live in the repositories package.
var (
	ErrProductUnavailable = errors.New("product is out of stock")
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrItemNotFound       = errors.New("item not found in cart")
	ErrEmptyCart          = errors.New("cart is empty, cannot place order")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailRegistered    = errors.New("email already registered")
)
