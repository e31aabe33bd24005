package repositories

import "errors"

// Sentinel errors returned by repository implementations so callers can
// branch with errors.Is instead of matching message strings.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
)
