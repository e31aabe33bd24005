package services

import (
	"errors"
	"fmt"

	"kasir/internal/models"
	"kasir/internal/repositories"
)

// CatalogLookup is the product lookup boundary the cart depends on.
// ProductService satisfies it.
type CatalogLookup interface {
	GetProductByID(id uint) (*models.Product, error)
}

// CartService handles business logic related to shopping carts.
type CartService struct {
	cartRepo repositories.CartRepository
	catalog  CatalogLookup
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, catalog CatalogLookup) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		catalog:  catalog,
	}
}

// AddItem adds a product to the user's cart, creating the cart on first use.
// If the product is already in the cart its quantity is increased; name and
// price stay pinned to the values captured on first add.
func (s *CartService) AddItem(req *models.AddToCartRequest) (*models.CartResponse, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, req.Quantity)
	}

	product, err := s.catalog.GetProductByID(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("looking up product %d: %w", req.ProductID, err)
	}
	if !product.Available {
		return nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, req.ProductID)
	}

	cart, err := s.cartRepo.GetByUserID(req.UserID)
	if errors.Is(err, repositories.ErrCartNotFound) {
		cart = &models.Cart{UserID: req.UserID}
		if err := s.cartRepo.Create(cart); err != nil {
			return nil, fmt.Errorf("creating cart for user %d: %w", req.UserID, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("fetching cart for user %d: %w", req.UserID, err)
	}

	var existing *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].ProductID == req.ProductID {
			existing = &cart.Items[i]
			break
		}
	}

	if existing != nil {
		existing.Quantity += req.Quantity
		existing.Subtotal = existing.ProductPrice * float64(existing.Quantity)
		if err := s.cartRepo.SaveItem(existing); err != nil {
			return nil, fmt.Errorf("updating cart item for product %d: %w", req.ProductID, err)
		}
	} else {
		item := models.CartItem{
			CartID:       cart.ID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     req.Quantity,
			Subtotal:     product.Price * float64(req.Quantity),
		}
		if err := s.cartRepo.SaveItem(&item); err != nil {
			return nil, fmt.Errorf("adding cart item for product %d: %w", req.ProductID, err)
		}
		cart.Items = append(cart.Items, item)
	}

	return buildCartResponse(cart), nil
}

// GetCart returns the user's cart with derived totals. A cart record only
// exists once AddItem has been called for the user.
func (s *CartService) GetCart(userID uint) (*models.CartResponse, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	return buildCartResponse(cart), nil
}

// UpdateQuantity sets the quantity of an item already in the cart and
// recomputes its subtotal.
func (s *CartService) UpdateQuantity(userID, productID uint, quantity int) (*models.CartResponse, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	var item *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			item = &cart.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("%w: product %d for user %d", ErrItemNotFound, productID, userID)
	}

	item.Quantity = quantity
	item.Subtotal = item.ProductPrice * float64(quantity)
	if err := s.cartRepo.SaveItem(item); err != nil {
		return nil, fmt.Errorf("updating quantity for product %d: %w", productID, err)
	}

	return buildCartResponse(cart), nil
}

// RemoveItem removes a single product from the cart.
func (s *CartService) RemoveItem(userID, productID uint) (*models.CartResponse, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: product %d for user %d", ErrItemNotFound, productID, userID)
	}

	if err := s.cartRepo.DeleteItem(cart.Items[idx].ID); err != nil {
		return nil, fmt.Errorf("removing cart item for product %d: %w", productID, err)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	return buildCartResponse(cart), nil
}

// ClearCart empties the user's cart. Clearing an already-empty cart is a
// no-op and succeeds.
func (s *CartService) ClearCart(userID uint) error {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}
	if err := s.cartRepo.ClearItems(cart.ID); err != nil {
		return fmt.Errorf("clearing cart for user %d: %w", userID, err)
	}
	return nil
}

// buildCartResponse derives the totals from the cart's items.
func buildCartResponse(cart *models.Cart) *models.CartResponse {
	resp := &models.CartResponse{
		CartID: cart.ID,
		UserID: cart.UserID,
		Items:  cart.Items,
	}
	if resp.Items == nil {
		resp.Items = []models.CartItem{}
	}
	for _, item := range cart.Items {
		resp.TotalItems += item.Quantity
		resp.TotalAmount += item.Subtotal
	}
	return resp
}
