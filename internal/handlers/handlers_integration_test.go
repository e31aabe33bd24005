package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"kasir/internal/handlers"
	"kasir/internal/middleware"
	"kasir/internal/models"
	"kasir/internal/repositories"
	"kasir/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp sets up a Fiber app for testing with an isolated in-memory SQLite
// database and the full handler/service/repository stack. Notifications run
// in log-only mode.
func setupApp() (*fiber.App, error) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productService)
	paymentService := services.NewPaymentService(time.Millisecond)
	notificationService := services.NewNotificationService(nil, "notification_queue")
	orderService := services.NewOrderService(orderRepo, cartService, paymentService, notificationService, time.Second)
	authService := services.NewAuthService(userRepo, jwtSecret)

	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterRoutes(protectedRoutes)
	cartHandler.RegisterRoutes(protectedRoutes)
	orderHandler.RegisterRoutes(protectedRoutes)

	return app, nil
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin creates a user and returns a bearer token for it.
func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	user := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", user)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "testuser",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

// seedCatalog creates the standard test products and returns their IDs.
func seedCatalog(t *testing.T, app *fiber.App, token string) (laptopID, mouseID, soldOutID uint) {
	t.Helper()
	create := func(p map[string]interface{}) uint {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/products", token, p)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var created models.Product
		decodeBody(t, resp, &created)
		assert.NotZero(t, created.ID)
		return created.ID
	}
	laptopID = create(map[string]interface{}{"name": "Laptop", "price": 10.0, "stock": 10, "available": true})
	mouseID = create(map[string]interface{}{"name": "Mouse", "price": 5.0, "stock": 50, "available": true})
	soldOutID = create(map[string]interface{}{"name": "Monitor", "price": 200.0, "stock": 0, "available": false})
	return laptopID, mouseID, soldOutID
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	token := registerAndLogin(t, app)
	assert.NotEmpty(t, token)

	// Duplicate registration conflicts.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Protected routes reject requests without a token.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCartLifecycle(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app)
	laptopID, mouseID, soldOutID := seedCatalog(t, app, token)

	// Reading a cart that was never created fails.
	resp := doJSON(t, app, http.MethodGet, "/api/v1/cart/1", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// First add creates the cart.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{
		"userId": 1, "productId": laptopID, "quantity": 2,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cart models.CartResponse
	decodeBody(t, resp, &cart)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 20.0, cart.TotalAmount)

	// Adding the same product again increments its quantity.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{
		"userId": 1, "productId": laptopID, "quantity": 1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 30.0, cart.TotalAmount)

	// A second product gets its own line.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{
		"userId": 1, "productId": mouseID, "quantity": 1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 35.0, cart.TotalAmount)

	// Unavailable products are rejected.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{
		"userId": 1, "productId": soldOutID, "quantity": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Quantity updates recompute the subtotal; zero is rejected.
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/cart/1/item/%d", laptopID), token, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Equal(t, 15.0, cart.TotalAmount)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/cart/1/item/%d", laptopID), token, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Removing a product not in the cart is a 404.
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/cart/1/item/%d", soldOutID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/cart/1/item/%d", mouseID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Len(t, cart.Items, 1)

	// Clearing twice succeeds both times.
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart/1/clear", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart/1/clear", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart/1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalAmount)
}

func TestPlaceOrderCashFlow(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app)
	laptopID, mouseID, _ := seedCatalog(t, app, token)

	for _, add := range []map[string]interface{}{
		{"userId": 1, "productId": laptopID, "quantity": 2},
		{"userId": 1, "productId": mouseID, "quantity": 1},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/add", token, add)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/place", token, map[string]interface{}{
		"userId":         1,
		"customerName":   "Budi Santoso",
		"customerEmail":  "budi@example.com",
		"customerMobile": "08123456789",
		"paymentMethod":  "CASH",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.OrderResponse
	decodeBody(t, resp, &order)
	assert.NotZero(t, order.OrderID)
	assert.Equal(t, 25.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusConfirmed, order.OrderStatus)
	assert.Equal(t, models.PaymentMethodCash, order.PaymentMethod)
	assert.Len(t, order.OrderItems, 2)

	// The cart has been cleared by the placement.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart/1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cart models.CartResponse
	decodeBody(t, resp, &cart)
	assert.Empty(t, cart.Items)

	// The stored order carries a pending cash payment.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/orders/user/%d", 1), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decodeBody(t, resp, &orders)
	assert.Len(t, orders, 1)
	assert.NotNil(t, orders[0].Payment)
	assert.Equal(t, models.PaymentStatusPending, orders[0].Payment.Status)
	assert.Equal(t, 25.0, orders[0].Payment.Amount)

	// Tracking by order number returns the same order.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/track/"+order.OrderNumber, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tracked models.OrderResponse
	decodeBody(t, resp, &tracked)
	assert.Equal(t, order.OrderID, tracked.OrderID)

	// Placing again with the now-empty cart fails without a new order.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/place", token, map[string]interface{}{
		"userId":         1,
		"customerName":   "Budi Santoso",
		"customerEmail":  "budi@example.com",
		"customerMobile": "08123456789",
		"paymentMethod":  "CASH",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPlaceOrderCardSuccess(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app)
	laptopID, _, _ := seedCatalog(t, app, token)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{
		"userId": 2, "productId": laptopID, "quantity": 3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/place", token, map[string]interface{}{
		"userId":         2,
		"customerName":   "Siti Rahma",
		"customerEmail":  "siti@example.com",
		"customerMobile": "08198765432",
		"paymentMethod":  "CARD",
		"cardNumber":     "4111111111111111",
		"cardHolderName": "Siti Rahma",
		"expiryDate":     "12/28",
		"cvv":            "123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.OrderResponse
	decodeBody(t, resp, &order)
	assert.Equal(t, 30.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusConfirmed, order.OrderStatus)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/orders/user/%d", 2), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decodeBody(t, resp, &orders)
	assert.Len(t, orders, 1)
	assert.NotNil(t, orders[0].Payment)
	assert.Equal(t, models.PaymentStatusCompleted, orders[0].Payment.Status)
	assert.Equal(t, "1111", orders[0].Payment.CardLastFour)
}

func TestPlaceOrderCardDeclined(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app)
	laptopID, _, _ := seedCatalog(t, app, token)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/add", token, map[string]interface{}{
		"userId": 3, "productId": laptopID, "quantity": 1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/place", token, map[string]interface{}{
		"userId":         3,
		"customerName":   "Agus Wijaya",
		"customerEmail":  "agus@example.com",
		"customerMobile": "08111222333",
		"paymentMethod":  "CARD",
		"cardNumber":     "411111111111", // 12 digits
		"cvv":            "123",
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	resp.Body.Close()

	// The cart was not cleared.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart/3", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cart models.CartResponse
	decodeBody(t, resp, &cart)
	assert.Len(t, cart.Items, 1)

	// The orphaned order stays behind as PENDING with no payment.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/orders/user/%d", 3), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decodeBody(t, resp, &orders)
	assert.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusPending, orders[0].Status)
	assert.Nil(t, orders[0].Payment)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orders[0].ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orphan models.OrderResponse
	decodeBody(t, resp, &orphan)
	assert.Equal(t, models.OrderStatusPending, orphan.OrderStatus)
	assert.Empty(t, orphan.PaymentMethod)
}

func TestPlaceOrderWithoutCart(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/place", token, map[string]interface{}{
		"userId":         9,
		"customerName":   "Nobody",
		"customerEmail":  "nobody@example.com",
		"customerMobile": "0800000000",
		"paymentMethod":  "CASH",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// No order record was created for the failed placement.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/user/9", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decodeBody(t, resp, &orders)
	assert.Empty(t, orders)
}

func TestPlaceOrderValidation(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerAndLogin(t, app)

	// Card payments must carry card fields.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders/place", token, map[string]interface{}{
		"userId":         4,
		"customerName":   "Dewi Lestari",
		"customerEmail":  "dewi@example.com",
		"customerMobile": "08123123123",
		"paymentMethod":  "CARD",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown payment methods are rejected at validation.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/place", token, map[string]interface{}{
		"userId":         4,
		"customerName":   "Dewi Lestari",
		"customerEmail":  "dewi@example.com",
		"customerMobile": "08123123123",
		"paymentMethod":  "CHEQUE",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
