package services

import (
	"context"
	"fmt"
	"time"

	"kasir/internal/models"
)

// PaymentService simulates a payment gateway. It is the only place that
// decides authorization outcomes, so a real gateway client can replace it
// without touching the order placement flow.
type PaymentService struct {
	processingDelay time.Duration
}

// NewPaymentService creates a new PaymentService. processingDelay simulates
// the round trip to a card gateway.
func NewPaymentService(processingDelay time.Duration) *PaymentService {
	return &PaymentService{
		processingDelay: processingDelay,
	}
}

// Authorize produces the payment outcome for an order.
//
// Cash on delivery always succeeds with a PENDING payment, to be collected on
// delivery. Card payments validate the card fields, simulate gateway latency
// and then authorize; a validation failure or a context timeout is declined.
func (s *PaymentService) Authorize(ctx context.Context, order *models.Order, req *models.PlaceOrderRequest) (*models.Payment, error) {
	payment := &models.Payment{
		OrderID:     order.ID,
		Method:      req.PaymentMethod,
		Amount:      order.TotalAmount,
		PaymentDate: time.Now(),
	}

	switch req.PaymentMethod {
	case models.PaymentMethodCash:
		payment.Status = models.PaymentStatusPending
		return payment, nil

	case models.PaymentMethodCard:
		if len(req.CardNumber) < 16 || len(req.CVV) != 3 {
			payment.Status = models.PaymentStatusFailed
			return nil, fmt.Errorf("%w: please check your card details", ErrPaymentDeclined)
		}

		select {
		case <-time.After(s.processingDelay):
		case <-ctx.Done():
			payment.Status = models.PaymentStatusFailed
			return nil, fmt.Errorf("%w: authorization timed out: %v", ErrPaymentDeclined, ctx.Err())
		}

		// Stand-in for a real gateway call; always authorizes once the
		// card fields validate.
		payment.Status = models.PaymentStatusCompleted
		payment.CardLastFour = req.CardNumber[len(req.CardNumber)-4:]
		return payment, nil

	default:
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrPaymentDeclined, req.PaymentMethod)
	}
}
