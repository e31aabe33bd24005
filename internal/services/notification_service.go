package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"kasir/internal/models"
)

// MessagePublisher is the outbound messaging boundary. The RabbitMQ client
// in pkg/rabbitmq satisfies it.
type MessagePublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// EmailMessage is the payload handed to the notification channel.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotificationService delivers order confirmations to customers. Delivery is
// best effort: every failure is logged and swallowed, because an order must
// never fail on account of its confirmation email.
type NotificationService struct {
	publisher MessagePublisher
	queue     string
}

// NewNotificationService creates a new NotificationService publishing to the
// given queue. A nil publisher degrades to log-only delivery.
func NewNotificationService(publisher MessagePublisher, queue string) *NotificationService {
	return &NotificationService{
		publisher: publisher,
		queue:     queue,
	}
}

// SendOrderConfirmation formats and queues the confirmation email for an
// order. It never reports failure to the caller.
func (s *NotificationService) SendOrderConfirmation(order *models.Order) {
	msg := EmailMessage{
		To:      order.CustomerEmail,
		Subject: "Order Confirmation - " + order.OrderNumber,
		Body:    buildConfirmationBody(order),
	}

	if s.publisher == nil {
		log.Printf("Notification publisher not configured; confirmation for order %s logged only", order.OrderNumber)
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Warning: failed to marshal confirmation for order %s: %v", order.OrderNumber, err)
		return
	}
	if err := s.publisher.Publish("", s.queue, body); err != nil {
		log.Printf("Warning: failed to queue confirmation for order %s: %v", order.OrderNumber, err)
		return
	}
	log.Printf("Order confirmation queued for %s (order %s)", order.CustomerEmail, order.OrderNumber)
}

// buildConfirmationBody renders the plain-text order summary.
func buildConfirmationBody(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dear %s,\n\n", order.CustomerName)
	b.WriteString("Thank you for your order!\n\n")
	b.WriteString("Order Details:\n")
	fmt.Fprintf(&b, "Order Number: %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Order Date: %s\n", order.OrderDate.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Estimated Delivery: %s\n\n", order.EstimatedDeliveryDate.Format("2006-01-02"))

	b.WriteString("Items Ordered:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d - %.2f\n", item.ProductName, item.Quantity, item.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal Amount: %.2f\n\n", order.TotalAmount)

	if order.Payment != nil {
		fmt.Fprintf(&b, "Payment Method: %s\n", order.Payment.Method)
		fmt.Fprintf(&b, "Payment Status: %s\n\n", order.Payment.Status)
	}

	b.WriteString("We will notify you once your order is shipped.\n\n")
	b.WriteString("Thank you for shopping with us!\n")

	return b.String()
}
