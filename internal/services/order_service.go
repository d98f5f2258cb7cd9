package services

import (
	"encoding/json"
	"fmt"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/internal/telemetry"
	"toko/pkg/apperrors"

	"github.com/sirupsen/logrus"
)

// Routing keys of the events the services publish.
const (
	EventsExchange           = "toko.events"
	RoutingOrderCreated      = "order.created"
	RoutingReviewCreated     = "review.created"
	RoutingReviewDeleted     = "review.deleted"
	RoutingProductRatingSync = "product.rating_updated"
)

// EventPublisher publishes a message body under a routing key.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	builder   *OrderSnapshotBuilder
	publisher EventPublisher
	log       logrus.FieldLogger
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are sent.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo ProductFinder, publisher EventPublisher, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		builder:   NewOrderSnapshotBuilder(productRepo),
		publisher: publisher,
		log:       log,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersByUser retrieves the orders placed by one user.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.ListByUser(userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder snapshots the cart and persists the order. If the insert
// fails nothing is returned.
func (s *OrderService) CreateOrder(req models.CreateOrderRequest) (*models.Order, error) {
	order, err := s.builder.Build(req.UserID, req.Items)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}
	telemetry.ObserveOrderCreated(order.TotalAmount)
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"items":    len(order.Items),
		"total":    order.TotalAmount,
	}).Info("order created")

	s.publish(RoutingOrderCreated, map[string]any{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalAmount,
		"items":   order.Items,
	})
	return order, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	if !models.ValidOrderStatuses[status] {
		return apperrors.InvalidInput("invalid order status: %s", status)
	}
	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"order_id": id, "status": status}).Info("order status updated")
	return nil
}

// publish sends an event on a best-effort basis. A failed publish is logged
// and never undoes the write that preceded it.
func (s *OrderService) publish(routingKey string, payload map[string]any) {
	publishEvent(s.publisher, s.log, routingKey, payload)
}

func publishEvent(p EventPublisher, log logrus.FieldLogger, routingKey string, payload map[string]any) {
	if p == nil {
		log.WithField("routing_key", routingKey).Debug("no event publisher configured, skipping")
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("routing_key", routingKey).Error("failed to marshal event")
		return
	}
	if err := p.Publish(EventsExchange, routingKey, body); err != nil {
		log.WithError(err).WithField("routing_key", routingKey).Warn("failed to publish event")
	}
}
