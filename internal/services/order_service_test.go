package services_test

import (
	"encoding/json"
	"errors"
	"testing"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/internal/services"
	"toko/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

func TestOrderService_CreateOrder(t *testing.T) {
	c := newCatalog(t)
	orders := repositories.NewMockOrderRepository()
	publisher := new(MockPublisher)
	service := services.NewOrderService(orders, c.repo, publisher, testLog)
	userID := uuid.NewString()

	publisher.On("Publish", services.EventsExchange, services.RoutingOrderCreated, mock.MatchedBy(func(body []byte) bool {
		var event map[string]any
		return json.Unmarshal(body, &event) == nil && event["userID"] == userID && event["total"] == 189.97
	})).Return(nil).Once()

	order, err := service.CreateOrder(models.CreateOrderRequest{
		UserID: userID,
		Items: []models.OrderItemRequest{
			{ProductID: c.chair.ID, Quantity: 2.0},
			{ProductID: c.monitor.ID, Quantity: 1.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 189.97, order.TotalAmount)

	stored, err := service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
	assert.Equal(t, models.OrderStatusPending, stored.Status)

	mine, err := service.GetOrdersByUser(userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	publisher.AssertExpectations(t)
}

func TestOrderService_CreateOrderPersistFailureReturnsNothing(t *testing.T) {
	c := newCatalog(t)
	orders := repositories.NewMockOrderRepository()
	orders.FailCreate = apperrors.Internal(errors.New("disk full"))
	publisher := new(MockPublisher)
	service := services.NewOrderService(orders, c.repo, publisher, testLog)

	order, err := service.CreateOrder(models.CreateOrderRequest{
		UserID: uuid.NewString(),
		Items:  []models.OrderItemRequest{{ProductID: c.chair.ID, Quantity: 1.0}},
	})
	assert.Error(t, err)
	assert.Nil(t, order)

	all, err := service.GetAllOrders()
	require.NoError(t, err)
	assert.Empty(t, all)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrderPublishFailureKeepsOrder(t *testing.T) {
	c := newCatalog(t)
	orders := repositories.NewMockOrderRepository()
	publisher := new(MockPublisher)
	service := services.NewOrderService(orders, c.repo, publisher, testLog)

	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	order, err := service.CreateOrder(models.CreateOrderRequest{
		UserID: uuid.NewString(),
		Items:  []models.OrderItemRequest{{ProductID: c.chair.ID, Quantity: 1.0}},
	})
	require.NoError(t, err)
	_, err = orders.GetByID(order.ID)
	assert.NoError(t, err)
}

func TestOrderService_CreateOrderWithoutPublisher(t *testing.T) {
	c := newCatalog(t)
	service := services.NewOrderService(repositories.NewMockOrderRepository(), c.repo, nil, testLog)

	_, err := service.CreateOrder(models.CreateOrderRequest{
		UserID: uuid.NewString(),
		Items:  []models.OrderItemRequest{{ProductID: c.chair.ID, Quantity: 3.0}},
	})
	assert.NoError(t, err)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	c := newCatalog(t)
	orders := repositories.NewMockOrderRepository()
	service := services.NewOrderService(orders, c.repo, nil, testLog)

	order, err := service.CreateOrder(models.CreateOrderRequest{
		UserID: uuid.NewString(),
		Items:  []models.OrderItemRequest{{ProductID: c.chair.ID, Quantity: 1.0}},
	})
	require.NoError(t, err)

	require.NoError(t, service.UpdateOrderStatus(order.ID, models.OrderStatusShipped))
	stored, err := service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, stored.Status)
	assert.Equal(t, order.TotalAmount, stored.TotalAmount)

	err = service.UpdateOrderStatus(order.ID, "teleported")
	assert.True(t, apperrors.IsInvalidInput(err))

	err = service.UpdateOrderStatus(uuid.NewString(), models.OrderStatusShipped)
	assert.True(t, apperrors.IsNotFound(err))
}
