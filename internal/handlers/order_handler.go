package handlers

import (
	"fmt"

	"toko/internal/middleware"
	"toko/internal/models"
	"toko/internal/services"
	"toko/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	log     logrus.FieldLogger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the order routes. Every route requires
// requireAuth; status changes also require requireAdmin.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, requireAuth, requireAdmin fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", requireAuth, h.HandleGetOrders)
	orderRoutes.Get("/:id", requireAuth, h.HandleGetOrderByID)
	orderRoutes.Post("/", requireAuth, h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", requireAuth, requireAdmin, h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists every order for admins and the caller's own orders
// for everyone else.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var (
		orders []models.Order
		err    error
	)
	if middleware.IsAdmin(c) {
		orders, err = h.service.GetAllOrders()
	} else {
		orders, err = h.service.GetOrdersByUser(middleware.UserID(c))
	}
	if err != nil {
		return respondError(c, h.log, "Could not retrieve orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order. Customers only see their own.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err == nil && !middleware.IsAdmin(c) && order.UserID != middleware.UserID(c) {
		// same answer as a missing order so ids of other users stay hidden
		err = apperrors.NotFound("order", orderID)
	}
	if err != nil {
		return respondError(c, h.log, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleCreateOrder creates an order for the authenticated user. Any user id
// or item price in the body is ignored.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	req.UserID = middleware.UserID(c)

	createdOrder, err := h.service.CreateOrder(req)
	if err != nil {
		return respondError(c, h.log, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var updateData struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}

	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	if err := h.service.UpdateOrderStatus(orderID, updateData.Status); err != nil {
		return respondError(c, h.log, "Could not update order status", err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, updateData.Status),
	})
}
