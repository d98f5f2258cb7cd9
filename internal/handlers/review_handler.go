package handlers

import (
	"toko/internal/middleware"
	"toko/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service *services.ReviewService
	log     logrus.FieldLogger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{service: service, log: log}
}

// RegisterRoutes registers the review routes. Listing is public; writes
// require requireAuth.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/products/:id/reviews", h.HandleListReviews)
	router.Post("/products/:id/reviews", requireAuth, h.HandleCreateReview)
	router.Delete("/reviews/:id", requireAuth, h.HandleDeleteReview)
}

// HandleListReviews lists a product's reviews.
func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

// HandleCreateReview stores a review by the authenticated user and returns
// it along with the product's refreshed rating aggregate.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var req services.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	review, product, err := h.service.CreateReview(c.Params("id"), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, h.log, "Could not create review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"review":       review,
		"avg_rating":   product.AvgRating,
		"review_count": product.ReviewCount,
	})
}

// HandleDeleteReview deletes a review owned by the caller, or any review
// when the caller is an admin.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(c.Params("id"), middleware.UserID(c), middleware.IsAdmin(c)); err != nil {
		return respondError(c, h.log, "Could not delete review", err)
	}
	return c.JSON(fiber.Map{"message": "Review deleted successfully"})
}
