package services

import (
	"fmt"
	"strings"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// CreateReviewRequest is the body of a review submission.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewService handles review submission and keeps product rating
// aggregates current.
type ReviewService struct {
	reviews    repositories.ReviewRepository
	products   repositories.ProductRepository
	aggregator *RatingAggregator
	publisher  EventPublisher
	validate   *validator.Validate
	log        logrus.FieldLogger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews repositories.ReviewRepository, products repositories.ProductRepository, publisher EventPublisher, log logrus.FieldLogger) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		products:   products,
		aggregator: NewRatingAggregator(reviews, products, log),
		publisher:  publisher,
		validate:   validator.New(),
		log:        log,
	}
}

// ListReviews returns the reviews of a product.
func (s *ReviewService) ListReviews(productID string) ([]models.Review, error) {
	if !isUUID(productID) {
		return nil, apperrors.InvalidInput("product id %q is not a valid identifier", productID)
	}
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(productID)
}

// CreateReview stores a review and then recomputes the product's rating
// aggregate. The review is stored even if the recompute fails; the error is
// still returned to the caller.
func (s *ReviewService) CreateReview(productID, userID string, req CreateReviewRequest) (*models.Review, *models.Product, error) {
	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := validateStruct(s.validate, "review", review); err != nil {
		return nil, nil, err
	}
	if _, err := s.products.GetByID(productID); err != nil {
		return nil, nil, err
	}

	if err := s.reviews.Create(review); err != nil {
		return nil, nil, fmt.Errorf("failed to create review: %w", err)
	}
	publishEvent(s.publisher, s.log, RoutingReviewCreated, map[string]any{
		"reviewID":  review.ID,
		"productID": productID,
		"userID":    userID,
		"rating":    review.Rating,
	})

	product, err := s.aggregator.Recompute(productID, review)
	if err != nil {
		s.log.WithError(err).WithField("product_id", productID).Error("rating aggregate not updated")
		return review, nil, err
	}
	s.publishRating(product)
	return review, product, nil
}

// DeleteReview removes a review and recomputes the product's aggregate.
// Only the author or an admin may delete.
func (s *ReviewService) DeleteReview(reviewID, actorID string, isAdmin bool) error {
	if !isUUID(reviewID) {
		return apperrors.InvalidInput("review id %q is not a valid identifier", reviewID)
	}
	review, err := s.reviews.GetByID(reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != actorID {
		return apperrors.Forbidden("only the author or an admin may delete a review")
	}
	if err := s.reviews.Delete(reviewID); err != nil {
		return err
	}
	publishEvent(s.publisher, s.log, RoutingReviewDeleted, map[string]any{
		"reviewID":  reviewID,
		"productID": review.ProductID,
	})

	product, err := s.aggregator.RecomputeAfterDelete(review.ProductID)
	if err != nil {
		return err
	}
	s.publishRating(product)
	return nil
}

func (s *ReviewService) publishRating(p *models.Product) {
	publishEvent(s.publisher, s.log, RoutingProductRatingSync, map[string]any{
		"productID":   p.ID,
		"avgRating":   p.AvgRating,
		"reviewCount": p.ReviewCount,
	})
}
