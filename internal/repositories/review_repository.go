package repositories

import "toko/internal/models"

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id string) (*models.Review, error)
	ListByProduct(productID string) ([]models.Review, error)
	// RatingsByProduct returns the rating of every review referencing the
	// product.
	RatingsByProduct(productID string) ([]int, error)
	Delete(id string) error
}
