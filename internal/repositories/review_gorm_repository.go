package repositories

import (
	"errors"
	"fmt"

	"toko/internal/models"
	"toko/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Create inserts a review and assigns its ID.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Create(review).Error; err != nil {
		return apperrors.Internal(fmt.Errorf("failed to create review: %w", err))
	}
	return nil
}

// GetByID retrieves a review by its ID.
func (r *GORMReviewRepository) GetByID(id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get review by ID %s: %w", id, err))
	}
	return &review, nil
}

// ListByProduct returns a product's reviews, newest first.
func (r *GORMReviewRepository) ListByProduct(productID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list reviews for product %s: %w", productID, err))
	}
	return reviews, nil
}

// RatingsByProduct plucks the rating column of a product's reviews.
func (r *GORMReviewRepository) RatingsByProduct(productID string) ([]int, error) {
	var ratings []int
	if err := r.db.Model(&models.Review{}).Where("product_id = ?", productID).Pluck("rating", &ratings).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to read ratings for product %s: %w", productID, err))
	}
	return ratings, nil
}

// Delete soft-deletes a review.
func (r *GORMReviewRepository) Delete(id string) error {
	res := r.db.Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete review: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}
