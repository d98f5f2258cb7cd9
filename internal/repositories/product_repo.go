package repositories

import (
	"toko/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	// FindByIDs returns the products that exist among ids. Missing ids are
	// omitted rather than reported.
	FindByIDs(ids []string) ([]models.Product, error)
	Create(product *models.Product) error
	// Update sets and unsets document fields on a product in one write and
	// returns the stored result.
	Update(id string, set map[string]any, unset []string) (*models.Product, error)
	// SetRatingStats writes avg_rating and review_count and nothing else;
	// version and updated_at are left alone.
	SetRatingStats(id string, stats models.RatingStats) (*models.Product, error)
	Delete(id string) error
}
