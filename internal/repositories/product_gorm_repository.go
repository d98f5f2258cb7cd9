package repositories

import (
	"errors"
	"fmt"
	"time"

	"toko/internal/models"
	"toko/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("created_at").Find(&products).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to get all products: %w", err))
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get product by ID %s: %w", id, err))
	}
	return &product, nil
}

// FindByIDs loads every existing product among ids in a single query.
func (r *GORMProductRepository) FindByIDs(ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to find products by IDs: %w", err))
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Attributes == nil {
		product.Attributes = datatypes.JSONMap{}
	}
	if err := r.db.Create(product).Error; err != nil {
		return apperrors.Internal(fmt.Errorf("failed to create product: %w", err))
	}
	return nil
}

// Update reads the current row, applies the delta in memory and saves the
// whole row back. The read and the write are not isolated from concurrent
// updates; the last save wins.
func (r *GORMProductRepository) Update(id string, set map[string]any, unset []string) (*models.Product, error) {
	product, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := product.ApplyDelta(set, unset); err != nil {
		return nil, err
	}
	product.Version++
	product.UpdatedAt = time.Now()

	res := r.db.Model(&models.Product{}).Where("id = ?", id).Select("*").Omit("created_at", "deleted_at").Updates(product)
	if res.Error != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update product: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		// deleted between the read and the write
		return nil, apperrors.NotFound("product", id)
	}
	return product, nil
}

// SetRatingStats updates only the two aggregate columns. UpdateColumns skips
// hooks and the updated_at bump.
func (r *GORMProductRepository) SetRatingStats(id string, stats models.RatingStats) (*models.Product, error) {
	res := r.db.Model(&models.Product{}).Where("id = ?", id).UpdateColumns(map[string]any{
		"avg_rating":   stats.AvgRating,
		"review_count": stats.ReviewCount,
	})
	if res.Error != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to store rating stats of product %s: %w", id, res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("product", id)
	}
	return r.GetByID(id)
}

// Delete soft-deletes a product by its ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Internal(fmt.Errorf("failed to delete product: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}
