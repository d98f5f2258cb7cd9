package services

import (
	"fmt"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/internal/telemetry"
	"toko/pkg/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	reconciler *SchemaReconciler
	validate   *validator.Validate
	log        logrus.FieldLogger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, log logrus.FieldLogger) *ProductService {
	return &ProductService{
		repo:       repo,
		reconciler: NewSchemaReconciler(models.ProtectedProductFields...),
		validate:   validator.New(),
		log:        log,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	if !isUUID(id) {
		return nil, apperrors.InvalidInput("product id %q is not a valid identifier", id)
	}
	return s.repo.GetByID(id)
}

// CreateProduct creates a product from a flat document. Keys other than the
// fixed product fields are kept as dynamic attributes.
func (s *ProductService) CreateProduct(doc map[string]any) (*models.Product, error) {
	product := &models.Product{}
	if err := product.ApplyDelta(stripReadOnly(doc), nil); err != nil {
		return nil, err
	}
	if err := s.validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"attributes": len(product.Attributes),
	}).Info("product created")
	return product, nil
}

// UpdateProduct replaces the caller-editable part of a product document.
// Supplied keys are set, dynamic attributes the caller no longer sends are
// removed, and protected fields are always kept. A delta that changes
// nothing is not written.
//
// The stored document is read before the write and the two are not
// isolated: a concurrent update between them is overwritten.
func (s *ProductService) UpdateProduct(id string, supplied map[string]any) (*models.Product, error) {
	if !isUUID(id) {
		return nil, apperrors.InvalidInput("product id %q is not a valid identifier", id)
	}
	stored, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	storedDoc := stored.Document()
	delta := s.reconciler.Reconcile(storedDoc, stripReadOnly(supplied))
	if delta.IsNoOp(storedDoc) {
		return stored, nil
	}

	preview := stored.Clone()
	if err := preview.ApplyDelta(delta.Set, delta.Unset); err != nil {
		return nil, err
	}
	if err := s.validateProduct(preview); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(id, delta.Set, delta.Unset)
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if len(delta.Unset) > 0 {
		telemetry.ObserveFieldsRemoved(len(delta.Unset))
	}
	s.log.WithFields(logrus.Fields{
		"product_id":     id,
		"set_fields":     len(delta.Set),
		"removed_fields": delta.Unset,
		"version":        updated.Version,
	}).Info("product updated")
	return updated, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if !isUUID(id) {
		return apperrors.InvalidInput("product id %q is not a valid identifier", id)
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *ProductService) validateProduct(p *models.Product) error {
	return validateStruct(s.validate, "product", p)
}

// stripReadOnly drops keys a client may not author.
func stripReadOnly(doc map[string]any) map[string]any {
	return lo.OmitByKeys(doc, models.ClientReadOnlyProductFields)
}
