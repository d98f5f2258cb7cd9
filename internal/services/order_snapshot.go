package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"toko/internal/models"
	"toko/pkg/apperrors"
	"toko/pkg/money"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// ProductFinder batch-loads products. Missing ids are omitted from the
// result.
type ProductFinder interface {
	FindByIDs(ids []string) ([]models.Product, error)
}

// OrderSnapshotBuilder turns a cart into an order whose line items carry the
// server-held name and price of each product at build time.
type OrderSnapshotBuilder struct {
	products ProductFinder
}

// NewOrderSnapshotBuilder creates a new OrderSnapshotBuilder.
func NewOrderSnapshotBuilder(products ProductFinder) *OrderSnapshotBuilder {
	return &OrderSnapshotBuilder{products: products}
}

// Build validates the request, resolves every product in one read and
// returns an unsaved Pending order. Client-supplied prices are ignored.
func (b *OrderSnapshotBuilder) Build(userID string, items []models.OrderItemRequest) (*models.Order, error) {
	if !isUUID(userID) {
		return nil, apperrors.InvalidInput("user id %q is not a valid identifier", userID)
	}
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	for i, item := range items {
		if !isUUID(item.ProductID) {
			return nil, apperrors.InvalidInput("item %d: product id %q is not a valid identifier", i, item.ProductID)
		}
	}
	quantities := make([]int, len(items))
	for i, item := range items {
		q, err := parseQuantity(item.Quantity)
		if err != nil {
			return nil, apperrors.InvalidInput("item %d: %v", i, err)
		}
		quantities[i] = q
	}

	ids := lo.Uniq(lo.Map(items, func(item models.OrderItemRequest, _ int) string { return item.ProductID }))
	found, err := b.products.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load order products: %w", err)
	}
	byID := lo.KeyBy(found, func(p models.Product) string { return p.ID })
	if missing := lo.Filter(ids, func(id string, _ int) bool { _, ok := byID[id]; return !ok }); len(missing) > 0 {
		return nil, apperrors.NotFoundMany("products", missing)
	}

	lines := make([]models.OrderItem, len(items))
	amounts := make([]decimal.Decimal, len(items))
	for i, item := range items {
		product := byID[item.ProductID]
		lines[i] = models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantities[i],
		}
		amounts[i] = money.LineTotal(product.Price, quantities[i])
	}

	return &models.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		Items:       lines,
		TotalAmount: money.Total(amounts...),
		Status:      models.OrderStatusPending,
	}, nil
}

// parseQuantity accepts whole JSON numbers and numeric strings of at least 1.
func parseQuantity(v any) (int, error) {
	var q int
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("quantity is required")
	case bool:
		return 0, fmt.Errorf("quantity must be a number, got %v", t)
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("quantity must be a whole number, got %v", t)
		}
		q = int(t)
	case float32:
		return parseQuantity(float64(t))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, fmt.Errorf("quantity %q is not a whole number", t)
		}
		q = n
	default:
		n, err := cast.ToIntE(t)
		if err != nil {
			return 0, fmt.Errorf("quantity %v is not a whole number", t)
		}
		q = n
	}
	if q < 1 {
		return 0, fmt.Errorf("quantity must be at least 1, got %d", q)
	}
	return q, nil
}

func isUUID(s string) bool {
	return uuid.Validate(s) == nil
}
