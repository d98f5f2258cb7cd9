package services

import (
	"fmt"

	"toko/internal/models"
	"toko/internal/telemetry"
	"toko/pkg/money"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// RatingReader reads the ratings of every review of a product.
type RatingReader interface {
	RatingsByProduct(productID string) ([]int, error)
}

// ProductWriter stores a product's rating aggregate.
type ProductWriter interface {
	GetByID(id string) (*models.Product, error)
	SetRatingStats(id string, stats models.RatingStats) (*models.Product, error)
}

// ComputeRatingStats returns the review count and the mean rating rounded
// half-up to two decimals.
func ComputeRatingStats(ratings []int) models.RatingStats {
	sum := lo.SumBy(ratings, func(r int) int64 { return int64(r) })
	return models.RatingStats{
		AvgRating:   money.Mean(sum, len(ratings)),
		ReviewCount: len(ratings),
	}
}

// RatingAggregator keeps a product's avg_rating and review_count equal to a
// full recompute over its reviews.
//
// Recompute reads the review set and then writes the product; nothing holds
// the two steps together. Two reviews landing at once may each read a set
// missing the other, and whichever write lands last is what stays stored
// until the next review triggers another recompute.
type RatingAggregator struct {
	reviews  RatingReader
	products ProductWriter
	log      logrus.FieldLogger
}

// NewRatingAggregator creates a new RatingAggregator.
func NewRatingAggregator(reviews RatingReader, products ProductWriter, log logrus.FieldLogger) *RatingAggregator {
	return &RatingAggregator{
		reviews:  reviews,
		products: products,
		log:      log,
	}
}

// Recompute refreshes the aggregate after a review was stored. fresh is the
// review just written; when the read-back does not include it yet, the
// aggregate is seeded from its rating alone. With no reviews and no fresh
// review the stored aggregate is left untouched.
func (a *RatingAggregator) Recompute(productID string, fresh *models.Review) (*models.Product, error) {
	ratings, err := a.reviews.RatingsByProduct(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings of product %s: %w", productID, err)
	}
	if len(ratings) == 0 {
		if fresh == nil {
			return a.products.GetByID(productID)
		}
		ratings = []int{fresh.Rating}
	}
	return a.write(productID, ComputeRatingStats(ratings), "review_created")
}

// RecomputeAfterDelete refreshes the aggregate after a review was removed.
// Unlike Recompute, an empty review set resets the aggregate to zero.
func (a *RatingAggregator) RecomputeAfterDelete(productID string) (*models.Product, error) {
	ratings, err := a.reviews.RatingsByProduct(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings of product %s: %w", productID, err)
	}
	return a.write(productID, ComputeRatingStats(ratings), "review_deleted")
}

func (a *RatingAggregator) write(productID string, stats models.RatingStats, trigger string) (*models.Product, error) {
	product, err := a.products.SetRatingStats(productID, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to store rating aggregate of product %s: %w", productID, err)
	}
	telemetry.ObserveRatingRecompute(trigger)
	a.log.WithFields(logrus.Fields{
		"product_id":   productID,
		"avg_rating":   stats.AvgRating,
		"review_count": stats.ReviewCount,
		"trigger":      trigger,
	}).Debug("rating aggregate updated")
	return product, nil
}
