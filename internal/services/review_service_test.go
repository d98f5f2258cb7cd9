package services_test

import (
	"strings"
	"testing"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/internal/services"
	"toko/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReviewFixture(t *testing.T) (*services.ReviewService, *repositories.MockProductRepository, *models.Product) {
	t.Helper()
	products := repositories.NewMockProductRepository()
	product := seedProduct(t, products)
	service := services.NewReviewService(repositories.NewMockReviewRepository(), products, nil, testLog)
	return service, products, product
}

func TestReviewService_CreateReviewUpdatesAggregate(t *testing.T) {
	service, products, product := newReviewFixture(t)

	for _, rating := range []int{5, 3, 4, 4} {
		_, _, err := service.CreateReview(product.ID, uuid.NewString(), services.CreateReviewRequest{Rating: rating, Comment: " ok "})
		require.NoError(t, err)
	}

	stored, err := products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stored.AvgRating)
	assert.Equal(t, 4, stored.ReviewCount)

	reviews, err := service.ListReviews(product.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 4)
	assert.Equal(t, "ok", reviews[0].Comment)
}

func TestReviewService_CreateReviewValidation(t *testing.T) {
	service, _, product := newReviewFixture(t)
	user := uuid.NewString()

	for _, rating := range []int{0, 6, -1} {
		_, _, err := service.CreateReview(product.ID, user, services.CreateReviewRequest{Rating: rating})
		assert.True(t, apperrors.IsInvalidInput(err), "rating %d", rating)
	}
	_, _, err := service.CreateReview("nope", user, services.CreateReviewRequest{Rating: 3})
	assert.True(t, apperrors.IsInvalidInput(err))
	_, _, err = service.CreateReview(product.ID, "nope", services.CreateReviewRequest{Rating: 3})
	assert.True(t, apperrors.IsInvalidInput(err))

	_, _, err = service.CreateReview(product.ID, user, services.CreateReviewRequest{Rating: 3, Comment: strings.Repeat("a", 2001)})
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "Comment")
	_, _, err = service.CreateReview(product.ID, user, services.CreateReviewRequest{Rating: 3, Comment: strings.Repeat("a", 2000)})
	assert.NoError(t, err)

	_, _, err = service.CreateReview(uuid.NewString(), user, services.CreateReviewRequest{Rating: 3})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReviewService_DeleteReviewRecomputes(t *testing.T) {
	service, products, product := newReviewFixture(t)
	author := uuid.NewString()

	first, _, err := service.CreateReview(product.ID, author, services.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, _, err = service.CreateReview(product.ID, uuid.NewString(), services.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	err = service.DeleteReview(first.ID, uuid.NewString(), false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, service.DeleteReview(first.ID, author, false))
	stored, err := products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, stored.AvgRating)
	assert.Equal(t, 1, stored.ReviewCount)

	err = service.DeleteReview(first.ID, author, false)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReviewService_DeleteLastReviewResetsAggregate(t *testing.T) {
	service, products, product := newReviewFixture(t)

	review, _, err := service.CreateReview(product.ID, uuid.NewString(), services.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	require.NoError(t, service.DeleteReview(review.ID, uuid.NewString(), true))

	stored, err := products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.AvgRating)
	assert.Equal(t, 0, stored.ReviewCount)
}

func TestReviewService_PublishesEvents(t *testing.T) {
	products := repositories.NewMockProductRepository()
	product := seedProduct(t, products)
	publisher := new(MockPublisher)
	service := services.NewReviewService(repositories.NewMockReviewRepository(), products, publisher, testLog)

	publisher.On("Publish", services.EventsExchange, services.RoutingReviewCreated, mock.Anything).Return(nil).Once()
	publisher.On("Publish", services.EventsExchange, services.RoutingProductRatingSync, mock.Anything).Return(nil).Once()

	_, updated, err := service.CreateReview(product.ID, uuid.NewString(), services.CreateReviewRequest{Rating: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, updated.AvgRating)
	publisher.AssertExpectations(t)
}
