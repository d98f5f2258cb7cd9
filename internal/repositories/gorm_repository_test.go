package repositories_test

import (
	"fmt"
	"testing"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Review{}, &models.Order{}, &models.User{}))
	return db
}

func TestGORMProductRepository_FindByIDsOmitsMissing(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	a := &models.Product{Name: "Chair", Price: 49.99, Category: "furniture"}
	b := &models.Product{Name: "Monitor", Price: 89.99, Category: "displays"}
	require.NoError(t, repo.Create(a))
	require.NoError(t, repo.Create(b))

	found, err := repo.FindByIDs([]string{a.ID, uuid.NewString(), b.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, []string{found[0].ID, found[1].ID})

	found, err = repo.FindByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGORMProductRepository_UpdateSetsAndUnsetsAttributes(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	p := &models.Product{
		Name:       "Smartphone",
		Price:      799.99,
		Category:   "phones",
		Stock:      5,
		Attributes: datatypes.JSONMap{"Color": "Red", "Storage": "128GB"},
	}
	require.NoError(t, repo.Create(p))

	updated, err := repo.Update(p.ID, map[string]any{"Storage": "256GB", "price": 749.0}, []string{"Color"})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)

	stored, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 749.0, stored.Price)
	assert.Equal(t, 5, stored.Stock)
	assert.Equal(t, "256GB", stored.Attributes["Storage"])
	assert.NotContains(t, stored.Attributes, "Color")
	assert.Equal(t, 1, stored.Version)

	// unsetting a fixed field has no effect
	_, err = repo.Update(p.ID, nil, []string{models.FieldName})
	require.NoError(t, err)
	stored, err = repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smartphone", stored.Name)
}

func TestGORMProductRepository_UpdateDeletedProduct(t *testing.T) {
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	p := &models.Product{Name: "Lamp", Price: 15, Category: "lighting"}
	require.NoError(t, repo.Create(p))
	require.NoError(t, repo.Delete(p.ID))

	_, err := repo.Update(p.ID, map[string]any{"Color": "Blue"}, nil)
	assert.True(t, apperrors.IsNotFound(err))

	err = repo.Delete(p.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGORMProductRepository_SetRatingStatsWritesOnlyAggregate(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMProductRepository(db)

	p := &models.Product{Name: "Desk Lamp", Price: 49.99, Category: "lighting", Attributes: datatypes.JSONMap{"Color": "Red"}}
	require.NoError(t, repo.Create(p))
	before, err := repo.GetByID(p.ID)
	require.NoError(t, err)

	// an admin edit lands while the aggregate write is in flight
	edited := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:concurrent_edit", func(tx *gorm.DB) {
		if edited {
			return
		}
		edited = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE products SET price = ? WHERE id = ?", 1.5, p.ID).Error)
	}))

	got, err := repo.SetRatingStats(p.ID, models.RatingStats{AvgRating: 4.5, ReviewCount: 2})
	require.NoError(t, err)
	require.True(t, edited)

	assert.Equal(t, 4.5, got.AvgRating)
	assert.Equal(t, 2, got.ReviewCount)
	assert.Equal(t, 1.5, got.Price, "concurrent edit must survive")
	assert.Equal(t, before.Version, got.Version)
	assert.True(t, before.UpdatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, "Red", got.Attributes["Color"])

	require.NoError(t, repo.Delete(p.ID))
	_, err = repo.SetRatingStats(p.ID, models.RatingStats{AvgRating: 1, ReviewCount: 1})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGORMReviewRepository_RatingsByProduct(t *testing.T) {
	repo := repositories.NewGORMReviewRepository(openTestDB(t))
	productID, otherID := uuid.NewString(), uuid.NewString()

	for _, rating := range []int{5, 3, 4} {
		require.NoError(t, repo.Create(&models.Review{ProductID: productID, UserID: uuid.NewString(), Rating: rating}))
	}
	extra := &models.Review{ProductID: otherID, UserID: uuid.NewString(), Rating: 1}
	require.NoError(t, repo.Create(extra))

	ratings, err := repo.RatingsByProduct(productID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{5, 3, 4}, ratings)

	require.NoError(t, repo.Delete(extra.ID))
	ratings, err = repo.RatingsByProduct(otherID)
	require.NoError(t, err)
	assert.Empty(t, ratings)

	_, err = repo.GetByID(extra.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGORMOrderRepository_ItemsRoundTrip(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(openTestDB(t))
	userID := uuid.NewString()

	order := &models.Order{
		UserID: userID,
		Items: datatypes.JSONSlice[models.OrderItem]{
			{ProductID: uuid.NewString(), Name: "Chair", Price: 49.99, Quantity: 2},
			{ProductID: uuid.NewString(), Name: "Monitor", Price: 89.99, Quantity: 1},
		},
		TotalAmount: 189.97,
		Status:      models.OrderStatusPending,
	}
	require.NoError(t, repo.Create(order))
	require.NotEmpty(t, order.ID)

	stored, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
	assert.Equal(t, 189.97, stored.TotalAmount)

	require.NoError(t, repo.UpdateStatus(order.ID, models.OrderStatusShipped))
	mine, err := repo.ListByUser(userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.OrderStatusShipped, mine[0].Status)

	err = repo.UpdateStatus(uuid.NewString(), models.OrderStatusShipped)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGORMUserRepository_DuplicateUsernameIsConflict(t *testing.T) {
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	require.NoError(t, repo.Create(&models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}))
	err := repo.Create(&models.User{Username: "alice", Email: "other@example.com", Password: "hash"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	user, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
}
