package repositories

import (
	"errors"
	"fmt"

	"toko/internal/models"
	"toko/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository stores accounts in the users table.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create inserts user, assigning an id and the customer role when unset.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("user %s already exists", user.Username)
		}
		return apperrors.Internal(fmt.Errorf("failed to create user: %w", err))
	}
	return nil
}

func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.findOne("username", username)
}

func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.findOne("email", email)
}

func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.findOne("id", id)
}

// findOne looks a user up by a unique column. column is never user input.
func (r *GORMUserRepository) findOne(column, value string) (*models.User, error) {
	var user models.User
	err := r.db.Where(column+" = ?", value).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.NotFound("user", value)
	case err != nil:
		return nil, apperrors.Internal(fmt.Errorf("failed to get user by %s: %w", column, err))
	}
	return &user, nil
}
