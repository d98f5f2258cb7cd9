package repositories

import "toko/internal/models"

// UserRepository is the account store. Lookups return an apperrors NotFound
// error when no account matches.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
