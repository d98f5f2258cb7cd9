package models

import (
	"time"

	"gorm.io/gorm"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single user's rating of a product.
type Review struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string         `json:"product_id" gorm:"type:varchar(36);index;not null" validate:"required,uuid"`
	UserID    string         `json:"user_id" gorm:"type:varchar(36);index;not null" validate:"required,uuid"`
	Rating    int            `json:"rating" validate:"min=1,max=5"`
	Comment   string         `json:"comment,omitempty" validate:"omitempty,max=2000"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// RatingStats is the denormalized rating summary stored on a product.
type RatingStats struct {
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}
