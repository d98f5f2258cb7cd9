package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a user of the store.
type User struct {
	ID         string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string         `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string         `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string         `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role       string         `json:"role" gorm:"type:varchar(20);default:customer" validate:"omitempty,oneof=customer admin"`
	FullName   string         `json:"full_name" validate:"omitempty,max=200"`
	Phone      string         `json:"phone" validate:"omitempty,max=30"`
	Address    string         `json:"address" validate:"omitempty,max=300"`
	City       string         `json:"city" validate:"omitempty,max=100"`
	PostalCode string         `json:"postal_code" validate:"omitempty,max=20"`
	Country    string         `json:"country" validate:"omitempty,max=100"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
