package models

import (
	"time"

	"gorm.io/datatypes"
)

// Order statuses.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// ValidOrderStatuses lists every status an order may hold.
var ValidOrderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// OrderItem is a line item frozen at order creation. Name and Price are
// copies and do not follow later product edits.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderItemRequest is one cart entry submitted by a client. Quantity is
// loosely typed on the wire; Price is accepted but never trusted.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  any    `json:"quantity"`
	Price     any    `json:"price,omitempty"`
}

// CreateOrderRequest is the body of an order submission.
type CreateOrderRequest struct {
	UserID string             `json:"user_id"`
	Items  []OrderItemRequest `json:"items"`
}

// Order represents a customer order.
type Order struct {
	ID          string                         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string                         `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Items       datatypes.JSONSlice[OrderItem] `json:"items" gorm:"type:json"`
	TotalAmount float64                        `json:"total_amount"`
	Status      string                         `json:"status" gorm:"type:varchar(20);index"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}
