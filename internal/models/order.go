package models

import (
	"time"
)

const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
)

type Order struct {
	ID              uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint        `gorm:"index;not null"           json:"user_id"`
	CheckoutID      uint        `gorm:"index;not null"           json:"checkout_id"`
	TotalAmount     float64     `gorm:"not null"                 json:"total_amount"`
	DeliveryAddress string      `gorm:"not null"                 json:"delivery_address"`
	Status          string      `gorm:"not null"                 json:"status"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"       json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderItem captures the unit price at purchase time; later product edits do
// not change it. DeliveryStatus is tracked per item so farmers sharing one
// order fulfill their own lines independently.
type OrderItem struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        uint       `gorm:"index;not null"           json:"order_id"`
	ProductID      uint       `gorm:"index;not null"           json:"product_id"`
	Quantity       uint       `gorm:"not null"                 json:"quantity"`
	Price          float64    `gorm:"not null"                 json:"price"`
	DeliveryStatus string     `gorm:"not null;default:'pending'" json:"delivery_status"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}
