package models

import (
	"time"
)

// CartItem holds at most one row per (UserID, ProductID); adding the same
// product again merges into the existing row's quantity.
type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"               json:"id"`
	UserID    uint      `gorm:"index:idx_cart_user_product;not null"   json:"user_id"`
	ProductID uint      `gorm:"index:idx_cart_user_product;not null"   json:"product_id"`
	Quantity  uint      `gorm:"not null;check:quantity > 0"            json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
