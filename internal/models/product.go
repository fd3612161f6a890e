package models

import (
	"time"
)

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FarmerID      uint      `gorm:"index;not null"           json:"farmer_id"`
	Name          string    `gorm:"not null"                 json:"name"`
	Description   string    `gorm:"not null"                 json:"description"`
	Price         float64   `gorm:"not null"                 json:"price"`
	StockQuantity uint      `gorm:"not null;default:0"       json:"stock_quantity"`
	IsAvailable   bool      `gorm:"not null;default:true"    json:"is_available"`
	AverageRating float64   `gorm:"not null;default:0"       json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
