package models

import (
	"time"
)

type Farmer struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null"     json:"user_id"`
	User       User      `json:"-"`
	Rating     float64   `gorm:"not null;default:0"       json:"rating"`
	TotalSales uint      `gorm:"not null;default:0"       json:"total_sales"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Buyer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null"     json:"user_id"`
	User      User      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
