package models

import (
	"time"
)

type Review struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ReviewerID         uint      `gorm:"index;not null"           json:"reviewer_id"`
	ProductID          uint      `gorm:"index;not null"           json:"product_id"`
	OrderID            *uint     `json:"order_id,omitempty"`
	Rating             int       `gorm:"not null"                 json:"rating"`
	Title              string    `json:"title"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `gorm:"not null;default:false"   json:"is_verified_purchase"`
	CreatedAt          time.Time `json:"created_at"`
}
