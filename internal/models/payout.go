package models

import (
	"time"
)

const (
	PayoutStatusPending     = "pending"
	PayoutStatusTransferred = "transferred"
)

// Payout is a farmer's 90% share of their line totals in one order. It is
// keyed by (FarmerID, OrderID) so the transfer on full delivery matches
// exactly, regardless of how many orders land in the same hour.
type Payout struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"       json:"id"`
	FarmerID  uint      `gorm:"index:idx_payout_farmer_order;not null" json:"farmer_id"`
	OrderID   uint      `gorm:"index:idx_payout_farmer_order;not null" json:"order_id"`
	Amount    float64   `gorm:"not null"                       json:"amount"`
	Status    string    `gorm:"not null;default:'pending'"     json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
