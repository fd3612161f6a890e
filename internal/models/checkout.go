package models

import (
	"time"
)

// Checkout is a priced snapshot of a cart taken before payment. It becomes
// tied to an Order once the payment for it succeeds.
type Checkout struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID  uint      `gorm:"index;not null"           json:"customer_id"`
	Subtotal    float64   `gorm:"not null"                 json:"subtotal"`
	DeliveryFee float64   `gorm:"not null"                 json:"delivery_fee"`
	GrandTotal  float64   `gorm:"not null"                 json:"grand_total"`
	CreatedAt   time.Time `json:"created_at"`
}

type Payment struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CheckoutID           uint      `gorm:"index;not null"           json:"checkout_id"`
	PayerID              uint      `gorm:"index;not null"           json:"payer_id"`
	Amount               float64   `gorm:"not null"                 json:"amount"`
	Method               string    `gorm:"not null"                 json:"method"`
	Status               string    `gorm:"not null"                 json:"status"`
	GatewayTransactionID string    `gorm:"not null"                 json:"gateway_transaction_id"`
	PaidAt               time.Time `json:"paid_at"`
}
