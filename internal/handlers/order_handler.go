package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/danuarta/agromart/internal/helpers"
	"github.com/danuarta/agromart/internal/logging"
	"github.com/danuarta/agromart/internal/models"
)

// BuyerOrderItem is one delivered-or-pending line of a buyer's order.
type BuyerOrderItem struct {
	OrderID        uint       `json:"order_id"`
	OrderItemID    uint       `json:"order_item_id"`
	ProductName    string     `json:"product_name"`
	FarmerName     string     `json:"farmer_name"`
	Quantity       uint       `json:"quantity"`
	Price          float64    `json:"price"`
	DeliveryStatus string     `json:"delivery_status"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

type BuyerOrder struct {
	ID              uint             `json:"id"`
	OrderDate       time.Time        `json:"order_date"`
	TotalAmount     float64          `json:"total_amount"`
	DeliveryAddress string           `json:"delivery_address"`
	Items           []BuyerOrderItem `json:"items"`
}

// FarmerOrderItem is a line a farmer has to fulfill, with the buyer's
// contact details.
type FarmerOrderItem struct {
	OrderItemID     uint       `json:"order_item_id"`
	OrderID         uint       `json:"order_id"`
	ProductID       uint       `json:"product_id"`
	ProductName     string     `json:"product_name"`
	Quantity        uint       `json:"quantity"`
	Price           float64    `json:"price"`
	DeliveryStatus  string     `json:"delivery_status"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	OrderDate       time.Time  `json:"order_date"`
	DeliveryAddress string     `json:"delivery_address"`
	BuyerName       string     `json:"buyer_name"`
	BuyerEmail      string     `json:"buyer_email"`
	BuyerPhone      string     `json:"buyer_phone"`
}

func BuyerOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, helpers.CodeAuth, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	type orderRow struct {
		OrderID         uint
		OrderDate       time.Time
		TotalAmount     float64
		DeliveryAddress string
		OrderItemID     uint
		ProductName     string
		FarmerName      string
		Quantity        uint
		Price           float64
		DeliveryStatus  string
		DeliveredAt     *time.Time
	}

	var rows []orderRow
	err := gormDB.Table("orders").
		Select("orders.id AS order_id, orders.created_at AS order_date, orders.total_amount, orders.delivery_address, order_items.id AS order_item_id, order_items.quantity, order_items.price, order_items.delivery_status, order_items.delivered_at, products.name AS product_name, users.name AS farmer_name").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN users ON users.id = products.farmer_id").
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC, order_items.id ASC").
		Scan(&rows).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving orders.")
		return
	}

	// Group line rows into orders, preserving newest-first order.
	byID := make(map[uint]*BuyerOrder)
	orders := make([]*BuyerOrder, 0)
	for _, row := range rows {
		order, ok := byID[row.OrderID]
		if !ok {
			order = &BuyerOrder{
				ID:              row.OrderID,
				OrderDate:       row.OrderDate,
				TotalAmount:     row.TotalAmount,
				DeliveryAddress: row.DeliveryAddress,
			}
			byID[row.OrderID] = order
			orders = append(orders, order)
		}
		order.Items = append(order.Items, BuyerOrderItem{
			OrderID:        row.OrderID,
			OrderItemID:    row.OrderItemID,
			ProductName:    row.ProductName,
			FarmerName:     row.FarmerName,
			Quantity:       row.Quantity,
			Price:          row.Price,
			DeliveryStatus: row.DeliveryStatus,
			DeliveredAt:    row.DeliveredAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func FarmerOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, helpers.CodeAuth, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var items []FarmerOrderItem
	err := gormDB.Table("order_items").
		Select("order_items.id AS order_item_id, order_items.order_id, order_items.quantity, order_items.price, order_items.delivery_status, order_items.delivered_at, products.id AS product_id, products.name AS product_name, orders.created_at AS order_date, orders.delivery_address, users.name AS buyer_name, users.email AS buyer_email, users.phone AS buyer_phone").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN users ON users.id = orders.user_id").
		Where("products.farmer_id = ?", userID).
		Order("orders.created_at DESC, order_items.id ASC").
		Scan(&items).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving orders.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order_items": items})
}

// MarkDelivered sets one order item delivered. When that completes the
// farmer's share of the order, their pending payouts for it move to
// transferred in the same transaction. Calling it again on a delivered item
// changes nothing.
func MarkDelivered(c *gin.Context) {
	itemID, err := helpers.StringToUint(c.Param("itemId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid order item ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, helpers.CodeAuth, "User ID not found in token.")
		return
	}
	farmerUserID, ok := userID.(uint)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Invalid user ID type.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var item models.OrderItem
	if err := gormDB.Where("id = ?", itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Order item not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving order item.")
		return
	}

	var product models.Product
	if err := gormDB.Where("id = ?", item.ProductID).First(&product).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving product.")
		return
	}
	if product.FarmerID != farmerUserID {
		helpers.RespondWithError(c, http.StatusForbidden, helpers.CodeForbidden, "You don't have permission to update this order item.")
		return
	}

	if item.DeliveryStatus == models.DeliveryStatusDelivered {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Item already marked as delivered.",
			"delivered": true,
		})
		return
	}

	payoutReleased := false
	txErr := gormDB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&item).Updates(map[string]interface{}{
			"delivery_status": models.DeliveryStatusDelivered,
			"delivered_at":    now,
		}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Table("order_items").
			Joins("JOIN products ON products.id = order_items.product_id").
			Where("order_items.order_id = ? AND products.farmer_id = ? AND order_items.delivery_status <> ?",
				item.OrderID, farmerUserID, models.DeliveryStatusDelivered).
			Count(&remaining).Error; err != nil {
			return err
		}

		if remaining == 0 {
			var farmer models.Farmer
			if err := tx.Where("user_id = ?", farmerUserID).First(&farmer).Error; err != nil {
				return err
			}
			res := tx.Model(&models.Payout{}).
				Where("farmer_id = ? AND order_id = ? AND status = ?",
					farmer.ID, item.OrderID, models.PayoutStatusPending).
				Update("status", models.PayoutStatusTransferred)
			if res.Error != nil {
				return res.Error
			}
			payoutReleased = res.RowsAffected > 0
		}
		return nil
	})
	if txErr != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to mark item as delivered.")
		return
	}

	if payoutReleased {
		logging.FromContext(c.Request.Context()).Info("payout released",
			"order_id", item.OrderID,
			"farmer_user_id", farmerUserID,
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Item marked as delivered successfully.",
		"delivered":       true,
		"payout_released": payoutReleased,
	})
}

// OrderReceiptQR renders a signed pickup receipt for one of the buyer's
// orders as a PNG QR code.
func OrderReceiptQR(c *gin.Context) {
	orderID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid order ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, helpers.CodeAuth, "User ID not found in token.")
		return
	}
	buyerID, ok := userID.(uint)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Invalid user ID type.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var order models.Order
	if err := gormDB.Where("id = ?", orderID).First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Order not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving order.")
		return
	}
	if order.UserID != buyerID {
		helpers.RespondWithError(c, http.StatusForbidden, helpers.CodeForbidden, "You don't have permission to access this order.")
		return
	}

	var payment models.Payment
	if err := gormDB.Where("checkout_id = ?", order.CheckoutID).First(&payment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Payment record not found.")
		return
	}

	receiptData := helpers.BuildReceiptData(order.ID, payment.GatewayTransactionID, buyerID, os.Getenv("JWT_SECRET"))

	qrImage, err := qrcode.Encode(receiptData, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
