package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danuarta/agromart/internal/helpers"
	"github.com/danuarta/agromart/internal/logging"
	"github.com/danuarta/agromart/internal/models"
)

type PaymentRequest struct {
	CheckoutToken string `json:"checkout_token" binding:"required"`
	Method        string `json:"method" binding:"required"`
}

var errEmptyCart = errors.New("cart is empty")

type insufficientStockError struct {
	ProductName string
}

func (e *insufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// generateTransactionID produces a synthetic gateway transaction id. The
// gateway is simulated, so this is not a trust boundary.
func generateTransactionID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TXN-" + raw[:12]
}

// StartCheckout prices the buyer's cart into a Checkout row and hands back a
// signed token staging it for the payment step. Nothing is reserved yet; a
// lost token just means checking out again.
func StartCheckout(c *gin.Context) {
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

	lines, err := cartLines(gormDB, buyerID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving cart.")
		return
	}
	if len(lines) == 0 {
		helpers.RespondWithError(c, http.StatusUnprocessableEntity, helpers.CodeState, "Cart is empty.")
		return
	}

	for _, line := range lines {
		if line.StockQuantity < line.Quantity {
			helpers.RespondWithError(c, http.StatusUnprocessableEntity, helpers.CodeState,
				fmt.Sprintf("Insufficient stock for %s.", line.ProductName))
			return
		}
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.Price * float64(line.Quantity)
	}
	deliveryFee := subtotal / 10.0
	grandTotal := subtotal + deliveryFee

	checkout := models.Checkout{
		CustomerID:  buyerID,
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		GrandTotal:  grandTotal,
	}
	if err := gormDB.Create(&checkout).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to create checkout.")
		return
	}

	secret := os.Getenv("JWT_SECRET")
	tokenString, err := helpers.GenerateCheckoutToken([]byte(secret), helpers.CheckoutClaims{
		UserID:      buyerID,
		CheckoutID:  checkout.ID,
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		GrandTotal:  grandTotal,
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to generate checkout token.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"checkout_id":    checkout.ID,
		"subtotal":       subtotal,
		"delivery_fee":   deliveryFee,
		"grand_total":    grandTotal,
		"checkout_token": tokenString,
	})
}

// ProcessPayment settles a staged checkout: within one transaction it
// decrements stock, creates the order with its items, records the simulated
// payment, books one pending payout per farmer and clears the cart. Any
// failure rolls the whole sequence back.
func ProcessPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid input. Please check your fields.")
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

	secret := os.Getenv("JWT_SECRET")
	claims, err := helpers.ParseCheckoutToken([]byte(secret), req.CheckoutToken)
	if err != nil || claims.UserID != buyerID {
		helpers.RespondWithError(c, http.StatusConflict, helpers.CodeConflict, "No pending checkout found. Please checkout again.")
		return
	}

	logger := logging.FromContext(c.Request.Context())
	transactionID := generateTransactionID()

	var order models.Order
	txErr := gormDB.Transaction(func(tx *gorm.DB) error {
		lines, err := cartLines(tx, buyerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errEmptyCart
		}

		var buyer models.User
		if err := tx.Where("id = ?", buyerID).First(&buyer).Error; err != nil {
			return err
		}
		deliveryAddress := buyer.Location
		if deliveryAddress == "" {
			deliveryAddress = "No address provided"
		}

		order = models.Order{
			UserID:          buyerID,
			CheckoutID:      claims.CheckoutID,
			TotalAmount:     claims.GrandTotal,
			DeliveryAddress: deliveryAddress,
			Status:          "completed",
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		farmerEarnings := make(map[uint]float64)
		farmerOrder := make([]uint, 0, len(lines))

		for _, line := range lines {
			// Conditional decrement: the guard keeps two concurrent
			// payments from driving stock negative.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &insufficientStockError{ProductName: line.ProductName}
			}

			item := models.OrderItem{
				OrderID:        order.ID,
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
				Price:          line.Price,
				DeliveryStatus: models.DeliveryStatusPending,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Farmer{}).
				Where("user_id = ?", line.FarmerID).
				UpdateColumn("total_sales", gorm.Expr("total_sales + ?", line.Quantity)).Error; err != nil {
				return err
			}

			if _, seen := farmerEarnings[line.FarmerID]; !seen {
				farmerOrder = append(farmerOrder, line.FarmerID)
			}
			farmerEarnings[line.FarmerID] += line.Price * float64(line.Quantity) * 0.9
		}

		payment := models.Payment{
			CheckoutID:           claims.CheckoutID,
			PayerID:              buyerID,
			Amount:               claims.GrandTotal,
			Method:               req.Method,
			Status:               "completed",
			GatewayTransactionID: transactionID,
			PaidAt:               time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		for _, farmerUserID := range farmerOrder {
			var farmer models.Farmer
			if err := tx.Where("user_id = ?", farmerUserID).First(&farmer).Error; err != nil {
				return err
			}
			payout := models.Payout{
				FarmerID: farmer.ID,
				OrderID:  order.ID,
				Amount:   farmerEarnings[farmerUserID],
				Status:   models.PayoutStatusPending,
			}
			if err := tx.Create(&payout).Error; err != nil {
				return err
			}
		}

		return tx.Where("user_id = ?", buyerID).Delete(&models.CartItem{}).Error
	})

	if txErr != nil {
		var stockErr *insufficientStockError
		switch {
		case errors.As(txErr, &stockErr):
			helpers.RespondWithError(c, http.StatusUnprocessableEntity, helpers.CodeState,
				fmt.Sprintf("Payment failed: insufficient stock for %s.", stockErr.ProductName))
		case errors.Is(txErr, errEmptyCart):
			helpers.RespondWithError(c, http.StatusUnprocessableEntity, helpers.CodeState, "Payment failed: cart is empty.")
		default:
			logger.Error("payment transaction failed", "error", txErr)
			helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Payment failed. Please try again.")
		}
		return
	}

	logger.Info("payment processed",
		"order_id", order.ID,
		"transaction_id", transactionID,
		"amount", claims.GrandTotal,
	)

	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment processed successfully.",
		"order_id":       order.ID,
		"transaction_id": transactionID,
		"payment_method": req.Method,
		"amount":         claims.GrandTotal,
	})
}
