package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/agromart/internal/helpers"
	"github.com/danuarta/agromart/internal/models"
)

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  uint `json:"quantity" binding:"required,min=1"`
}

// CartLine is one cart row joined with its product and selling farmer.
type CartLine struct {
	ID            uint    `json:"id"`
	ProductID     uint    `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Price         float64 `json:"price"`
	Quantity      uint    `json:"quantity"`
	StockQuantity uint    `json:"stock_quantity"`
	FarmerID      uint    `json:"farmer_id"`
	FarmerName    string  `json:"farmer_name"`
}

func cartLines(gormDB *gorm.DB, buyerID uint) ([]CartLine, error) {
	var lines []CartLine
	err := gormDB.Table("cart_items").
		Select("cart_items.id, cart_items.product_id, cart_items.quantity, products.name AS product_name, products.price, products.stock_quantity, products.farmer_id, users.name AS farmer_name").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Joins("JOIN users ON users.id = products.farmer_id").
		Where("cart_items.user_id = ?", buyerID).
		Order("cart_items.id ASC").
		Scan(&lines).Error
	return lines, err
}

func AddToCart(c *gin.Context) {
	var req AddToCartRequest
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

	var product models.Product
	if err := gormDB.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		helpers.RespondWithError(c, http.StatusUnprocessableEntity, helpers.CodeState, "Product not available.")
		return
	}
	if !product.IsAvailable || product.StockQuantity < req.Quantity {
		helpers.RespondWithError(c, http.StatusUnprocessableEntity, helpers.CodeState, "Product not available.")
		return
	}

	// Merge rule: one row per (buyer, product).
	var item models.CartItem
	err := gormDB.Where("user_id = ? AND product_id = ?", buyerID, req.ProductID).First(&item).Error
	if err == nil {
		item.Quantity += req.Quantity
		if err := gormDB.Save(&item).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to update cart.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Added to cart.", "item": item})
		return
	}
	if err != gorm.ErrRecordNotFound {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving cart.")
		return
	}

	item = models.CartItem{
		UserID:    buyerID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := gormDB.Create(&item).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to add to cart.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Added to cart.", "item": item})
}

// RemoveFromCart deletes the row scoped to the caller. Deleting another
// buyer's row matches nothing and is not an error.
func RemoveFromCart(c *gin.Context) {
	cartID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid cart item ID.")
		return
	}

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

	if err := gormDB.Where("id = ? AND user_id = ?", cartID, userID).Delete(&models.CartItem{}).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to remove from cart.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from cart."})
}

func ViewCart(c *gin.Context) {
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

	var subtotal float64
	for _, line := range lines {
		subtotal += line.Price * float64(line.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    lines,
		"subtotal": subtotal,
	})
}
