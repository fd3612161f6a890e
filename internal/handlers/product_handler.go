package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/agromart/internal/helpers"
	"github.com/danuarta/agromart/internal/models"
)

type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       *uint   `json:"stock" binding:"required"`
	IsAvailable *bool   `json:"is_available"`
}

// ProductListing is the buyer-facing browse row: the product joined with the
// selling farmer's identity and rating.
type ProductListing struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity uint      `json:"stock_quantity"`
	AverageRating float64   `json:"average_rating"`
	FarmerID      uint      `json:"farmer_id"`
	FarmerName    string    `json:"farmer_name"`
	FarmerRating  float64   `json:"farmer_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

func AddProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, helpers.CodeAuth, "User ID not found in token.")
		return
	}
	farmerID, ok := userID.(uint)
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

	product := models.Product{
		FarmerID:      farmerID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: *req.Stock,
		IsAvailable:   true,
	}

	if err := gormDB.Create(&product).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to create product.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Product added successfully.",
		"product_id": product.ID,
	})
}

func EditProduct(c *gin.Context) {
	productID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid product ID.")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, helpers.CodeAuth, "User ID not found in token.")
		return
	}
	farmerID, ok := userID.(uint)
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
	if err := gormDB.Where("id = ?", productID).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Product not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving product.")
		return
	}

	if product.FarmerID != farmerID {
		helpers.RespondWithError(c, http.StatusForbidden, helpers.CodeForbidden, "You don't have permission to modify this product.")
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.StockQuantity = *req.Stock
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := gormDB.Save(&product).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to update product.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully.",
		"product": product,
	})
}

func ListProducts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var listings []ProductListing
	err := gormDB.Table("products").
		Select("products.id, products.name, products.description, products.price, products.stock_quantity, products.average_rating, products.farmer_id, products.created_at, users.name AS farmer_name, farmers.rating AS farmer_rating").
		Joins("JOIN users ON users.id = products.farmer_id").
		Joins("JOIN farmers ON farmers.user_id = users.id").
		Where("products.is_available = ? AND products.stock_quantity > 0", true).
		Order("products.created_at DESC").
		Scan(&listings).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving products.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": listings})
}

func GetProduct(c *gin.Context) {
	productID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid product ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var listing ProductListing
	result := gormDB.Table("products").
		Select("products.id, products.name, products.description, products.price, products.stock_quantity, products.average_rating, products.farmer_id, products.created_at, users.name AS farmer_name, farmers.rating AS farmer_rating").
		Joins("JOIN users ON users.id = products.farmer_id").
		Joins("JOIN farmers ON farmers.user_id = users.id").
		Where("products.id = ?", productID).
		Scan(&listing)
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving product.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Product not found.")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// FarmerDashboard returns the farmer's own products, payouts and lifetime
// earnings in one response.
func FarmerDashboard(c *gin.Context) {
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

	var farmer models.Farmer
	if err := gormDB.Preload("User").Where("user_id = ?", userID).First(&farmer).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Farmer profile not found.")
		return
	}

	var products []models.Product
	if err := gormDB.Where("farmer_id = ?", userID).Order("created_at DESC").Find(&products).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving products.")
		return
	}

	var payouts []models.Payout
	if err := gormDB.Where("farmer_id = ?", farmer.ID).Order("created_at DESC").Find(&payouts).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving payouts.")
		return
	}

	var lifetimeEarnings float64
	if err := gormDB.Model(&models.Payout{}).
		Where("farmer_id = ?", farmer.ID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&lifetimeEarnings).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error computing earnings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"farmer": gin.H{
			"id":          farmer.ID,
			"name":        farmer.User.Name,
			"email":       farmer.User.Email,
			"rating":      farmer.Rating,
			"total_sales": farmer.TotalSales,
		},
		"products":          products,
		"payouts":           payouts,
		"lifetime_earnings": lifetimeEarnings,
	})
}
