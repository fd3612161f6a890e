package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/agromart/internal/helpers"
	"github.com/danuarta/agromart/internal/models"
)

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
	OrderID *uint  `json:"order_id"`
}

type ReviewListing struct {
	ID                 uint      `json:"id"`
	ReviewerName       string    `json:"reviewer_name"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	CreatedAt          time.Time `json:"created_at"`
}

func recomputeAverageRating(tx *gorm.DB, productID uint) error {
	var avg float64
	if err := tx.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error; err != nil {
		return err
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("average_rating", avg).Error
}

func AddReview(c *gin.Context) {
	productID, err := helpers.StringToUint(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid product ID.")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid input. Please check your fields.")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		helpers.RespondWithError(c, http.StatusBadRequest, helpers.CodeValidation, "Invalid rating value.")
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
	if err := gormDB.Where("id = ?", productID).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Product not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving product.")
		return
	}

	var existingReview models.Review
	if result := gormDB.Where("reviewer_id = ? AND product_id = ?", buyerID, productID).First(&existingReview); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, helpers.CodeConflict, "You have already reviewed this product.")
		return
	}

	// A matching order line makes the review a verified purchase and gives
	// it an order to link to.
	var purchase models.OrderItem
	purchaseErr := gormDB.
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND orders.user_id = ?", productID, buyerID).
		First(&purchase).Error
	isVerified := purchaseErr == nil

	var linkedOrderID *uint
	if isVerified {
		linkedOrderID = &purchase.OrderID
		if req.OrderID != nil {
			var supplied models.OrderItem
			if err := gormDB.Where("order_id = ? AND product_id = ?", *req.OrderID, productID).First(&supplied).Error; err == nil {
				linkedOrderID = req.OrderID
			}
		}
	}

	review := models.Review{
		ReviewerID:         buyerID,
		ProductID:          productID,
		OrderID:            linkedOrderID,
		Rating:             req.Rating,
		Title:              req.Title,
		Comment:            req.Comment,
		IsVerifiedPurchase: isVerified,
	}

	txErr := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recomputeAverageRating(tx, productID)
	})
	if txErr != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Failed to submit review.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Review submitted successfully.",
		"review_id": review.ID,
	})
}

func GetProductReviews(c *gin.Context) {
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

	var product models.Product
	if err := gormDB.Where("id = ?", productID).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, helpers.CodeNotFound, "Product not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving product.")
		return
	}

	var reviews []ReviewListing
	if err := gormDB.Table("reviews").
		Select("reviews.id, reviews.rating, reviews.title, reviews.comment, reviews.is_verified_purchase, reviews.created_at, users.name AS reviewer_name").
		Joins("JOIN users ON users.id = reviews.reviewer_id").
		Where("reviews.product_id = ?", productID).
		Order("reviews.created_at DESC").
		Scan(&reviews).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, helpers.CodeInternal, "Error retrieving reviews.")
		return
	}

	// Rating distribution, one bucket per star value.
	histogram := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	var total int
	var sum int
	for _, review := range reviews {
		switch review.Rating {
		case 1:
			histogram["1"]++
		case 2:
			histogram["2"]++
		case 3:
			histogram["3"]++
		case 4:
			histogram["4"]++
		case 5:
			histogram["5"]++
		}
		total++
		sum += review.Rating
	}
	var avgRating float64
	if total > 0 {
		avgRating = float64(sum) / float64(total)
	}

	response := gin.H{
		"product": gin.H{
			"id":             product.ID,
			"name":           product.Name,
			"average_rating": product.AverageRating,
		},
		"reviews": reviews,
		"stats": gin.H{
			"total_reviews": total,
			"avg_rating":    avgRating,
			"histogram":     histogram,
		},
	}

	// Buyers also learn whether they may still review this product.
	if c.GetString("role") == models.RoleBuyer {
		userID, _ := c.Get("user_id")

		var purchaseCount int64
		gormDB.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("order_items.product_id = ? AND orders.user_id = ?", productID, userID).
			Count(&purchaseCount)

		var reviewCount int64
		gormDB.Model(&models.Review{}).
			Where("product_id = ? AND reviewer_id = ?", productID, userID).
			Count(&reviewCount)

		hasPurchased := purchaseCount > 0
		alreadyReviewed := reviewCount > 0
		response["viewer"] = gin.H{
			"has_purchased":    hasPurchased,
			"already_reviewed": alreadyReviewed,
			"can_review":       hasPurchased && !alreadyReviewed,
		}
	}

	c.JSON(http.StatusOK, response)
}
