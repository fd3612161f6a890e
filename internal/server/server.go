package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuarta/agromart/config"
	"github.com/danuarta/agromart/internal/handlers"
	"github.com/danuarta/agromart/internal/logging"
	"github.com/danuarta/agromart/internal/middleware"
	"github.com/danuarta/agromart/internal/models"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger := logging.New(os.Getenv("LOG_LEVEL"))

	r := gin.Default()
	r.Use(middleware.LoggerMiddleware(logger))

	SetupRoutes(r, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("server starting", "port", port)
	return r.Run(":" + port)
}

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	r.Use(middleware.DatabaseMiddleware(db))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		productPublic := public.Group("/products")
		{
			productPublic.GET("", handlers.ListProducts)
			productPublic.GET("/:id", handlers.GetProduct)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.POST("/logout", handlers.Logout)
		protected.GET("/profile", handlers.GetProfile)
		protected.PUT("/profile", handlers.UpdateProfile)
		protected.GET("/products/:id/reviews", handlers.GetProductReviews)

		farmer := protected.Group("/")
		farmer.Use(middleware.RequireRole(models.RoleFarmer))
		{
			farmer.POST("/products", handlers.AddProduct)
			farmer.PUT("/products/:id", handlers.EditProduct)
			farmer.GET("/farmer/dashboard", handlers.FarmerDashboard)
			farmer.GET("/farmer/orders", handlers.FarmerOrders)
			farmer.POST("/farmer/orders/:itemId/delivered", handlers.MarkDelivered)
		}

		buyer := protected.Group("/")
		buyer.Use(middleware.RequireRole(models.RoleBuyer))
		{
			buyer.GET("/cart", handlers.ViewCart)
			buyer.POST("/cart", handlers.AddToCart)
			buyer.DELETE("/cart/:id", handlers.RemoveFromCart)
			buyer.POST("/checkout", handlers.StartCheckout)
			buyer.POST("/payment", handlers.ProcessPayment)
			buyer.GET("/orders", handlers.BuyerOrders)
			buyer.GET("/orders/:id/receipt", handlers.OrderReceiptQR)
			buyer.POST("/products/:id/reviews", handlers.AddReview)
		}
	}
}
