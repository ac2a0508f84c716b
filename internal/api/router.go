package api

import (
	"net/http"

	"quickbite-backend/internal/api/middleware"
	"quickbite-backend/internal/models"
	"quickbite-backend/internal/modules/deliveries"
	"quickbite-backend/internal/modules/orders"
	"quickbite-backend/internal/modules/restaurants"
	"quickbite-backend/internal/modules/users"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	userHandler *users.Handler,
	restaurantHandler *restaurants.Handler,
	orderHandler *orders.Handler,
	deliveryHandler *deliveries.Handler,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)
	driverRequired := middleware.RoleRequired(models.RoleDriver)
	merchantRequired := middleware.RoleRequired(models.RoleRestaurant)

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to QuickBite!"})
	})

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", userHandler.Signup)
		authGroup.POST("/login", userHandler.Login)
		authGroup.GET("/google", userHandler.GoogleLogin)
		authGroup.GET("/google/callback", userHandler.GoogleCallback)
		authGroup.POST("/password-reset/request", userHandler.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", userHandler.ResetPassword)
	}

	// Browsing restaurants needs no account.
	e.GET("/restaurants", restaurantHandler.ListRestaurants)
	e.GET("/restaurants/:restaurantId", restaurantHandler.GetRestaurant)
	e.GET("/restaurants/:restaurantId/reviews", restaurantHandler.ListReviews)
	e.GET("/categories", restaurantHandler.ListCategories)

	// --- Customer Routes ---
	profileGroup := e.Group("/profile", authMiddleware)
	{
		profileGroup.GET("", userHandler.GetMyProfile)
		profileGroup.PUT("", userHandler.UpdateMyProfile)
		profileGroup.GET("/addresses", userHandler.ListMyAddresses)
		profileGroup.POST("/addresses", userHandler.AddAddress)
		profileGroup.PUT("/addresses/:addressId", userHandler.UpdateAddress)
		profileGroup.PUT("/addresses/:addressId/default", userHandler.SetDefaultAddress)
		profileGroup.DELETE("/addresses/:addressId", userHandler.DeleteAddress)
	}

	e.POST("/restaurants/:restaurantId/reviews", restaurantHandler.CreateReview, authMiddleware)

	orderGroup := e.Group("/orders", authMiddleware)
	{
		orderGroup.POST("", orderHandler.CreateOrder)
		orderGroup.GET("", orderHandler.ListMyOrders)
		orderGroup.GET("/:orderId", orderHandler.GetOrderDetails)
		orderGroup.PUT("/:orderId/cancel", orderHandler.CancelOrder)
	}

	// --- Merchant Routes ---
	merchantGroup := e.Group("/merchant", authMiddleware, merchantRequired)
	{
		merchantGroup.GET("/restaurant", restaurantHandler.GetMyRestaurant)
		merchantGroup.PUT("/restaurant", restaurantHandler.UpdateMyRestaurant)
		merchantGroup.POST("/menu-items", restaurantHandler.CreateMenuItem)
		merchantGroup.PUT("/menu-items/:itemId", restaurantHandler.UpdateMenuItem)
		merchantGroup.DELETE("/menu-items/:itemId", restaurantHandler.DeleteMenuItem)
		merchantGroup.GET("/orders", orderHandler.ListRestaurantOrders)
		merchantGroup.PUT("/orders/:orderId/status", orderHandler.UpdateOrderStatus)
	}

	// --- Driver Routes ---
	driverGroup := e.Group("/driver", authMiddleware, driverRequired)
	{
		driverGroup.GET("/deliveries/available", deliveryHandler.ListAvailable)
		driverGroup.GET("/deliveries", deliveryHandler.ListMyDeliveries)
		driverGroup.GET("/deliveries/:deliveryId", deliveryHandler.GetDelivery)
		driverGroup.POST("/deliveries/:deliveryId/claim", deliveryHandler.Claim)
		driverGroup.PUT("/deliveries/:deliveryId/status", deliveryHandler.UpdateStatus)
		driverGroup.GET("/profile", deliveryHandler.GetDriverProfile)
		driverGroup.PUT("/profile", deliveryHandler.UpsertDriverProfile)
	}
}
