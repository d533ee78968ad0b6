package routes

import (
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Users            *handlers.UserHandler
	Restaurants      *handlers.RestaurantHandler
	Menus            *handlers.MenuHandler
	Orders           *handlers.OrderHandler
	RestaurantOrders *handlers.RestaurantOrderHandler
}

type Options struct {
	DB     *gorm.DB
	Tokens *middleware.TokenManager
	// UploadsDir is served under /uploads when images are stored locally
	UploadsDir string
}

func SetupRoutes(r *gin.Engine, h Handlers, opts Options) {
	r.GET("/health", handlers.Health(opts.DB))
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	auth := opts.Tokens.AuthRequired()
	api := r.Group("/api/v1")

	// ── User ───────────────────────────────────────────────────────
	user := api.Group("/user")
	{
		user.POST("/signup", h.Users.Signup)
		user.POST("/login", h.Users.Login)
		user.POST("/logout", h.Users.Logout)
		user.POST("/verify-email", h.Users.VerifyEmail)
		user.POST("/password/forgot", h.Users.ForgotPassword)
		user.POST("/password/reset/:token", h.Users.ResetPassword)
		user.GET("/check-auth", auth, h.Users.CheckAuth)
		user.POST("/check-auth", auth, h.Users.CheckAuth)
		user.POST("/profile/update", auth, h.Users.UpdateProfile)
		user.PUT("/profile/update", auth, h.Users.UpdateProfile)
	}

	// ── Restaurant ─────────────────────────────────────────────────
	restaurant := api.Group("/restaurant")
	{
		restaurant.POST("", auth, h.Restaurants.Create)
		restaurant.GET("", auth, h.Restaurants.Get)
		restaurant.PUT("", auth, h.Restaurants.Update)

		restaurant.GET("/order", auth, h.RestaurantOrders.List)
		restaurant.GET("/order/export", auth, h.RestaurantOrders.Export)
		restaurant.GET("/order/live", auth, h.RestaurantOrders.Live)
		restaurant.PUT("/order/:orderId/status", auth, h.RestaurantOrders.UpdateStatus)
		restaurant.GET("/order/:orderId/history", auth, h.RestaurantOrders.History)

		// storefront reads are public
		restaurant.GET("/search", h.Restaurants.Search)
		restaurant.GET("/search/:searchText", h.Restaurants.Search)
		restaurant.GET("/all", h.Restaurants.All)
		restaurant.GET("/:id", h.Restaurants.Single)
	}

	// ── Menu ───────────────────────────────────────────────────────
	menu := api.Group("/menu", auth)
	{
		menu.POST("", h.Menus.Add)
		menu.PUT("/:id", h.Menus.Edit)
	}

	// ── Order ──────────────────────────────────────────────────────
	order := api.Group("/order")
	{
		order.GET("", auth, h.Orders.List)
		order.POST("/checkout/create-checkout-session", auth, h.Orders.CreateCheckoutSession)
		// called by the payment provider, verified by signature
		order.POST("/webhook", h.Orders.Webhook)
		order.GET("/statuses", h.Orders.Statuses)
	}
}
