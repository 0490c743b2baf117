package routes

import (
	"foodhub-api/handlers"
	"foodhub-api/middleware"
	"foodhub-api/models"
	"foodhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handlers bundles everything SetupRoutes mounts
type Handlers struct {
	Auth     *handlers.AuthHandler
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Provider *handlers.ProviderHandler
	Customer *handlers.CustomerHandler
	Sessions middleware.SessionResolver
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		services.UseJSONFieldNames(v)
	}

	var (
		anyone   = middleware.Guard(h.Sessions)
		customer = middleware.Guard(h.Sessions, models.RoleCustomer)
		provider = middleware.Guard(h.Sessions, models.RoleProvider)
		admin    = middleware.Guard(h.Sessions, models.RoleAdmin)
	)

	api := r.Group("/api")

	// ── Auth ───────────────────────────────────────────────────────
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.GET("/verify-email", h.Auth.VerifyEmail)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	// ── Meals (browsing is public) ─────────────────────────────────
	meals := api.Group("/meals")
	{
		meals.GET("", h.Catalog.ListMeals)
		meals.GET("/:mealId", h.Catalog.GetMeal)
		meals.POST("", provider, h.Catalog.CreateMeal)
		meals.PUT("/:mealId", provider, h.Catalog.UpdateMeal)
		meals.DELETE("/:mealId", provider, h.Catalog.DeleteMeal)
	}

	categories := api.Group("/categories", admin)
	{
		categories.GET("", h.Catalog.ListCategories)
		categories.POST("", h.Catalog.CreateCategory)
		categories.PUT("/:id", h.Catalog.UpdateCategory)
		categories.DELETE("/:id", h.Catalog.DeleteCategory)
	}

	// ── Cart ───────────────────────────────────────────────────────
	cart := api.Group("/cart", customer)
	{
		cart.POST("", h.Cart.AddItem)
		cart.GET("", h.Cart.GetCart)
		cart.PATCH("/:itemId", h.Cart.UpdateQuantity)
		cart.DELETE("/:itemId", h.Cart.RemoveItem)
		cart.DELETE("", h.Cart.Clear)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := api.Group("/orders")
	{
		orders.GET("/state-machine", handlers.GetStateMachineInfo)

		orders.POST("", customer, h.Order.PlaceOrder)
		orders.GET("/customer/orders", customer, h.Order.GetMyOrders)
		orders.DELETE("/:id", customer, h.Order.CancelOrder)

		orders.GET("/provider/orders", provider, h.Order.GetProviderOrders)
		orders.GET("/provider/stats", provider, h.Order.GetProviderStats)
		orders.PATCH("/:id/payment-status", provider, h.Order.UpdatePaymentStatus)
		orders.PATCH("/:id/status", provider, h.Order.UpdateOrderStatus)

		orders.GET("/:id", middleware.Guard(h.Sessions, models.RoleCustomer, models.RoleProvider), h.Order.GetOrderDetail)
	}

	// ── Providers ──────────────────────────────────────────────────
	providers := api.Group("/providers")
	{
		providers.GET("", h.Provider.ListProviders)
		providers.GET("/:id", h.Provider.GetProvider)
		providers.POST("", provider, h.Provider.RegisterProvider)
		providers.PUT("", provider, h.Provider.UpdateProvider)
		providers.DELETE("/:id", middleware.Guard(h.Sessions, models.RoleProvider, models.RoleAdmin), h.Provider.DeleteProvider)
	}

	// ── Customers ──────────────────────────────────────────────────
	customers := api.Group("/customers")
	{
		customers.GET("", admin, h.Customer.ListUsers)
		customers.GET("/me", anyone, h.Customer.GetProfile)
		customers.PUT("/me", anyone, h.Customer.UpdateProfile)
		customers.DELETE("/:id", admin, h.Customer.DeleteUser)
	}
}
