package routes

import (
	"time"

	"jamb/handlers"
	"jamb/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCatalogRoutes registers the public catalog, materials and pricing endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/sections", hb.Catalog.ListSections)
		api.GET("/sections/:section/categories", hb.Catalog.ListCategories)
		api.GET("/services", hb.Catalog.ListServices)
		api.GET("/services/search", hb.Catalog.SearchServices)
		api.GET("/services/:id", hb.Catalog.GetService)
		api.GET("/works/:code/finishing-materials", hb.Materials.GetFinishingMaterials)

		api.POST("/calculate", hb.Estimate.Calculate)
		api.POST("/estimate", hb.Estimate.Estimate)
		api.GET("/calendar", hb.Estimate.Calendar)
	}
}

// RegisterUserRoutes registers user endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.Users.Register)
		api.POST("/login", hb.Users.Login)

		// Protected routes (Require Authentication)
		protected := api.Group("")
		protected.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
		protected.POST("/logout", hb.Users.Logout)
		protected.GET("/me", hb.Users.GetProfile)
		protected.PATCH("/me", hb.Users.UpdateProfile)
		protected.PUT("/me/password", hb.Users.ChangePassword)
		protected.DELETE("/me", hb.Users.DeleteAccount)
	}
}

// RegisterOrderRoutes registers composite order endpoints and photo uploads.
func RegisterOrderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
	{
		api.POST("/orders", hb.Orders.PlaceOrder)
		api.GET("/orders", hb.Orders.ListOrders)
		api.GET("/orders/:id", hb.Orders.GetOrder)
		api.PUT("/orders/:id/date", hb.Orders.ChangeDate)
		api.POST("/orders/:id/cancel", hb.Orders.CancelOrder)

		api.POST("/uploads/photos", hb.Uploads.UploadPhotos)
	}
}

// RegisterAIRoutes registers recommendation endpoints. Text, PDF and voice are public;
// photos and chat are tied to an account.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/recommendations")
	{
		api.POST("/text", hb.Recommendations.FromText)
		api.POST("/pdf", hb.Recommendations.FromPDF)
		api.POST("/voice", hb.Recommendations.FromVoice)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthUserMiddleware(hb.Auth))
		protected.POST("/photos", hb.Recommendations.FromPhotos)
		protected.POST("/chat", hb.Recommendations.Chat)
		protected.DELETE("/chat", hb.Recommendations.ResetChat)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminAuthMiddleware(hb.AdminKey))
		adminGroup.PUT("/categories", hb.Admin.UpsertCategory)
		adminGroup.PUT("/services", hb.Admin.UpsertService)
		adminGroup.PUT("/orders/:id/status", hb.Orders.UpdateStatus)
		adminGroup.POST("/imports", hb.Admin.TriggerImport)
		adminGroup.GET("/imports/last", hb.Admin.LastImport)
	}
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/metrics", handlers.MetricsHandler())
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Admin-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterCatalogRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterOrderRoutes(r, hb)
	RegisterAIRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
