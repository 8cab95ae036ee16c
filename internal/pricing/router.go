package pricing

import (
	"buslink/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPricingRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can quote fares and browse the route catalog
	publicPricing := router.Group("/pricing")
	{
		publicPricing.POST("/estimate", controller.EstimatePrice)      // POST /api/v1/pricing/estimate - Quote a single fare
		publicPricing.POST("/estimate/bulk", controller.BulkEstimate)  // POST /api/v1/pricing/estimate/bulk - Quote multiple fares
	}

	publicRoutes := router.Group("/routes")
	{
		publicRoutes.GET("", controller.GetRoutes)          // GET /api/v1/routes - Browse route catalog
		publicRoutes.GET("/:routeId", controller.GetRoute)  // GET /api/v1/routes/:routeId - Route details
	}

	// Admin routes - only admins manage the route catalog
	adminRoutes := router.Group("/admin/routes")
	adminRoutes.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminRoutes.POST("", controller.CreateRoute)                      // POST /api/v1/admin/routes - Create route
		adminRoutes.PATCH("/:routeId", controller.UpdateRoutePricing)     // PATCH /api/v1/admin/routes/:routeId - Update pricing inputs
		adminRoutes.DELETE("/:routeId", controller.DeactivateRoute)       // DELETE /api/v1/admin/routes/:routeId - Deactivate route
	}
}
