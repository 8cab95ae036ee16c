package schedules

import (
	"buslink/internal/shared/middleware"
	"buslink/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupScheduleRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse approved departures
	publicSchedules := router.Group("/schedules")
	{
		publicSchedules.GET("", controller.GetSchedules)               // GET /api/v1/schedules - Browse schedules
		publicSchedules.GET("/:scheduleId", controller.GetSchedule)    // GET /api/v1/schedules/:scheduleId - Schedule details
	}

	// Driver routes - drivers submit and manage their own schedules
	driverSchedules := router.Group("/driver/schedules")
	driverSchedules.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleDriver), string(users.RoleAdmin)))
	{
		driverSchedules.POST("", controller.CreateSchedule)                 // POST /api/v1/driver/schedules - Submit schedule
		driverSchedules.GET("/mine", controller.GetMySchedules)            // GET /api/v1/driver/schedules/mine - Own schedules
		driverSchedules.PATCH("/:scheduleId", controller.UpdateSchedule)   // PATCH /api/v1/driver/schedules/:scheduleId - Edit schedule
		driverSchedules.DELETE("/:scheduleId", controller.DeleteSchedule)  // DELETE /api/v1/driver/schedules/:scheduleId - Remove schedule
	}

	// Admin routes - review workflow and full visibility
	adminSchedules := router.Group("/admin/schedules")
	adminSchedules.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminSchedules.GET("", controller.GetSchedules)                             // GET /api/v1/admin/schedules - All schedules incl. pending
		adminSchedules.POST("", controller.CreateSchedule)                          // POST /api/v1/admin/schedules - Create approved schedule
		adminSchedules.PATCH("/:scheduleId", controller.UpdateSchedule)             // PATCH /api/v1/admin/schedules/:scheduleId - Edit any schedule
		adminSchedules.DELETE("/:scheduleId", controller.DeleteSchedule)            // DELETE /api/v1/admin/schedules/:scheduleId - Remove any schedule
		adminSchedules.POST("/:scheduleId/approve", controller.ApproveSchedule)     // POST /api/v1/admin/schedules/:scheduleId/approve - Approve pending
		adminSchedules.POST("/:scheduleId/reject", controller.RejectSchedule)       // POST /api/v1/admin/schedules/:scheduleId/reject - Reject pending
	}
}
