package bookings

import (
	"buslink/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(router *gin.RouterGroup, controller Controller) {
	// Public route - seat availability is browsable without an account
	router.GET("/schedules/:scheduleId/seats", controller.GetSeatAvailability) // GET /api/v1/schedules/:scheduleId/seats?date=YYYY-MM-DD

	// Passenger routes - authenticated users manage their own bookings
	userBookings := router.Group("/bookings")
	userBookings.Use(middleware.JWTAuth())
	{
		userBookings.POST("", controller.CreateBooking)                      // POST /api/v1/bookings - Reserve seats
		userBookings.GET("/mine", controller.GetMyBookings)                  // GET /api/v1/bookings/mine - Own bookings
		userBookings.GET("/:bookingId", controller.GetBooking)               // GET /api/v1/bookings/:bookingId - Booking details
		userBookings.DELETE("/:bookingId", controller.CancelBooking)         // DELETE /api/v1/bookings/:bookingId - Cancel booking
		userBookings.POST("/:bookingId/payment", controller.ProcessPayment)  // POST /api/v1/bookings/:bookingId/payment - Pay for booking
	}

	// Admin routes - full visibility over all bookings
	adminBookings := router.Group("/admin/bookings")
	adminBookings.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminBookings.GET("", controller.GetAllBookings)              // GET /api/v1/admin/bookings - All bookings
		adminBookings.GET("/:bookingId", controller.GetBooking)       // GET /api/v1/admin/bookings/:bookingId - Any booking
		adminBookings.DELETE("/:bookingId", controller.CancelBooking) // DELETE /api/v1/admin/bookings/:bookingId - Cancel any booking
	}
}
