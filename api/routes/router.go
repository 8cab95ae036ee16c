// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"buslink/internal/auth"
	"buslink/internal/bookings"
	"buslink/internal/notifications"
	"buslink/internal/pricing"
	"buslink/internal/schedules"
	"buslink/internal/shared/config"
	"buslink/internal/shared/database"
	"buslink/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config              *config.Config
	db                  *database.DB
	cacheService        cache.Service
	notificationService notifications.NotificationService

	// Shared across route groups for dependency injection
	userAdapter     *auth.UserServiceAdapter
	pricingService  pricing.Service
	scheduleService schedules.Service
	bookingService  bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notificationService notifications.NotificationService) *Router {
	r := &Router{
		config:              cfg,
		db:                  db,
		notificationService: notificationService,
	}

	if db.Redis != nil {
		r.cacheService = cache.NewService(db.Redis)
	}

	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Auth first so the user adapter is available to the others
		r.setupAuthRoutes(api)
		r.setupPricingRoutes(api)
		r.setupScheduleRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// BookingService exposes the wired booking service for background jobs.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "buslink-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "buslink-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	r.userAdapter = auth.NewUserServiceAdapter(authRepo)

	authRouter.SetupRoutes(rg)
}

// setupPricingRoutes configures route catalog and fare estimation routes
func (r *Router) setupPricingRoutes(rg *gin.RouterGroup) {
	pricingRepo := pricing.NewRepository(r.db.GetPostgreSQL())
	calculator := pricing.NewCalculator(pricing.ConfigFromApp(r.config.Pricing))
	pricingService := pricing.NewService(pricingRepo, calculator)

	if r.cacheService != nil {
		pricingService.SetCacheService(r.cacheService)
	}

	r.pricingService = pricingService

	pricingController := pricing.NewController(pricingService)
	pricing.SetupPricingRoutes(rg, pricingController)
}

// setupScheduleRoutes configures schedule management routes
func (r *Router) setupScheduleRoutes(rg *gin.RouterGroup) {
	scheduleRepo := schedules.NewRepository(r.db.GetPostgreSQL())
	scheduleService := schedules.NewService(scheduleRepo, r.pricingService, r.userAdapter)

	if r.cacheService != nil {
		scheduleService.SetCacheService(r.cacheService)
	}
	if r.notificationService != nil {
		scheduleService.SetNotificationService(r.notificationService)
	}

	r.scheduleService = scheduleService

	scheduleController := schedules.NewController(scheduleService)
	schedules.SetupScheduleRoutes(rg, scheduleController)
}

// setupBookingRoutes configures booking and seat availability routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo, r.scheduleService, r.pricingService, r.userAdapter)

	if r.cacheService != nil {
		bookingService.SetCacheService(r.cacheService)
	}
	if r.notificationService != nil {
		bookingService.SetNotificationService(r.notificationService)
	}

	r.bookingService = bookingService

	bookingController := bookings.NewController(bookingService)
	bookings.SetupBookingRoutes(rg, bookingController)
}
