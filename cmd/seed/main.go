package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"buslink/internal/pricing"
	"buslink/internal/schedules"
	"buslink/internal/shared/config"
	"buslink/internal/shared/database"
	"buslink/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting BusLink Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"booking_seats",
		"bookings",
		"schedules",
		"routes",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedRoutes(userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed routes: %w", err)
	}

	if err := s.SeedSchedules(userIDs["admin"], userIDs["driver"]); err != nil {
		return fmt.Errorf("failed to seed schedules: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates the admin plus a driver and two passengers. Admins are
// only ever created here, self-registration never grants the role.
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key      string
		fullName string
		email    string
		phone    string
		role     users.Role
	}{
		{"admin", "Admin User", "admin@buslink.lk", "+94770000001", users.RoleAdmin},
		{"driver", "Sunil Perera", "sunil.driver@buslink.lk", "+94770000002", users.RoleDriver},
		{"passenger1", "Nimal Silva", "nimal@gmail.com", "+94770000003", users.RolePassenger},
		{"passenger2", "Kamala Fernando", "kamala@gmail.com", "+94770000004", users.RolePassenger},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FullName:  userData.fullName,
			Email:     userData.email,
			Phone:     userData.phone,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedRoutes creates the initial route catalog
func (s *Seeder) SeedRoutes(adminID uuid.UUID) error {
	fmt.Println("  🛣️  Seeding routes...")

	routesData := []struct {
		origin      string
		destination string
		distanceKm  float64
		perKm       float64
		description string
	}{
		{"Colombo", "Kandy", 115, 8.0, "Main hill country route via Kegalle"},
		{"Kandy", "Colombo", 115, 8.0, "Return leg of the hill country route"},
		{"Colombo", "Galle", 119, 8.0, "Southern expressway corridor"},
		{"Colombo", "Jaffna", 398, 7.5, "Northern long-distance service"},
		{"Galle", "Matara", 45, 8.5, "Coastal short hop"},
	}

	for _, routeData := range routesData {
		route := pricing.Route{
			ID:             uuid.New(),
			Origin:         pricing.NormalizeLocation(routeData.origin),
			Destination:    pricing.NormalizeLocation(routeData.destination),
			DistanceKm:     routeData.distanceKm,
			BasePricePerKm: routeData.perKm,
			RouteCode:      pricing.MakeRouteCode(routeData.origin, routeData.destination),
			IsActive:       true,
			Description:    routeData.description,

			PeakHourMultiplier: 1.2,
			WeekendMultiplier:  1.1,
			HolidayMultiplier:  1.3,

			CreatedBy: adminID,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&route).Error; err != nil {
			return fmt.Errorf("failed to create route %s: %w", route.RouteCode, err)
		}

		fmt.Printf("    ✅ Created route: %s (%.0f km)\n", route.RouteCode, route.DistanceKm)
	}

	return nil
}

// SeedSchedules creates a few approved schedules on the seeded routes
func (s *Seeder) SeedSchedules(adminID, driverID uuid.UUID) error {
	fmt.Println("  🚌 Seeding schedules...")

	routeIDByCode := make(map[string]uuid.UUID)
	var routes []pricing.Route
	if err := s.db.PostgreSQL.Find(&routes).Error; err != nil {
		return fmt.Errorf("failed to load routes: %w", err)
	}
	for _, route := range routes {
		routeIDByCode[route.RouteCode] = route.ID
	}

	schedulesData := []struct {
		origin      string
		destination string
		startTime   string
		endTime     string
		busType     string
		status      schedules.ScheduleStatus
		createdBy   uuid.UUID
		creatorRole string
	}{
		{"COLOMBO", "KANDY", "06:30", "09:45", "Luxury", schedules.StatusApproved, adminID, string(users.RoleAdmin)},
		{"COLOMBO", "KANDY", "14:00", "17:15", "Normal", schedules.StatusApproved, adminID, string(users.RoleAdmin)},
		{"KANDY", "COLOMBO", "07:00", "10:15", "Express", schedules.StatusApproved, adminID, string(users.RoleAdmin)},
		{"COLOMBO", "GALLE", "08:00", "10:00", "Intercity", schedules.StatusApproved, adminID, string(users.RoleAdmin)},
		{"GALLE", "MATARA", "09:30", "10:30", "Semi-Luxury", schedules.StatusPending, driverID, string(users.RoleDriver)},
	}

	for _, scheduleData := range schedulesData {
		schedule := schedules.Schedule{
			ID:          uuid.New(),
			Origin:      scheduleData.origin,
			Destination: scheduleData.destination,
			StartTime:   scheduleData.startTime,
			EndTime:     scheduleData.endTime,
			BusType:     scheduleData.busType,
			Status:      scheduleData.status,
			IsActive:    true,
			CreatedBy:   scheduleData.createdBy,
			CreatorRole: scheduleData.creatorRole,
		}

		if routeID, ok := routeIDByCode[scheduleData.origin+"-"+scheduleData.destination]; ok {
			schedule.RouteID = &routeID
		}

		if err := s.db.PostgreSQL.Create(&schedule).Error; err != nil {
			return fmt.Errorf("failed to create schedule %s-%s %s: %w",
				scheduleData.origin, scheduleData.destination, scheduleData.startTime, err)
		}

		fmt.Printf("    ✅ Created schedule: %s → %s at %s (%s, %s)\n",
			schedule.Origin, schedule.Destination, schedule.StartTime, schedule.BusType, schedule.Status)
	}

	return nil
}
