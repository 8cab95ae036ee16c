package database

import (
	"buslink/internal/bookings"
	"buslink/internal/pricing"
	"buslink/internal/schedules"
	"buslink/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&pricing.Route{},
		&schedules.Schedule{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
	)
}
