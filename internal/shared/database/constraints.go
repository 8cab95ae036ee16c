package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the indexes AutoMigrate cannot express. The two
// partial unique indexes are the storage-level safety net for the booking
// race and the one-active-route rule: application-level conflict checks are
// advisory, these make the losing writer fail.
func MigrateConstraints(db *gorm.DB) error {
	// A seat on a given schedule and journey day may belong to at most one
	// live booking. Cancellation flips active to false, which releases the
	// seat without deleting history.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_seat_per_journey
		ON booking_seats (schedule_id, seat_number, journey_day)
		WHERE active;
	`).Error
	if err != nil {
		return err
	}

	// At most one active route per (origin, destination) pair.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_route_pair
		ON routes (origin, destination)
		WHERE is_active;
	`).Error
	if err != nil {
		return err
	}

	// Booked-seat lookups always filter by schedule and journey day.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_booking_seats_schedule_day
		ON booking_seats (schedule_id, journey_day);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
