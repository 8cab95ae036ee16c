package schedules

import (
	"time"

	"github.com/google/uuid"
)

// BusType enumerates the supported bus classes. The pricing engine maps
// every class to a fare multiplier; classes it does not recognize price
// neutrally.
var validBusTypes = map[string]struct{}{
	"Normal":      {},
	"Express":     {},
	"Semi-Luxury": {},
	"Luxury":      {},
	"Intercity":   {},
}

func IsValidBusType(busType string) bool {
	_, ok := validBusTypes[busType]
	return ok
}

// Schedule is one recurring daily departure on an origin/destination pair.
// Passengers pick the journey date at booking time; the schedule itself
// only fixes the departure and arrival clock times.
type Schedule struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Origin      string    `json:"origin" gorm:"not null;size:100;index:idx_schedules_pair"`
	Destination string    `json:"destination" gorm:"not null;size:100;index:idx_schedules_pair"`
	StartTime   string    `json:"start_time" gorm:"not null;size:5"` // HH:MM, 24h
	EndTime     string    `json:"end_time" gorm:"not null;size:5"`
	BusType     string    `json:"bus_type" gorm:"not null;size:20;default:'Normal';index"`

	Status   ScheduleStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	IsActive bool           `json:"is_active" gorm:"default:true;index"`

	// Optional link into the route catalog, resolved best-effort at
	// creation time. Schedules without a link fall back to flat fares.
	RouteID *uuid.UUID `json:"route_id,omitempty" gorm:"type:uuid"`

	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatorRole string    `json:"creator_role" gorm:"size:20;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsBookable reports whether passengers may book seats on this schedule.
func (s *Schedule) IsBookable() bool {
	return s.IsActive && s.Status == StatusApproved
}
