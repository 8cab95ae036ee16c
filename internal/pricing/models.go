package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BusTypeMultipliers maps a bus-class name to a route-specific multiplier
// that overrides the global default table. Stored as JSONB.
type BusTypeMultipliers map[string]float64

func (m BusTypeMultipliers) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *BusTypeMultipliers) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for bus type multipliers: %T", value)
	}
	return json.Unmarshal(data, m)
}

// Route defines a catalogued origin-destination pair with its pricing rules.
// Origin and destination are stored uppercase; a partial unique index keeps
// at most one active route per pair.
type Route struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Origin         string    `json:"origin" gorm:"not null;index:idx_routes_pair"`
	Destination    string    `json:"destination" gorm:"not null;index:idx_routes_pair"`
	DistanceKm     float64   `json:"distance_km" gorm:"not null;check:distance_km > 0"`
	BasePricePerKm float64   `json:"base_price_per_km" gorm:"not null;default:8.0;check:base_price_per_km >= 0"`
	RouteCode      string    `json:"route_code" gorm:"uniqueIndex;not null"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	Description    string    `json:"description"`

	// Informational per-route defaults; the resolver applies the global
	// values, these document what the route was configured with.
	PeakHourMultiplier float64 `json:"peak_hour_multiplier" gorm:"default:1.2"`
	WeekendMultiplier  float64 `json:"weekend_multiplier" gorm:"default:1.1"`
	HolidayMultiplier  float64 `json:"holiday_multiplier" gorm:"default:1.3"`

	// Route-specific overrides of the global bus-type table.
	BusTypeMultipliers BusTypeMultipliers `json:"bus_type_multipliers" gorm:"type:jsonb"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Route) TableName() string {
	return "routes"
}

// BasePrice is the undiscounted per-seat fare for the full route, rounded
// half-up to whole currency units.
func (r *Route) BasePrice() float64 {
	return roundHalfUp(r.DistanceKm * r.BasePricePerKm)
}

// NormalizeLocation uppercases and trims a location name so lookups are
// case-insensitive exact matches.
func NormalizeLocation(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MakeRouteCode derives the unique route code from the normalized pair.
func MakeRouteCode(origin, destination string) string {
	code := NormalizeLocation(origin) + "-" + NormalizeLocation(destination)
	return strings.ReplaceAll(code, " ", "")
}
