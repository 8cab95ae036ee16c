package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one passenger's reservation of seats on a schedule for a
// single journey day. Pricing fields are snapshots taken at booking time;
// later route or multiplier changes never reprice an existing booking.
type Booking struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingRef  string    `gorm:"unique;not null" json:"booking_ref"`
	PassengerID uuid.UUID `gorm:"type:uuid;index;not null" json:"passenger_id"`
	ScheduleID  uuid.UUID `gorm:"type:uuid;index;not null" json:"schedule_id"`

	// JourneyDay is JourneyDate truncated to local midnight; the seat
	// uniqueness constraint keys on it.
	JourneyDate time.Time `gorm:"not null" json:"journey_date"`
	JourneyDay  time.Time `gorm:"not null;index" json:"journey_day"`

	TotalSeats int    `gorm:"not null;check:total_seats > 0" json:"total_seats"`
	Status     Status `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`

	// Fare snapshot
	PricePerSeat float64 `gorm:"not null" json:"price_per_seat"`
	TotalAmount  float64 `gorm:"not null" json:"total_amount"`
	Currency     string  `gorm:"type:varchar(3);default:'LKR'" json:"currency"`
	LegacyFare   bool    `gorm:"default:false" json:"legacy_fare"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"payment_status"`
	TransactionID string        `gorm:"size:64" json:"transaction_id,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Seats []BookingSeat `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;" json:"seats,omitempty"`
}

// BookingSeat is one held seat. ScheduleID, JourneyDay and Active are
// denormalized from the parent booking so that the partial unique index
// on (schedule_id, seat_number, journey_day) WHERE active can enforce
// one live holder per seat per departure day at the database level.
type BookingSeat struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID  uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	ScheduleID uuid.UUID `gorm:"type:uuid;not null" json:"schedule_id"`
	SeatNumber string    `gorm:"size:4;not null" json:"seat_number"`
	JourneyDay time.Time `gorm:"not null" json:"journey_day"`
	Active     bool      `gorm:"default:true" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (BookingSeat) TableName() string {
	return "booking_seats"
}

// SeatNumbers lists the seat labels of a booking in insertion order.
func (b *Booking) SeatNumbers() []string {
	numbers := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		numbers = append(numbers, s.SeatNumber)
	}
	return numbers
}

// JourneyDayOf truncates a journey timestamp to local midnight.
func JourneyDayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
