package bookings

import (
	"time"

	"buslink/internal/pricing"
	"buslink/internal/seats"
)

type BookingConfirmationResponse struct {
	BookingID     string    `json:"booking_id"`
	BookingRef    string    `json:"booking_ref"`
	Status        string    `json:"status"`
	JourneyDate   string    `json:"journey_date"`
	Seats         []string  `json:"seats"`
	PricePerSeat  float64   `json:"price_per_seat"`
	TotalAmount   float64   `json:"total_amount"`
	Currency      string    `json:"currency"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type SeatAvailabilityResponse struct {
	ScheduleID     string                 `json:"schedule_id"`
	JourneyDate    string                 `json:"journey_date"`
	BusType        string                 `json:"bus_type"`
	SeatMap        []seats.SeatInfo       `json:"seat_map"`
	BookedSeats    []string               `json:"booked_seats"`
	TotalSeats     int                    `json:"total_seats"`
	AvailableSeats int                    `json:"available_seats"`
	Fare           *pricing.PricingResult `json:"fare,omitempty"`
	LegacyFare     bool                   `json:"legacy_fare,omitempty"`
}
