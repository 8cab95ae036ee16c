package bookings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrScheduleNotBookable = errors.New("schedule is not open for booking")
	ErrNotBookingOwner     = errors.New("you can only access your own bookings")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrBookingCompleted    = errors.New("completed bookings cannot be cancelled")
	ErrPastJourney         = errors.New("bookings for today or past journeys cannot be cancelled")
	ErrJourneyInPast       = errors.New("journey date must not be in the past")
	ErrAlreadyPaid         = errors.New("booking is already paid")
	ErrAmountMismatch      = errors.New("payment amount does not match booking total")
)

// SeatConflictError reports which requested seats are already taken. It is
// returned both by the pre-check and by the race fallback when the
// database constraint fires.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}
