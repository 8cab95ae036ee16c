package bookings

type CreateBookingRequest struct {
	ScheduleID  string   `json:"schedule_id" binding:"required,uuid"`
	JourneyDate string   `json:"journey_date" binding:"required"` // YYYY-MM-DD
	SeatNumbers []string `json:"seat_numbers" binding:"required,min=1,max=10"`
}

type PaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
}
