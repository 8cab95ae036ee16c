package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"buslink/internal/pricing"
	"buslink/internal/schedules"
	"buslink/internal/seats"
	"buslink/internal/shared/constants"
	"buslink/internal/users"
	"buslink/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleService is the slice of the schedules package bookings depend on.
type ScheduleService interface {
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*schedules.Schedule, error)
}

// PricingService quotes fares for a journey; LegacyQuote covers schedules
// with no matching route record.
type PricingService interface {
	EstimatePrice(ctx context.Context, params pricing.EstimateParams) (*pricing.PricingResult, error)
	LegacyQuote(busType string, seatCount int) *pricing.PricingResult
}

// UserService fetches contact details for notification delivery.
type UserService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (email, name string, err error)
}

// NotificationService publishes booking lifecycle events
// (a local interface to avoid a dependency on the notifications package).
type NotificationService interface {
	SendBookingNotification(ctx context.Context, userID uuid.UUID, email, name string,
		bookingID uuid.UUID, notificationType string, templateData map[string]interface{}) error
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, passengerID uuid.UUID, req CreateBookingRequest) (*BookingConfirmationResponse, error)
	GetSeatAvailability(ctx context.Context, scheduleID uuid.UUID, journeyDate string) (*SeatAvailabilityResponse, error)
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID, role users.Role) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID, role users.Role) error
	ProcessPayment(ctx context.Context, bookingID, userID uuid.UUID, req PaymentRequest) (*Booking, error)
	CompleteDepartedJourneys(ctx context.Context) (int64, error)

	SetCacheService(cacheService cache.Service)
	SetNotificationService(notificationService NotificationService)
}

type service struct {
	repo                Repository
	scheduleService     ScheduleService
	pricingService      PricingService
	userService         UserService
	cacheService        cache.Service
	notificationService NotificationService
}

func NewService(repo Repository, scheduleService ScheduleService, pricingService PricingService, userService UserService) Service {
	return &service{
		repo:            repo,
		scheduleService: scheduleService,
		pricingService:  pricingService,
		userService:     userService,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetNotificationService(notificationService NotificationService) {
	s.notificationService = notificationService
}

// CreateBooking reserves seats on a schedule for one journey day. The
// fare is computed and frozen here; the database constraint is the final
// arbiter when two passengers race for the same seat.
func (s *service) CreateBooking(ctx context.Context, passengerID uuid.UUID, req CreateBookingRequest) (*BookingConfirmationResponse, error) {
	journeyDate, err := time.ParseInLocation("2006-01-02", req.JourneyDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid journey date %q: expected YYYY-MM-DD", req.JourneyDate)
	}
	journeyDay := JourneyDayOf(journeyDate)
	if journeyDay.Before(JourneyDayOf(time.Now())) {
		return nil, ErrJourneyInPast
	}

	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule ID: %w", err)
	}

	schedule, err := s.scheduleService.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !schedule.IsBookable() {
		return nil, ErrScheduleNotBookable
	}

	// One booking uses one seat scheme: the standard letter-row layout or
	// the numeric labels of older schedules.
	if seats.IsLegacySelection(req.SeatNumbers) {
		err = seats.ValidateLegacySelection(req.SeatNumbers, schedule.BusType)
	} else {
		err = seats.ValidateSelection(req.SeatNumbers)
	}
	if err != nil {
		return nil, err
	}

	quote, legacyFare, err := s.quoteFare(ctx, schedule, journeyDay, len(req.SeatNumbers))
	if err != nil {
		return nil, err
	}

	// Fast-path conflict check before paying the insert cost. The unique
	// index still backstops races that slip past this read.
	booked, err := s.repo.GetBookedSeats(ctx, scheduleID, journeyDay)
	if err != nil {
		return nil, fmt.Errorf("failed to check seat availability: %w", err)
	}
	if conflicts := seats.Conflicts(req.SeatNumbers, booked); len(conflicts) > 0 {
		return nil, &SeatConflictError{Seats: conflicts}
	}

	bookingRef, err := generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	seatRows := make([]BookingSeat, 0, len(req.SeatNumbers))
	for _, seatNumber := range req.SeatNumbers {
		seatRows = append(seatRows, BookingSeat{
			ScheduleID: scheduleID,
			SeatNumber: seatNumber,
			JourneyDay: journeyDay,
			Active:     true,
		})
	}

	booking := &Booking{
		BookingRef:    bookingRef,
		PassengerID:   passengerID,
		ScheduleID:    scheduleID,
		JourneyDate:   journeyDate,
		JourneyDay:    journeyDay,
		TotalSeats:    len(req.SeatNumbers),
		Status:        StatusPending,
		PricePerSeat:  quote.PricePerSeat,
		TotalAmount:   quote.TotalPrice,
		Currency:      quote.Currency,
		LegacyFare:    legacyFare,
		PaymentStatus: PaymentPending,
		Seats:         seatRows,
	}

	if err := s.repo.CreateBookingAtomic(ctx, booking); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; report which seats were taken meanwhile.
			return nil, s.conflictAfterRace(ctx, scheduleID, journeyDay, req.SeatNumbers)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.invalidateAvailabilityCache(ctx, scheduleID, journeyDay)
	s.notifyBookingEvent(ctx, booking, "BOOKING_CREATED", map[string]interface{}{
		"origin":       schedule.Origin,
		"destination":  schedule.Destination,
		"start_time":   schedule.StartTime,
		"journey_date": req.JourneyDate,
		"seats":        strings.Join(req.SeatNumbers, ", "),
		"total_amount": booking.TotalAmount,
		"currency":     booking.Currency,
	})

	log.Printf("Booking created: %s (%d seats on schedule %s)", bookingRef, booking.TotalSeats, scheduleID)

	return &BookingConfirmationResponse{
		BookingID:     booking.ID.String(),
		BookingRef:    booking.BookingRef,
		Status:        string(booking.Status),
		JourneyDate:   req.JourneyDate,
		Seats:         req.SeatNumbers,
		PricePerSeat:  booking.PricePerSeat,
		TotalAmount:   booking.TotalAmount,
		Currency:      booking.Currency,
		PaymentStatus: string(booking.PaymentStatus),
		CreatedAt:     booking.CreatedAt,
	}, nil
}

// quoteFare prices the journey through the route catalog, falling back to
// the flat legacy fare when no route matches the schedule's pair.
func (s *service) quoteFare(ctx context.Context, schedule *schedules.Schedule, journeyDay time.Time, seatCount int) (*pricing.PricingResult, bool, error) {
	journey := journeyDay
	if dep, err := time.Parse("15:04", schedule.StartTime); err == nil {
		journey = journeyDay.Add(time.Duration(dep.Hour())*time.Hour + time.Duration(dep.Minute())*time.Minute)
	}

	quote, err := s.pricingService.EstimatePrice(ctx, pricing.EstimateParams{
		Origin:      schedule.Origin,
		Destination: schedule.Destination,
		BusType:     schedule.BusType,
		Journey:     journey,
		SeatCount:   seatCount,
	})
	if err == nil {
		return quote, false, nil
	}
	if errors.Is(err, pricing.ErrRouteNotFound) {
		return s.pricingService.LegacyQuote(schedule.BusType, seatCount), true, nil
	}
	return nil, false, fmt.Errorf("failed to price booking: %w", err)
}

func (s *service) conflictAfterRace(ctx context.Context, scheduleID uuid.UUID, journeyDay time.Time, requested []string) error {
	booked, err := s.repo.GetBookedSeats(ctx, scheduleID, journeyDay)
	if err == nil {
		if conflicts := seats.Conflicts(requested, booked); len(conflicts) > 0 {
			return &SeatConflictError{Seats: conflicts}
		}
	}
	return &SeatConflictError{Seats: requested}
}

// GetSeatAvailability resolves the live seat map for one schedule and
// journey day, with a short cache so bursts of lookups before popular
// departures do not hammer the database.
func (s *service) GetSeatAvailability(ctx context.Context, scheduleID uuid.UUID, journeyDate string) (*SeatAvailabilityResponse, error) {
	parsed, err := time.ParseInLocation("2006-01-02", journeyDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid journey date %q: expected YYYY-MM-DD", journeyDate)
	}
	journeyDay := JourneyDayOf(parsed)

	cacheKey := constants.BuildSeatAvailabilityKey(scheduleID.String(), journeyDay.Format("2006-01-02"))
	var cached SeatAvailabilityResponse
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	schedule, err := s.scheduleService.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	booked, err := s.repo.GetBookedSeats(ctx, scheduleID, journeyDay)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked seats: %w", err)
	}

	var seatMap []seats.SeatInfo
	if seats.IsLegacySelection(booked) {
		seatMap = seats.GenerateLegacySeatMap(schedule.BusType, booked)
	} else {
		seatMap = seats.GenerateSeatMap(booked)
	}

	availability := &SeatAvailabilityResponse{
		ScheduleID:     scheduleID.String(),
		JourneyDate:    journeyDay.Format("2006-01-02"),
		BusType:        schedule.BusType,
		SeatMap:        seatMap,
		BookedSeats:    booked,
		TotalSeats:     len(seatMap),
		AvailableSeats: len(seatMap) - len(booked),
	}

	// Quote the single-seat fare alongside the map so clients can render
	// price without a second round trip.
	if quote, legacyFare, err := s.quoteFare(ctx, schedule, journeyDay, 1); err == nil {
		availability.Fare = quote
		availability.LegacyFare = legacyFare
	}

	if err := s.setCache(ctx, cacheKey, availability, constants.TTL_SEAT_AVAILABILITY); err != nil {
		log.Printf("Warning: failed to cache seat availability: %v", err)
	}

	return availability, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, userID uuid.UUID, role users.Role) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if role != users.RoleAdmin && booking.PassengerID != userID {
		return nil, ErrNotBookingOwner
	}
	return booking, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetUserBookings(ctx, userID, query)
}

func (s *service) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetAllBookings(ctx, query)
}

// CancelBooking frees the booking's seats. Cancellation must happen
// before the journey day: same-day and past journeys stay booked.
func (s *service) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID, role users.Role) error {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if role != users.RoleAdmin && booking.PassengerID != userID {
		return ErrNotBookingOwner
	}
	switch booking.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrBookingCompleted
	}
	if !booking.JourneyDay.After(JourneyDayOf(time.Now())) {
		return ErrPastJourney
	}

	paymentStatus := booking.PaymentStatus
	if paymentStatus == PaymentPaid {
		paymentStatus = PaymentRefunded
	}

	if err := s.repo.CancelBooking(ctx, bookingID, paymentStatus); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.invalidateAvailabilityCache(ctx, booking.ScheduleID, booking.JourneyDay)
	s.notifyBookingEvent(ctx, booking, "BOOKING_CANCELLED", map[string]interface{}{
		"booking_ref":  booking.BookingRef,
		"journey_date": booking.JourneyDay.Format("2006-01-02"),
		"seats":        strings.Join(booking.SeatNumbers(), ", "),
		"refunded":     paymentStatus == PaymentRefunded,
	})

	log.Printf("Booking cancelled: %s (%d seats released)", booking.BookingRef, booking.TotalSeats)
	return nil
}

// ProcessPayment settles a pending booking through the mock gateway and
// confirms it.
func (s *service) ProcessPayment(ctx context.Context, bookingID, userID uuid.UUID, req PaymentRequest) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.PassengerID != userID {
		return nil, ErrNotBookingOwner
	}
	if booking.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if booking.PaymentStatus == PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if req.Amount != booking.TotalAmount {
		return nil, fmt.Errorf("%w: expected %.2f %s", ErrAmountMismatch, booking.TotalAmount, booking.Currency)
	}

	transactionID := generateTransactionID()
	if err := s.repo.MarkPaid(ctx, bookingID, transactionID); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	booking.Status = StatusConfirmed
	booking.PaymentStatus = PaymentPaid
	booking.TransactionID = transactionID

	s.notifyBookingEvent(ctx, booking, "BOOKING_CONFIRMED", map[string]interface{}{
		"booking_ref":    booking.BookingRef,
		"transaction_id": transactionID,
		"amount":         booking.TotalAmount,
		"currency":       booking.Currency,
	})

	log.Printf("Payment processed for booking %s (%s)", booking.BookingRef, transactionID)
	return booking, nil
}

// CompleteDepartedJourneys sweeps confirmed bookings whose journey day is
// behind us into COMPLETED. Run periodically from the server.
func (s *service) CompleteDepartedJourneys(ctx context.Context) (int64, error) {
	return s.repo.CompleteDeparted(ctx, JourneyDayOf(time.Now()))
}

// notifyBookingEvent delivers a lifecycle notification best-effort.
func (s *service) notifyBookingEvent(ctx context.Context, booking *Booking, notificationType string, templateData map[string]interface{}) {
	if s.notificationService == nil || s.userService == nil {
		return
	}

	email, name, err := s.userService.GetUserByID(ctx, booking.PassengerID)
	if err != nil {
		log.Printf("Warning: could not resolve passenger %s: %v", booking.PassengerID, err)
		return
	}

	if err := s.notificationService.SendBookingNotification(ctx, booking.PassengerID, email, name,
		booking.ID, notificationType, templateData); err != nil {
		log.Printf("Warning: failed to send %s notification: %v", notificationType, err)
	}
}

func (s *service) invalidateAvailabilityCache(ctx context.Context, scheduleID uuid.UUID, journeyDay time.Time) {
	if s.cacheService == nil {
		return
	}
	key := constants.BuildSeatAvailabilityKey(scheduleID.String(), journeyDay.Format("2006-01-02"))
	if err := s.cacheService.Delete(ctx, key); err != nil {
		log.Printf("Warning: failed to invalidate seat availability cache: %v", err)
	}
}

// Cache helper methods

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.cacheService == nil {
		return nil
	}
	return s.cacheService.Set(ctx, key, value, ttl)
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) error {
	if s.cacheService == nil {
		return fmt.Errorf("cache service not available")
	}
	return s.cacheService.Get(ctx, key, dest)
}

// generateBookingReference builds a human-readable unique reference.
func generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("BUS-%s-%s", timestamp, string(randomPart)), nil
}

// generateTransactionID generates a mock gateway transaction ID.
func generateTransactionID() string {
	shortUUID := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("TXN_%d_%s", time.Now().Unix(), strings.ToUpper(shortUUID))
}
