package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"buslink/internal/pricing"
	"buslink/internal/schedules"
	"buslink/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeRepo enforces the same one-live-holder-per-seat rule the partial
// unique index provides, guarded by a mutex so concurrent create attempts
// exercise the race path.
type fakeRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
	seats    map[string]uuid.UUID // scheduleID|seat|day -> booking ID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings: make(map[uuid.UUID]*Booking),
		seats:    make(map[string]uuid.UUID),
	}
}

func seatKey(scheduleID uuid.UUID, seatNumber string, journeyDay time.Time) string {
	return fmt.Sprintf("%s|%s|%s", scheduleID, seatNumber, journeyDay.Format("2006-01-02"))
}

func (f *fakeRepo) CreateBookingAtomic(_ context.Context, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, seat := range booking.Seats {
		if _, taken := f.seats[seatKey(seat.ScheduleID, seat.SeatNumber, seat.JourneyDay)]; taken {
			return gorm.ErrDuplicatedKey
		}
	}

	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	for i := range booking.Seats {
		booking.Seats[i].BookingID = booking.ID
		f.seats[seatKey(booking.Seats[i].ScheduleID, booking.Seats[i].SeatNumber, booking.Seats[i].JourneyDay)] = booking.ID
	}
	stored := *booking
	f.bookings[booking.ID] = &stored
	return nil
}

func (f *fakeRepo) GetBookingByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeRepo) GetBookingByRef(_ context.Context, ref string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.BookingRef == ref {
			copied := *b
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetBookedSeats(_ context.Context, scheduleID uuid.UUID, journeyDay time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, b := range f.bookings {
		if b.ScheduleID != scheduleID || !b.JourneyDay.Equal(journeyDay) || !b.Status.CountsAgainstSeats() {
			continue
		}
		for _, seat := range b.Seats {
			if seat.Active {
				out = append(out, seat.SeatNumber)
			}
		}
	}
	return out, nil
}

func matchesListQuery(b *Booking, query BookingListQuery) bool {
	if query.Status != "" && b.Status != query.Status {
		return false
	}
	if query.PaymentStatus != "" && b.PaymentStatus != query.PaymentStatus {
		return false
	}
	if query.ScheduleID != nil && b.ScheduleID != *query.ScheduleID {
		return false
	}
	if query.From != nil && b.JourneyDay.Before(*query.From) {
		return false
	}
	if query.To != nil && b.JourneyDay.After(*query.To) {
		return false
	}
	return true
}

func (f *fakeRepo) GetUserBookings(_ context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.PassengerID == userID && matchesListQuery(b, query) {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) GetAllBookings(_ context.Context, query BookingListQuery) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if matchesListQuery(b, query) {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) CancelBooking(_ context.Context, id uuid.UUID, paymentStatus PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	booking.Status = StatusCancelled
	booking.PaymentStatus = paymentStatus
	booking.CancelledAt = &now
	for i := range booking.Seats {
		booking.Seats[i].Active = false
		delete(f.seats, seatKey(booking.Seats[i].ScheduleID, booking.Seats[i].SeatNumber, booking.Seats[i].JourneyDay))
	}
	return nil
}

func (f *fakeRepo) MarkPaid(_ context.Context, id uuid.UUID, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	booking.Status = StatusConfirmed
	booking.PaymentStatus = PaymentPaid
	booking.TransactionID = transactionID
	return nil
}

func (f *fakeRepo) CompleteDeparted(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, b := range f.bookings {
		if b.Status == StatusConfirmed && b.JourneyDay.Before(before) {
			b.Status = StatusCompleted
			for i := range b.Seats {
				b.Seats[i].Active = false
				delete(f.seats, seatKey(b.Seats[i].ScheduleID, b.Seats[i].SeatNumber, b.Seats[i].JourneyDay))
			}
			count++
		}
	}
	return count, nil
}

type fakeScheduleService struct {
	schedule *schedules.Schedule
}

func (f *fakeScheduleService) GetScheduleByID(_ context.Context, id uuid.UUID) (*schedules.Schedule, error) {
	if f.schedule == nil || f.schedule.ID != id {
		return nil, schedules.ErrScheduleNotFound
	}
	copied := *f.schedule
	return &copied, nil
}

// fakePricingService quotes through the real calculator when a route is
// configured, and falls back to legacy flat fares otherwise.
type fakePricingService struct {
	calc  *pricing.Calculator
	route *pricing.Route
}

func newFakePricing(route *pricing.Route) *fakePricingService {
	return &fakePricingService{calc: pricing.NewCalculator(nil), route: route}
}

func (f *fakePricingService) EstimatePrice(_ context.Context, params pricing.EstimateParams) (*pricing.PricingResult, error) {
	if f.route == nil {
		return nil, pricing.ErrRouteNotFound
	}
	result := f.calc.Calculate(f.route, params.BusType, params.Journey, params.SeatCount)
	return &result, nil
}

func (f *fakePricingService) LegacyQuote(busType string, seatCount int) *pricing.PricingResult {
	perSeat := f.calc.LegacyFarePerSeat(busType)
	return &pricing.PricingResult{
		BusType:      busType,
		PricePerSeat: perSeat,
		SeatCount:    seatCount,
		TotalPrice:   perSeat * float64(seatCount),
		Currency:     f.calc.Currency(),
	}
}

type fakeUserService struct{}

func (fakeUserService) GetUserByID(_ context.Context, _ uuid.UUID) (string, string, error) {
	return "passenger@example.com", "Test Passenger", nil
}

func bookableSchedule() *schedules.Schedule {
	return &schedules.Schedule{
		ID:          uuid.New(),
		Origin:      "COLOMBO",
		Destination: "KANDY",
		StartTime:   "08:30",
		EndTime:     "11:45",
		BusType:     "Luxury",
		Status:      schedules.StatusApproved,
		IsActive:    true,
	}
}

func testRoute() *pricing.Route {
	return &pricing.Route{
		ID:             uuid.New(),
		Origin:         "COLOMBO",
		Destination:    "KANDY",
		DistanceKm:     100,
		BasePricePerKm: 8.0,
		RouteCode:      "COLOMBO-KANDY",
		IsActive:       true,
	}
}

func newTestService(schedule *schedules.Schedule, route *pricing.Route) (Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeScheduleService{schedule: schedule}, newFakePricing(route), fakeUserService{})
	return svc, repo
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestCreateBookingSnapshotsFare(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())

	confirmation, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"A1", "A2"},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	if confirmation.Status != string(StatusPending) {
		t.Fatalf("new bookings should be pending, got %s", confirmation.Status)
	}
	if confirmation.PricePerSeat <= 0 {
		t.Fatalf("expected a positive fare snapshot, got %v", confirmation.PricePerSeat)
	}
	if confirmation.TotalAmount != confirmation.PricePerSeat*2 {
		t.Fatalf("total %v should be per-seat %v times 2", confirmation.TotalAmount, confirmation.PricePerSeat)
	}
	if confirmation.Currency != "LKR" {
		t.Fatalf("expected currency LKR, got %s", confirmation.Currency)
	}
	if confirmation.BookingRef == "" {
		t.Fatalf("expected a booking reference")
	}
}

func TestCreateBookingFallsBackToLegacyFare(t *testing.T) {
	schedule := bookableSchedule()
	svc, repo := newTestService(schedule, nil) // no route record

	confirmation, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"B3"},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	// Flat legacy fare: 100 base times the luxury multiplier.
	if confirmation.PricePerSeat != 200 {
		t.Fatalf("expected legacy luxury fare 200, got %v", confirmation.PricePerSeat)
	}

	bookingID, _ := uuid.Parse(confirmation.BookingID)
	stored, err := repo.GetBookingByID(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("stored booking lookup failed: %v", err)
	}
	if !stored.LegacyFare {
		t.Fatalf("legacy fallback should be flagged on the booking")
	}
}

func TestCreateBookingRejectsTakenSeats(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())
	date := futureDate()

	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: date,
		SeatNumbers: []string{"A1", "A2"},
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: date,
		SeatNumbers: []string{"A2", "A3"},
	})

	var conflict *SeatConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SeatConflictError, got %v", err)
	}
	if len(conflict.Seats) != 1 || conflict.Seats[0] != "A2" {
		t.Fatalf("expected conflict on A2, got %v", conflict.Seats)
	}
}

func TestSameSeatDifferentDaysBothSucceed(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())

	day1 := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	day2 := time.Now().AddDate(0, 0, 8).Format("2006-01-02")

	for _, date := range []string{day1, day2} {
		if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
			ScheduleID:  schedule.ID.String(),
			JourneyDate: date,
			SeatNumbers: []string{"A1"},
		}); err != nil {
			t.Fatalf("booking A1 on %s failed: %v", date, err)
		}
	}
}

func TestConcurrentBookingOfSameSeat(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())
	date := futureDate()

	const attempts = 8
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)

	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
				ScheduleID:  schedule.ID.String(),
				JourneyDate: date,
				SeatNumbers: []string{"C5"},
			})
			results <- err
		}()
	}
	start.Done()

	var successes, conflicts int
	for i := 0; i < attempts; i++ {
		err := <-results
		switch {
		case err == nil:
			successes++
		default:
			var conflict *SeatConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("unexpected error type: %v", err)
			}
			conflicts++
		}
	}

	if successes != 1 {
		t.Fatalf("exactly one booking should win the seat, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())

	// Past journey day.
	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		SeatNumbers: []string{"A1"},
	}); !errors.Is(err, ErrJourneyInPast) {
		t.Fatalf("expected ErrJourneyInPast, got %v", err)
	}

	// Seat code outside the layout.
	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"E1"},
	}); err == nil {
		t.Fatalf("invalid seat code should be rejected")
	}

	// Unknown schedule.
	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  uuid.New().String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"A1"},
	}); !errors.Is(err, schedules.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestCreateBookingRequiresBookableSchedule(t *testing.T) {
	schedule := bookableSchedule()
	schedule.Status = schedules.StatusPending
	svc, _ := newTestService(schedule, testRoute())

	_, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"A1"},
	})
	if !errors.Is(err, ErrScheduleNotBookable) {
		t.Fatalf("expected ErrScheduleNotBookable, got %v", err)
	}
}

func TestLegacyNumericSeatsAccepted(t *testing.T) {
	schedule := bookableSchedule() // Luxury, capacity 25 under the numeric scheme
	svc, _ := newTestService(schedule, testRoute())

	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"7", "8"},
	}); err != nil {
		t.Fatalf("numeric seat labels within capacity should work: %v", err)
	}

	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"26"},
	}); err == nil {
		t.Fatalf("seat 26 exceeds luxury capacity 25")
	}
}

func TestNumericSeatAliasesCannotDoubleBook(t *testing.T) {
	schedule := bookableSchedule()
	svc, repo := newTestService(schedule, testRoute())
	date := futureDate()

	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: date,
		SeatNumbers: []string{"5"},
	}); err != nil {
		t.Fatalf("booking seat 5 failed: %v", err)
	}

	// "05" and "+5" parse to the same physical seat; as distinct strings
	// they would slip past the per-label uniqueness rule.
	for _, alias := range []string{"05", "+5"} {
		if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
			ScheduleID:  schedule.ID.String(),
			JourneyDate: date,
			SeatNumbers: []string{alias},
		}); err == nil {
			t.Fatalf("alias label %q for seat 5 should be rejected", alias)
		}
	}

	day, _ := time.ParseInLocation("2006-01-02", date, time.Local)
	booked, _ := repo.GetBookedSeats(context.Background(), schedule.ID, JourneyDayOf(day))
	if len(booked) != 1 || booked[0] != "5" {
		t.Fatalf("seat 5 should have exactly one live holder, got %v", booked)
	}
}

func TestCancelBookingReleasesSeats(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())
	passengerID := uuid.New()
	date := futureDate()

	confirmation, err := svc.CreateBooking(context.Background(), passengerID, CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: date,
		SeatNumbers: []string{"A1"},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	bookingID, _ := uuid.Parse(confirmation.BookingID)
	if err := svc.CancelBooking(context.Background(), bookingID, passengerID, users.RolePassenger); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// The seat becomes available again immediately.
	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: date,
		SeatNumbers: []string{"A1"},
	}); err != nil {
		t.Fatalf("rebooking a released seat failed: %v", err)
	}

	// Cancelling twice fails.
	if err := svc.CancelBooking(context.Background(), bookingID, passengerID, users.RolePassenger); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}
}

func TestCancelBookingOwnershipAndTiming(t *testing.T) {
	schedule := bookableSchedule()
	svc, repo := newTestService(schedule, testRoute())
	passengerID := uuid.New()

	confirmation, err := svc.CreateBooking(context.Background(), passengerID, CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"A1"},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	bookingID, _ := uuid.Parse(confirmation.BookingID)

	// Another passenger may not cancel it; an admin may.
	if err := svc.CancelBooking(context.Background(), bookingID, uuid.New(), users.RolePassenger); !errors.Is(err, ErrNotBookingOwner) {
		t.Fatalf("expected ErrNotBookingOwner, got %v", err)
	}

	// Same-day journeys cannot be cancelled.
	repo.mu.Lock()
	repo.bookings[bookingID].JourneyDay = JourneyDayOf(time.Now())
	repo.mu.Unlock()
	if err := svc.CancelBooking(context.Background(), bookingID, passengerID, users.RolePassenger); !errors.Is(err, ErrPastJourney) {
		t.Fatalf("expected ErrPastJourney, got %v", err)
	}
}

func TestPaymentConfirmsBooking(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())
	passengerID := uuid.New()

	confirmation, err := svc.CreateBooking(context.Background(), passengerID, CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"A1"},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	bookingID, _ := uuid.Parse(confirmation.BookingID)

	// Wrong amount is rejected.
	if _, err := svc.ProcessPayment(context.Background(), bookingID, passengerID, PaymentRequest{
		Amount: confirmation.TotalAmount + 1, PaymentMethod: "card",
	}); !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}

	booking, err := svc.ProcessPayment(context.Background(), bookingID, passengerID, PaymentRequest{
		Amount: confirmation.TotalAmount, PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if booking.Status != StatusConfirmed || booking.PaymentStatus != PaymentPaid {
		t.Fatalf("paid booking should be confirmed, got %s/%s", booking.Status, booking.PaymentStatus)
	}
	if booking.TransactionID == "" {
		t.Fatalf("expected a transaction ID")
	}

	// Paying twice fails.
	if _, err := svc.ProcessPayment(context.Background(), bookingID, passengerID, PaymentRequest{
		Amount: confirmation.TotalAmount, PaymentMethod: "card",
	}); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestPaidCancellationRefunds(t *testing.T) {
	schedule := bookableSchedule()
	svc, repo := newTestService(schedule, testRoute())
	passengerID := uuid.New()

	confirmation, err := svc.CreateBooking(context.Background(), passengerID, CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"A1"},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	bookingID, _ := uuid.Parse(confirmation.BookingID)

	if _, err := svc.ProcessPayment(context.Background(), bookingID, passengerID, PaymentRequest{
		Amount: confirmation.TotalAmount, PaymentMethod: "card",
	}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if err := svc.CancelBooking(context.Background(), bookingID, passengerID, users.RolePassenger); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	stored, _ := repo.GetBookingByID(context.Background(), bookingID)
	if stored.PaymentStatus != PaymentRefunded {
		t.Fatalf("paid cancellation should refund, got %s", stored.PaymentStatus)
	}
}

func TestSeatAvailabilityReflectsBookings(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())
	date := futureDate()

	if _, err := svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: date,
		SeatNumbers: []string{"A1", "B2"},
	}); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	availability, err := svc.GetSeatAvailability(context.Background(), schedule.ID, date)
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}

	if availability.TotalSeats != 40 {
		t.Fatalf("expected 40-seat layout, got %d", availability.TotalSeats)
	}
	if availability.AvailableSeats != 38 {
		t.Fatalf("expected 38 available seats, got %d", availability.AvailableSeats)
	}
	if len(availability.BookedSeats) != 2 {
		t.Fatalf("expected 2 booked seats, got %v", availability.BookedSeats)
	}
	if availability.Fare == nil || availability.Fare.PricePerSeat <= 0 {
		t.Fatalf("expected a fare quote alongside the seat map")
	}
}

func TestCompleteDepartedJourneys(t *testing.T) {
	schedule := bookableSchedule()
	svc, repo := newTestService(schedule, testRoute())
	passengerID := uuid.New()

	confirmation, err := svc.CreateBooking(context.Background(), passengerID, CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: futureDate(),
		SeatNumbers: []string{"A1"},
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	bookingID, _ := uuid.Parse(confirmation.BookingID)
	if _, err := svc.ProcessPayment(context.Background(), bookingID, passengerID, PaymentRequest{
		Amount: confirmation.TotalAmount, PaymentMethod: "card",
	}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	// Move the journey into the past and sweep.
	repo.mu.Lock()
	repo.bookings[bookingID].JourneyDay = JourneyDayOf(time.Now().AddDate(0, 0, -2))
	repo.mu.Unlock()

	count, err := svc.CompleteDepartedJourneys(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 completed booking, got %d", count)
	}

	stored, _ := repo.GetBookingByID(context.Background(), bookingID)
	if stored.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", stored.Status)
	}

	// Completed bookings release their seats. Availability for that day
	// must read as empty, not as held by the finished journey.
	for _, seat := range stored.Seats {
		if seat.Active {
			t.Fatalf("seat %s should be inactive after completion", seat.SeatNumber)
		}
	}
	booked, _ := repo.GetBookedSeats(context.Background(), schedule.ID, stored.JourneyDay)
	if len(booked) != 0 {
		t.Fatalf("completed journey should hold no seats, got %v", booked)
	}
}

func TestBookingListFilters(t *testing.T) {
	schedule := bookableSchedule()
	svc, _ := newTestService(schedule, testRoute())
	passengerID := uuid.New()

	day1 := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	day2 := time.Now().AddDate(0, 0, 14).Format("2006-01-02")

	first, err := svc.CreateBooking(context.Background(), passengerID, CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: day1,
		SeatNumbers: []string{"A1"},
	})
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := svc.CreateBooking(context.Background(), passengerID, CreateBookingRequest{
		ScheduleID:  schedule.ID.String(),
		JourneyDate: day2,
		SeatNumbers: []string{"A2"},
	}); err != nil {
		t.Fatalf("second booking failed: %v", err)
	}

	firstID, _ := uuid.Parse(first.BookingID)
	if _, err := svc.ProcessPayment(context.Background(), firstID, passengerID, PaymentRequest{
		Amount: first.TotalAmount, PaymentMethod: "card",
	}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	// Payment status splits the two bookings.
	paid, total, err := svc.GetAllBookings(context.Background(), BookingListQuery{PaymentStatus: PaymentPaid})
	if err != nil {
		t.Fatalf("list by payment status failed: %v", err)
	}
	if total != 1 || len(paid) != 1 || paid[0].ID != firstID {
		t.Fatalf("expected only the paid booking, got %d", total)
	}

	// A date window around the first journey day excludes the second.
	from := JourneyDayOf(time.Now().AddDate(0, 0, 6))
	to := JourneyDayOf(time.Now().AddDate(0, 0, 8))
	windowed, total, err := svc.GetAllBookings(context.Background(), BookingListQuery{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list by date window failed: %v", err)
	}
	if total != 1 || len(windowed) != 1 || windowed[0].ID != firstID {
		t.Fatalf("expected only the first journey in the window, got %d", total)
	}
}
