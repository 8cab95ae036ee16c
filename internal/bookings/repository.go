package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingListQuery struct {
	Status        Status
	PaymentStatus PaymentStatus
	ScheduleID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

type Repository interface {
	CreateBookingAtomic(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByRef(ctx context.Context, ref string) (*Booking, error)
	GetBookedSeats(ctx context.Context, scheduleID uuid.UUID, journeyDay time.Time) ([]string, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	CancelBooking(ctx context.Context, id uuid.UUID, paymentStatus PaymentStatus) error
	MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error
	CompleteDeparted(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateBookingAtomic inserts the booking and all its seat rows in one
// transaction. A concurrent insert of the same seat trips the partial
// unique index and surfaces as gorm.ErrDuplicatedKey; the whole
// transaction rolls back and no partial booking survives.
func (r *repository) CreateBookingAtomic(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(booking).Error
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByRef(ctx context.Context, ref string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("booking_ref = ?", ref).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookedSeats lists the live seat labels for one schedule and journey
// day. The Active flag on seat rows tracks parent booking status, so no
// join against bookings is needed.
func (r *repository) GetBookedSeats(ctx context.Context, scheduleID uuid.UUID, journeyDay time.Time) ([]string, error) {
	var seatNumbers []string
	err := r.db.WithContext(ctx).
		Model(&BookingSeat{}).
		Where("schedule_id = ? AND journey_day = ? AND active = ?", scheduleID, journeyDay, true).
		Order("created_at ASC").
		Pluck("seat_number", &seatNumbers).Error
	if err != nil {
		return nil, err
	}
	return seatNumbers, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{}).Where("passenger_id = ?", userID)
	return r.listBookings(db, query)
}

func (r *repository) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	db := r.db.WithContext(ctx).Model(&Booking{})
	return r.listBookings(db, query)
}

func (r *repository) listBookings(db *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.PaymentStatus != "" {
		db = db.Where("payment_status = ?", query.PaymentStatus)
	}
	if query.ScheduleID != nil {
		db = db.Where("schedule_id = ?", *query.ScheduleID)
	}
	if query.From != nil {
		db = db.Where("journey_day >= ?", *query.From)
	}
	if query.To != nil {
		db = db.Where("journey_day <= ?", *query.To)
	}

	var totalCount int64
	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	var list []Booking
	err := db.Preload("Seats").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}

	return list, totalCount, nil
}

// CancelBooking flips the booking to CANCELLED and releases its seats by
// deactivating the seat rows, all in one transaction. Released seats fall
// out of the partial unique index and become bookable again immediately.
func (r *repository) CancelBooking(ctx context.Context, id uuid.UUID, paymentStatus PaymentStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&Booking{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":         StatusCancelled,
				"payment_status": paymentStatus,
				"cancelled_at":   &now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&BookingSeat{}).
			Where("booking_id = ?", id).
			Update("active", false).Error
	})
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         StatusConfirmed,
			"payment_status": PaymentPaid,
			"transaction_id": transactionID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CompleteDeparted marks paid bookings whose journey day has passed as
// COMPLETED and deactivates their seat rows. Completed bookings must never
// hold a seat, so availability for a past day reads as empty.
func (r *repository) CompleteDeparted(ctx context.Context, before time.Time) (int64, error) {
	var completed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Booking{}).
			Where("journey_day < ? AND status = ?", before, StatusConfirmed).
			Update("status", StatusCompleted)
		if result.Error != nil {
			return result.Error
		}
		completed = result.RowsAffected
		if completed == 0 {
			return nil
		}

		return tx.Model(&BookingSeat{}).
			Where("active = ? AND booking_id IN (?)", true,
				tx.Session(&gorm.Session{NewDB: true}).
					Model(&Booking{}).
					Select("id").
					Where("journey_day < ? AND status = ?", before, StatusCompleted),
			).
			Update("active", false).Error
	})
	return completed, err
}
