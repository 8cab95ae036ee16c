package schedules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleFilter struct {
	Origin      string
	Destination string
	BusType     string
	Status      ScheduleStatus
	CreatedBy   *uuid.UUID
	Page        int
	Limit       int
}

type Repository interface {
	Create(ctx context.Context, schedule *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Schedule, error)
	List(ctx context.Context, filter ScheduleFilter) ([]Schedule, int64, error)
	FindDuplicate(ctx context.Context, origin, destination, startTime string, excludeID *uuid.UUID) (*Schedule, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, schedule *Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	var schedule Schedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Schedule, error) {
	var schedule Schedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&schedule).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) List(ctx context.Context, filter ScheduleFilter) ([]Schedule, int64, error) {
	var list []Schedule
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Schedule{}).Where("is_active = ?", true)

	if filter.Origin != "" {
		db = db.Where("origin ILIKE ?", "%"+filter.Origin+"%")
	}
	if filter.Destination != "" {
		db = db.Where("destination ILIKE ?", "%"+filter.Destination+"%")
	}
	if filter.BusType != "" {
		db = db.Where("bus_type = ?", filter.BusType)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.CreatedBy != nil {
		db = db.Where("created_by = ?", *filter.CreatedBy)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	err := db.Order("start_time ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}

	return list, totalCount, nil
}

// FindDuplicate looks for another live schedule on the same pair with the
// same departure time. Rejected and inactive schedules do not block reuse.
func (r *repository) FindDuplicate(ctx context.Context, origin, destination, startTime string, excludeID *uuid.UUID) (*Schedule, error) {
	db := r.db.WithContext(ctx).
		Where("origin ILIKE ? AND destination ILIKE ?", origin, destination).
		Where("start_time = ?", startTime).
		Where("is_active = ?", true).
		Where("status IN ?", []ScheduleStatus{StatusApproved, StatusPending})
	if excludeID != nil {
		db = db.Where("id != ?", *excludeID)
	}

	var schedule Schedule
	if err := db.First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&Schedule{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
