package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	FindActiveRoute(ctx context.Context, origin, destination string) (*Route, error)
	GetRouteByID(ctx context.Context, id uuid.UUID) (*Route, error)
	ListRoutes(ctx context.Context, filter RouteFilter) ([]Route, error)
	CreateRoute(ctx context.Context, route *Route) error
	UpdateRoute(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Route, error)
	DeactivateRoute(ctx context.Context, id uuid.UUID) error
}

// RouteFilter narrows route listings; substring matches, case-insensitive.
type RouteFilter struct {
	Origin      string
	Destination string
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindActiveRoute matches the normalized pair against active routes only.
// Returns gorm.ErrRecordNotFound when no active route exists; callers
// translate that into the domain error.
func (r *repository) FindActiveRoute(ctx context.Context, origin, destination string) (*Route, error) {
	var route Route
	err := r.db.WithContext(ctx).
		Where("origin = ? AND destination = ? AND is_active = ?",
			NormalizeLocation(origin), NormalizeLocation(destination), true).
		First(&route).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repository) GetRouteByID(ctx context.Context, id uuid.UUID) (*Route, error) {
	var route Route
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&route).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *repository) ListRoutes(ctx context.Context, filter RouteFilter) ([]Route, error) {
	query := r.db.WithContext(ctx).Model(&Route{}).Where("is_active = ?", true)

	if filter.Origin != "" {
		query = query.Where("origin ILIKE ?", "%"+filter.Origin+"%")
	}
	if filter.Destination != "" {
		query = query.Where("destination ILIKE ?", "%"+filter.Destination+"%")
	}

	var routes []Route
	err := query.Order("origin ASC, destination ASC").Find(&routes).Error
	return routes, err
}

func (r *repository) CreateRoute(ctx context.Context, route *Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *repository) UpdateRoute(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Route, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&Route{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetRouteByID(ctx, id)
}

func (r *repository) DeactivateRoute(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&Route{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
