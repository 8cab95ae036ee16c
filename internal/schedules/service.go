package schedules

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"buslink/internal/shared/constants"
	"buslink/internal/users"
	"buslink/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrDuplicateSchedule = errors.New("a schedule already exists for this route and departure time")
	ErrNotScheduleOwner  = errors.New("you can only modify your own schedules")
	ErrAlreadyReviewed   = errors.New("schedule has already been reviewed")
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// RouteCatalog resolves an origin/destination pair to a route catalog entry
// (a local interface to avoid depending on the pricing package).
type RouteCatalog interface {
	ResolveActiveRouteID(ctx context.Context, origin, destination string) (uuid.UUID, error)
}

// UserService fetches contact details for notification delivery
// (implemented by the auth package's user service adapter).
type UserService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (email, name string, err error)
}

// NotificationService publishes schedule review outcomes to drivers
// (a local interface to avoid a dependency on the notifications package).
type NotificationService interface {
	SendScheduleReviewNotification(ctx context.Context, userID uuid.UUID, email, name string,
		scheduleID uuid.UUID, approved bool, templateData map[string]interface{}) error
}

// Service interface defines the contract for schedule business logic
type Service interface {
	CreateSchedule(ctx context.Context, userID uuid.UUID, role users.Role, req CreateScheduleRequest) (*Schedule, error)
	GetSchedules(ctx context.Context, filter ScheduleFilter, isAdmin bool) ([]Schedule, int64, error)
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	GetMySchedules(ctx context.Context, userID uuid.UUID, page, limit int) ([]Schedule, int64, error)
	UpdateSchedule(ctx context.Context, id, userID uuid.UUID, role users.Role, req UpdateScheduleRequest) (*Schedule, error)
	DeleteSchedule(ctx context.Context, id, userID uuid.UUID, role users.Role) error
	ApproveSchedule(ctx context.Context, id uuid.UUID) (*Schedule, error)
	RejectSchedule(ctx context.Context, id uuid.UUID, reason string) (*Schedule, error)

	SetCacheService(cacheService cache.Service)
	SetNotificationService(notificationService NotificationService)
}

type service struct {
	repo                Repository
	routeCatalog        RouteCatalog
	userService         UserService
	cacheService        cache.Service
	notificationService NotificationService
}

func NewService(repo Repository, routeCatalog RouteCatalog, userService UserService) Service {
	return &service{
		repo:         repo,
		routeCatalog: routeCatalog,
		userService:  userService,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetNotificationService(notificationService NotificationService) {
	s.notificationService = notificationService
}

// CreateSchedule registers a departure. Admin submissions go live
// immediately; driver submissions wait for admin review.
func (s *service) CreateSchedule(ctx context.Context, userID uuid.UUID, role users.Role, req CreateScheduleRequest) (*Schedule, error) {
	if !IsValidBusType(req.BusType) {
		return nil, fmt.Errorf("invalid bus type %q", req.BusType)
	}
	if !clockPattern.MatchString(req.StartTime) || !clockPattern.MatchString(req.EndTime) {
		return nil, errors.New("start and end times must be HH:MM in 24-hour format")
	}

	if existing, err := s.repo.FindDuplicate(ctx, req.Origin, req.Destination, req.StartTime, nil); err == nil && existing != nil {
		return nil, ErrDuplicateSchedule
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate schedule: %w", err)
	}

	status := StatusPending
	if role == users.RoleAdmin {
		status = StatusApproved
	}

	schedule := &Schedule{
		Origin:      req.Origin,
		Destination: req.Destination,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		BusType:     req.BusType,
		Status:      status,
		IsActive:    true,
		CreatedBy:   userID,
		CreatorRole: string(role),
	}

	// Best-effort link into the route catalog. A missing route is not an
	// error; the schedule falls back to flat legacy fares.
	if routeID, err := s.routeCatalog.ResolveActiveRouteID(ctx, req.Origin, req.Destination); err == nil {
		schedule.RouteID = &routeID
	} else {
		log.Printf("No route match for schedule %s to %s: %v", req.Origin, req.Destination, err)
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.invalidateScheduleCache(ctx, nil)
	log.Printf("Schedule created: %s to %s at %s (%s)", schedule.Origin, schedule.Destination, schedule.StartTime, schedule.Status)
	return schedule, nil
}

// GetSchedules lists schedules. Non-admin callers only ever see approved
// departures regardless of the requested status filter.
func (s *service) GetSchedules(ctx context.Context, filter ScheduleFilter, isAdmin bool) ([]Schedule, int64, error) {
	if !isAdmin {
		filter.Status = StatusApproved
	}

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schedules: %w", err)
	}
	return list, total, nil
}

func (s *service) GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	cacheKey := constants.BuildScheduleDetailKey(id.String())

	var cached Schedule
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if err := s.setCache(ctx, cacheKey, schedule, constants.TTL_SCHEDULE_DETAIL); err != nil {
		log.Printf("Warning: failed to cache schedule detail: %v", err)
	}

	return schedule, nil
}

func (s *service) GetMySchedules(ctx context.Context, userID uuid.UUID, page, limit int) ([]Schedule, int64, error) {
	return s.repo.List(ctx, ScheduleFilter{
		CreatedBy: &userID,
		Page:      page,
		Limit:     limit,
	})
}

// UpdateSchedule edits a departure. A driver editing their own schedule
// sends it back through review; admin edits keep the current status.
func (s *service) UpdateSchedule(ctx context.Context, id, userID uuid.UUID, role users.Role, req UpdateScheduleRequest) (*Schedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if role != users.RoleAdmin && schedule.CreatedBy != userID {
		return nil, ErrNotScheduleOwner
	}

	updates := map[string]interface{}{}
	startTime := schedule.StartTime
	origin := schedule.Origin
	destination := schedule.Destination

	if req.Origin != nil {
		origin = *req.Origin
		updates["origin"] = origin
	}
	if req.Destination != nil {
		destination = *req.Destination
		updates["destination"] = destination
	}
	if req.StartTime != nil {
		if !clockPattern.MatchString(*req.StartTime) {
			return nil, errors.New("start time must be HH:MM in 24-hour format")
		}
		startTime = *req.StartTime
		updates["start_time"] = startTime
	}
	if req.EndTime != nil {
		if !clockPattern.MatchString(*req.EndTime) {
			return nil, errors.New("end time must be HH:MM in 24-hour format")
		}
		updates["end_time"] = *req.EndTime
	}
	if req.BusType != nil {
		if !IsValidBusType(*req.BusType) {
			return nil, fmt.Errorf("invalid bus type %q", *req.BusType)
		}
		updates["bus_type"] = *req.BusType
	}
	if len(updates) == 0 {
		return nil, errors.New("no fields to update")
	}

	if existing, err := s.repo.FindDuplicate(ctx, origin, destination, startTime, &id); err == nil && existing != nil {
		return nil, ErrDuplicateSchedule
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate schedule: %w", err)
	}

	if role != users.RoleAdmin {
		updates["status"] = StatusPending
	}

	// Re-resolve the route link when the pair changed.
	if req.Origin != nil || req.Destination != nil {
		if routeID, err := s.routeCatalog.ResolveActiveRouteID(ctx, origin, destination); err == nil {
			updates["route_id"] = routeID
		} else {
			updates["route_id"] = nil
		}
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	s.invalidateScheduleCache(ctx, &id)
	return updated, nil
}

func (s *service) DeleteSchedule(ctx context.Context, id, userID uuid.UUID, role users.Role) error {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to get schedule: %w", err)
	}

	if role != users.RoleAdmin && schedule.CreatedBy != userID {
		return ErrNotScheduleOwner
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate schedule: %w", err)
	}

	s.invalidateScheduleCache(ctx, &id)
	return nil
}

func (s *service) ApproveSchedule(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.reviewSchedule(ctx, id, StatusApproved, "")
}

func (s *service) RejectSchedule(ctx context.Context, id uuid.UUID, reason string) (*Schedule, error) {
	return s.reviewSchedule(ctx, id, StatusRejected, reason)
}

func (s *service) reviewSchedule(ctx context.Context, id uuid.UUID, outcome ScheduleStatus, reason string) (*Schedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if schedule.Status != StatusPending {
		return nil, ErrAlreadyReviewed
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"status": outcome})
	if err != nil {
		return nil, fmt.Errorf("failed to review schedule: %w", err)
	}

	s.invalidateScheduleCache(ctx, &id)
	s.notifyReviewOutcome(ctx, updated, outcome == StatusApproved, reason)

	log.Printf("Schedule %s %s", id, outcome)
	return updated, nil
}

// notifyReviewOutcome emails the submitting driver. Notification failures
// never fail the review itself.
func (s *service) notifyReviewOutcome(ctx context.Context, schedule *Schedule, approved bool, reason string) {
	if s.notificationService == nil || s.userService == nil {
		return
	}

	email, name, err := s.userService.GetUserByID(ctx, schedule.CreatedBy)
	if err != nil {
		log.Printf("Warning: could not resolve schedule owner %s: %v", schedule.CreatedBy, err)
		return
	}

	templateData := map[string]interface{}{
		"origin":      schedule.Origin,
		"destination": schedule.Destination,
		"start_time":  schedule.StartTime,
		"bus_type":    schedule.BusType,
	}
	if reason != "" {
		templateData["reason"] = reason
	}

	if err := s.notificationService.SendScheduleReviewNotification(ctx, schedule.CreatedBy, email, name,
		schedule.ID, approved, templateData); err != nil {
		log.Printf("Warning: failed to send schedule review notification: %v", err)
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

func (s *service) invalidateScheduleCache(ctx context.Context, scheduleID *uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_SCHEDULES_ALL); err != nil {
		log.Printf("Warning: failed to invalidate schedule cache: %v", err)
	}
	if scheduleID != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildScheduleDetailKey(scheduleID.String())); err != nil {
			log.Printf("Warning: failed to invalidate schedule detail cache: %v", err)
		}
	}
}
