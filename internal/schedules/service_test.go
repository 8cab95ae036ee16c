package schedules

import (
	"context"
	"errors"
	"testing"

	"buslink/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	schedules map[uuid.UUID]*Schedule
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{schedules: make(map[uuid.UUID]*Schedule)}
}

func (f *fakeRepo) Create(_ context.Context, schedule *Schedule) error {
	schedule.ID = uuid.New()
	stored := *schedule
	f.schedules[schedule.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Schedule, error) {
	schedule, ok := f.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *schedule
	return &copied, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) (*Schedule, error) {
	schedule, ok := f.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		schedule.Status = v.(ScheduleStatus)
	}
	if v, ok := updates["origin"]; ok {
		schedule.Origin = v.(string)
	}
	if v, ok := updates["destination"]; ok {
		schedule.Destination = v.(string)
	}
	if v, ok := updates["start_time"]; ok {
		schedule.StartTime = v.(string)
	}
	if v, ok := updates["end_time"]; ok {
		schedule.EndTime = v.(string)
	}
	if v, ok := updates["bus_type"]; ok {
		schedule.BusType = v.(string)
	}
	copied := *schedule
	return &copied, nil
}

func (f *fakeRepo) List(_ context.Context, filter ScheduleFilter) ([]Schedule, int64, error) {
	var out []Schedule
	for _, s := range f.schedules {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != nil && s.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindDuplicate(_ context.Context, origin, destination, startTime string, excludeID *uuid.UUID) (*Schedule, error) {
	for _, s := range f.schedules {
		if excludeID != nil && s.ID == *excludeID {
			continue
		}
		if !s.IsActive || s.Status == StatusRejected {
			continue
		}
		if s.Origin == origin && s.Destination == destination && s.StartTime == startTime {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	schedule, ok := f.schedules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	schedule.IsActive = false
	return nil
}

type fakeRouteCatalog struct {
	routeID uuid.UUID
	err     error
}

func (f *fakeRouteCatalog) ResolveActiveRouteID(_ context.Context, _, _ string) (uuid.UUID, error) {
	return f.routeID, f.err
}

type fakeUserService struct{}

func (fakeUserService) GetUserByID(_ context.Context, _ uuid.UUID) (string, string, error) {
	return "driver@example.com", "Test Driver", nil
}

type recordingNotifier struct {
	reviewed []bool
}

func (r *recordingNotifier) SendScheduleReviewNotification(_ context.Context, _ uuid.UUID, _, _ string,
	_ uuid.UUID, approved bool, _ map[string]interface{}) error {
	r.reviewed = append(r.reviewed, approved)
	return nil
}

func newTestService(catalog *fakeRouteCatalog) (Service, *fakeRepo, *recordingNotifier) {
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, catalog, fakeUserService{})
	svc.SetNotificationService(notifier)
	return svc, repo, notifier
}

func validRequest() CreateScheduleRequest {
	return CreateScheduleRequest{
		Origin:      "Colombo",
		Destination: "Kandy",
		StartTime:   "08:30",
		EndTime:     "11:45",
		BusType:     "Express",
	}
}

func TestDriverSubmissionNeedsApproval(t *testing.T) {
	svc, _, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	schedule, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleDriver, validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if schedule.Status != StatusPending {
		t.Fatalf("driver submission should be pending, got %s", schedule.Status)
	}
	if schedule.IsBookable() {
		t.Fatalf("pending schedules must not be bookable")
	}
}

func TestAdminSubmissionIsApprovedImmediately(t *testing.T) {
	svc, _, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	schedule, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if schedule.Status != StatusApproved {
		t.Fatalf("admin submission should be approved, got %s", schedule.Status)
	}
	if !schedule.IsBookable() {
		t.Fatalf("approved active schedules should be bookable")
	}
}

func TestRouteLinkIsBestEffort(t *testing.T) {
	routeID := uuid.New()
	svc, _, _ := newTestService(&fakeRouteCatalog{routeID: routeID})

	schedule, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if schedule.RouteID == nil || *schedule.RouteID != routeID {
		t.Fatalf("expected route link %s, got %v", routeID, schedule.RouteID)
	}

	// A missing route never blocks schedule creation.
	svc2, _, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})
	schedule, err = svc2.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, validRequest())
	if err != nil {
		t.Fatalf("create should succeed without a route: %v", err)
	}
	if schedule.RouteID != nil {
		t.Fatalf("expected no route link, got %v", schedule.RouteID)
	}
}

func TestDuplicateScheduleRejected(t *testing.T) {
	svc, _, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	if _, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, validRequest()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, validRequest()); !errors.Is(err, ErrDuplicateSchedule) {
		t.Fatalf("expected ErrDuplicateSchedule, got %v", err)
	}
}

func TestCreateScheduleValidation(t *testing.T) {
	svc, _, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	req := validRequest()
	req.BusType = "Tram"
	if _, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, req); err == nil {
		t.Fatalf("unknown bus type should be rejected")
	}

	req = validRequest()
	req.StartTime = "25:00"
	if _, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, req); err == nil {
		t.Fatalf("invalid clock time should be rejected")
	}
}

func TestApprovalFlow(t *testing.T) {
	svc, _, notifier := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	schedule, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleDriver, validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	approved, err := svc.ApproveSchedule(context.Background(), schedule.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if len(notifier.reviewed) != 1 || !notifier.reviewed[0] {
		t.Fatalf("expected one approval notification, got %v", notifier.reviewed)
	}

	// A reviewed schedule cannot be reviewed again.
	if _, err := svc.ApproveSchedule(context.Background(), schedule.ID); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestRejectionNotifiesDriver(t *testing.T) {
	svc, _, notifier := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	schedule, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleDriver, validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rejected, err := svc.RejectSchedule(context.Background(), schedule.ID, "overlaps an existing departure")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if len(notifier.reviewed) != 1 || notifier.reviewed[0] {
		t.Fatalf("expected one rejection notification, got %v", notifier.reviewed)
	}
}

func TestDriverEditResetsApproval(t *testing.T) {
	svc, _, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	driverID := uuid.New()
	schedule, err := svc.CreateSchedule(context.Background(), driverID, users.RoleDriver, validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.ApproveSchedule(context.Background(), schedule.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	newTime := "09:15"
	updated, err := svc.UpdateSchedule(context.Background(), schedule.ID, driverID, users.RoleDriver,
		UpdateScheduleRequest{StartTime: &newTime})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != StatusPending {
		t.Fatalf("driver edit should reset status to pending, got %s", updated.Status)
	}
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	svc, _, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	schedule, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleDriver, validRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newTime := "09:15"
	_, err = svc.UpdateSchedule(context.Background(), schedule.ID, uuid.New(), users.RoleDriver,
		UpdateScheduleRequest{StartTime: &newTime})
	if !errors.Is(err, ErrNotScheduleOwner) {
		t.Fatalf("expected ErrNotScheduleOwner, got %v", err)
	}
}

func TestNonAdminListingOnlySeesApproved(t *testing.T) {
	svc, repo, _ := newTestService(&fakeRouteCatalog{err: errors.New("no route")})

	if _, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleDriver, validRequest()); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	req := validRequest()
	req.StartTime = "14:00"
	if _, err := svc.CreateSchedule(context.Background(), uuid.New(), users.RoleAdmin, req); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(repo.schedules) != 2 {
		t.Fatalf("expected 2 stored schedules, got %d", len(repo.schedules))
	}

	list, _, err := svc.GetSchedules(context.Background(), ScheduleFilter{}, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].Status != StatusApproved {
		t.Fatalf("non-admin should only see approved schedules, got %v", list)
	}

	list, _, err = svc.GetSchedules(context.Background(), ScheduleFilter{}, true)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("admin should see all schedules, got %d", len(list))
	}
}
