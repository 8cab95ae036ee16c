package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeRouteRepo serves a single catalogued route and reports everything
// else missing.
type fakeRouteRepo struct {
	route *Route
}

func (f *fakeRouteRepo) FindActiveRoute(_ context.Context, origin, destination string) (*Route, error) {
	if f.route != nil && f.route.Origin == NormalizeLocation(origin) && f.route.Destination == NormalizeLocation(destination) {
		copied := *f.route
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRouteRepo) GetRouteByID(_ context.Context, _ uuid.UUID) (*Route, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRouteRepo) ListRoutes(_ context.Context, _ RouteFilter) ([]Route, error) {
	return nil, nil
}

func (f *fakeRouteRepo) CreateRoute(_ context.Context, _ *Route) error { return nil }

func (f *fakeRouteRepo) UpdateRoute(_ context.Context, _ uuid.UUID, _ map[string]interface{}) (*Route, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRouteRepo) DeactivateRoute(_ context.Context, _ uuid.UUID) error {
	return gorm.ErrRecordNotFound
}

func newBulkTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := &fakeRouteRepo{route: &Route{
		ID:             uuid.New(),
		Origin:         "COLOMBO",
		Destination:    "KANDY",
		DistanceKm:     100,
		BasePricePerKm: 8.0,
		RouteCode:      "COLOMBO-KANDY",
		IsActive:       true,
	}}
	ctrl := NewController(NewService(repo, NewCalculator(nil)))

	engine := gin.New()
	engine.POST("/pricing/estimate/bulk", ctrl.BulkEstimate)
	return engine
}

func TestBulkEstimateIsolatesBadItems(t *testing.T) {
	engine := newBulkTestRouter()

	body, _ := json.Marshal(BulkEstimateRequest{Requests: []EstimateRequest{
		{Origin: "Colombo", Destination: "Kandy", BusType: "Normal", JourneyDate: "2026-09-02"},
		{Origin: "Colombo", Destination: "Kandy", BusType: "Normal", JourneyDate: "not-a-date"},
		{Origin: "Colombo", Destination: "Nowhere", BusType: "Normal", JourneyDate: "2026-09-02"},
	}})

	req := httptest.NewRequest(http.MethodPost, "/pricing/estimate/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite bad items, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Results []BulkEstimateItem `json:"results"`
			Count   int                `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	results := envelope.Data.Results
	if len(results) != 3 || envelope.Data.Count != 3 {
		t.Fatalf("every item should get a slot, got %d results, count %d", len(results), envelope.Data.Count)
	}

	if results[0].Error != "" || results[0].Pricing == nil {
		t.Fatalf("valid item should carry a quote, got %+v", results[0])
	}
	if !strings.Contains(results[1].Error, "journey date") {
		t.Fatalf("malformed date should fail only its own item, got %+v", results[1])
	}
	if !strings.Contains(results[2].Error, "route not found") || results[2].Pricing != nil {
		t.Fatalf("unknown route should fail only its own item, got %+v", results[2])
	}
}
