package pricing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"buslink/internal/shared/constants"
	"buslink/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRouteNotFound is recoverable for booking creation (legacy flat
// pricing takes over) and terminal for pure estimation calls.
var ErrRouteNotFound = errors.New("route not found")

// LegacyRouteCode marks quotes produced by the flat fallback table.
const LegacyRouteCode = "LEGACY"

// EstimateParams are the inputs for one price quote.
type EstimateParams struct {
	Origin      string
	Destination string
	BusType     string
	Journey     time.Time
	SeatCount   int
}

// Service interface defines the contract for pricing business logic
type Service interface {
	// Quoting
	EstimatePrice(ctx context.Context, params EstimateParams) (*PricingResult, error)
	BulkEstimate(ctx context.Context, requests []EstimateParams) []BulkEstimateItem
	LegacyQuote(busType string, seatCount int) *PricingResult
	ResolveActiveRouteID(ctx context.Context, origin, destination string) (uuid.UUID, error)

	// Route catalog
	GetRoutes(ctx context.Context, filter RouteFilter) ([]Route, error)
	GetRouteByID(ctx context.Context, id uuid.UUID) (*Route, error)
	CreateRoute(ctx context.Context, adminID uuid.UUID, req CreateRouteRequest) (*Route, error)
	UpdateRoutePricing(ctx context.Context, id uuid.UUID, req UpdateRoutePricingRequest) (*Route, error)
	DeactivateRoute(ctx context.Context, id uuid.UUID) error

	SetCacheService(cacheService cache.Service)
}

// BulkEstimateItem carries one independent result of a bulk quote; a bad
// item never fails the batch.
type BulkEstimateItem struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	BusType     string         `json:"bus_type"`
	SeatCount   int            `json:"seat_count,omitempty"`
	Pricing     *PricingResult `json:"pricing,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type service struct {
	repo         Repository
	calculator   *Calculator
	cacheService cache.Service
}

func NewService(repo Repository, calculator *Calculator) Service {
	return &service{
		repo:       repo,
		calculator: calculator,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// EstimatePrice resolves the route and produces a deterministic quote.
func (s *service) EstimatePrice(ctx context.Context, params EstimateParams) (*PricingResult, error) {
	route, err := s.repo.FindActiveRoute(ctx, params.Origin, params.Destination)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s to %s", ErrRouteNotFound,
				NormalizeLocation(params.Origin), NormalizeLocation(params.Destination))
		}
		return nil, fmt.Errorf("failed to look up route: %w", err)
	}

	result := s.calculator.Calculate(route, params.BusType, params.Journey, params.SeatCount)
	return &result, nil
}

// BulkEstimate quotes every request independently; failures are reported
// per item.
func (s *service) BulkEstimate(ctx context.Context, requests []EstimateParams) []BulkEstimateItem {
	results := make([]BulkEstimateItem, 0, len(requests))

	for _, req := range requests {
		item := BulkEstimateItem{
			Origin:      req.Origin,
			Destination: req.Destination,
			BusType:     req.BusType,
			SeatCount:   req.SeatCount,
		}

		pricing, err := s.EstimatePrice(ctx, req)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Pricing = pricing
		}
		results = append(results, item)
	}

	return results
}

// ResolveActiveRouteID maps an origin/destination pair to the active route
// record, for callers that only need the link.
func (s *service) ResolveActiveRouteID(ctx context.Context, origin, destination string) (uuid.UUID, error) {
	route, err := s.repo.FindActiveRoute(ctx, origin, destination)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrRouteNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to look up route: %w", err)
	}
	return route.ID, nil
}

// LegacyQuote builds a flat-fare quote for schedules with no linked route.
func (s *service) LegacyQuote(busType string, seatCount int) *PricingResult {
	perSeat := s.calculator.LegacyFarePerSeat(busType)
	return &PricingResult{
		Route: RouteSummary{
			RouteCode: LegacyRouteCode,
		},
		BusType:           busType,
		BusTypeMultiplier: s.calculator.ResolveBusTypeMultiplier(nil, busType),
		PricePerSeat:      perSeat,
		SeatCount:         seatCount,
		TotalPrice:        perSeat * float64(seatCount),
		Currency:          s.calculator.Currency(),
	}
}

func (s *service) GetRoutes(ctx context.Context, filter RouteFilter) ([]Route, error) {
	cacheKey := constants.BuildRoutesListKey(filter.Origin, filter.Destination)

	var cached []Route
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	routes, err := s.repo.ListRoutes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}

	if err := s.setCache(ctx, cacheKey, routes, constants.TTL_ROUTES_LIST); err != nil {
		log.Printf("Warning: failed to cache routes list: %v", err)
	}

	return routes, nil
}

func (s *service) GetRouteByID(ctx context.Context, id uuid.UUID) (*Route, error) {
	cacheKey := constants.BuildRouteDetailKey(id.String())

	var cached Route
	if err := s.getCache(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	route, err := s.repo.GetRouteByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	if err := s.setCache(ctx, cacheKey, route, constants.TTL_ROUTE_DETAIL); err != nil {
		log.Printf("Warning: failed to cache route detail: %v", err)
	}

	return route, nil
}

func (s *service) CreateRoute(ctx context.Context, adminID uuid.UUID, req CreateRouteRequest) (*Route, error) {
	route := &Route{
		Origin:             NormalizeLocation(req.Origin),
		Destination:        NormalizeLocation(req.Destination),
		DistanceKm:         req.DistanceKm,
		BasePricePerKm:     req.BasePricePerKm,
		RouteCode:          MakeRouteCode(req.Origin, req.Destination),
		IsActive:           true,
		Description:        req.Description,
		PeakHourMultiplier: 1.2,
		WeekendMultiplier:  1.1,
		HolidayMultiplier:  1.3,
		BusTypeMultipliers: req.BusTypeMultipliers,
		CreatedBy:          adminID,
	}
	if route.BasePricePerKm == 0 {
		route.BasePricePerKm = 8.0
	}

	if err := s.repo.CreateRoute(ctx, route); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("an active route from %s to %s already exists",
				route.Origin, route.Destination)
		}
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	s.invalidateRouteCache(ctx, nil)
	log.Printf("Route created: %s (%.0f km)", route.RouteCode, route.DistanceKm)
	return route, nil
}

func (s *service) UpdateRoutePricing(ctx context.Context, id uuid.UUID, req UpdateRoutePricingRequest) (*Route, error) {
	updates := map[string]interface{}{}
	if req.DistanceKm != nil {
		updates["distance_km"] = *req.DistanceKm
	}
	if req.BasePricePerKm != nil {
		updates["base_price_per_km"] = *req.BasePricePerKm
	}
	if req.BusTypeMultipliers != nil {
		updates["bus_type_multipliers"] = BusTypeMultipliers(req.BusTypeMultipliers)
	}
	if len(updates) == 0 {
		return nil, errors.New("no pricing fields to update")
	}

	route, err := s.repo.UpdateRoute(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to update route pricing: %w", err)
	}

	s.invalidateRouteCache(ctx, &id)
	log.Printf("Route pricing updated: %s", route.RouteCode)
	return route, nil
}

func (s *service) DeactivateRoute(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeactivateRoute(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRouteNotFound
		}
		return fmt.Errorf("failed to deactivate route: %w", err)
	}

	s.invalidateRouteCache(ctx, &id)
	return nil
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

func (s *service) invalidateRouteCache(ctx context.Context, routeID *uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ROUTES_ALL); err != nil {
		log.Printf("Warning: failed to invalidate route cache: %v", err)
	}
	if routeID != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildRouteDetailKey(routeID.String())); err != nil {
			log.Printf("Warning: failed to invalidate route detail cache: %v", err)
		}
	}
}
