package pricing

import (
	"math"
	"time"
)

// RouteSummary identifies the route a quote was computed against.
type RouteSummary struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distance_km,omitempty"`
	RouteCode   string  `json:"route_code"`
}

// Breakdown is the auditable decomposition of a quote: the incremental
// currency contribution of each multiplier, applied in the fixed order
// busType, peakHour, weekend, holiday. It explains the final price but is
// not a second pricing path; multiplication commutes.
type Breakdown struct {
	BasePrice          float64 `json:"base_price"`
	BusTypeAdjustment  float64 `json:"bus_type_adjustment"`
	PeakHourAdjustment float64 `json:"peak_hour_adjustment"`
	WeekendAdjustment  float64 `json:"weekend_adjustment"`
	HolidayAdjustment  float64 `json:"holiday_adjustment"`
}

// PricingResult is the full quote for one route, bus class, journey time
// and seat count.
type PricingResult struct {
	Route             RouteSummary    `json:"route"`
	BasePrice         float64         `json:"base_price"`
	BusType           string          `json:"bus_type"`
	BusTypeMultiplier float64         `json:"bus_type_multiplier"`
	TimeMultipliers   TimeMultipliers `json:"time_multipliers"`
	PricePerSeat      float64         `json:"price_per_seat"`
	SeatCount         int             `json:"seat_count"`
	TotalPrice        float64         `json:"total_price"`
	Currency          string          `json:"currency"`
	Breakdown         Breakdown       `json:"breakdown"`
}

// Calculator composes route base price, bus-class multiplier and time
// multipliers into a deterministic quote. It holds no mutable state:
// identical inputs always produce identical output.
type Calculator struct {
	cfg *Config
}

func NewCalculator(cfg *Config) *Calculator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Calculator{cfg: cfg}
}

// Calculate prices seatCount seats on the given route. seatCount must be a
// positive integer; validating it is the caller's responsibility.
func (c *Calculator) Calculate(route *Route, busType string, journey time.Time, seatCount int) PricingResult {
	basePrice := route.BasePrice()
	busTypeMultiplier := c.ResolveBusTypeMultiplier(route, busType)
	tm := c.cfg.ResolveTimeMultipliers(journey)

	// Single rounding at the end; rounding per factor would compound.
	pricePerSeat := roundHalfUp(basePrice *
		busTypeMultiplier *
		tm.PeakHour *
		tm.Weekend *
		tm.Holiday)
	totalPrice := pricePerSeat * float64(seatCount)

	afterBusType := basePrice * busTypeMultiplier
	afterPeak := afterBusType * tm.PeakHour
	afterWeekend := afterPeak * tm.Weekend

	return PricingResult{
		Route: RouteSummary{
			Origin:      route.Origin,
			Destination: route.Destination,
			DistanceKm:  route.DistanceKm,
			RouteCode:   route.RouteCode,
		},
		BasePrice:         basePrice,
		BusType:           busType,
		BusTypeMultiplier: busTypeMultiplier,
		TimeMultipliers:   tm,
		PricePerSeat:      pricePerSeat,
		SeatCount:         seatCount,
		TotalPrice:        totalPrice,
		Currency:          c.cfg.Currency,
		Breakdown: Breakdown{
			BasePrice:          basePrice,
			BusTypeAdjustment:  basePrice * (busTypeMultiplier - 1),
			PeakHourAdjustment: afterBusType * (tm.PeakHour - 1),
			WeekendAdjustment:  afterPeak * (tm.Weekend - 1),
			HolidayAdjustment:  afterWeekend * (tm.Holiday - 1),
		},
	}
}

// ResolveBusTypeMultiplier returns the route override when present, the
// global default otherwise, and 1.0 for unrecognized bus classes. Unknown
// classes degrade to neutral pricing rather than erroring.
func (c *Calculator) ResolveBusTypeMultiplier(route *Route, busType string) float64 {
	if route != nil {
		if m, ok := route.BusTypeMultipliers[busType]; ok && m > 0 {
			return m
		}
	}
	if m, ok := c.cfg.DefaultBusTypeMultipliers[busType]; ok && m > 0 {
		return m
	}
	return 1.0
}

// LegacyFarePerSeat is the flat per-seat fare used when no route record
// matches a schedule's origin/destination pair. Kept for schedules created
// before the route catalog existed.
func (c *Calculator) LegacyFarePerSeat(busType string) float64 {
	return roundHalfUp(c.cfg.LegacyBaseFare * c.ResolveBusTypeMultiplier(nil, busType))
}

// Currency exposes the configured currency code.
func (c *Calculator) Currency() string {
	return c.cfg.Currency
}

// roundHalfUp rounds to the nearest whole currency unit, halves away from
// zero for positive amounts.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
