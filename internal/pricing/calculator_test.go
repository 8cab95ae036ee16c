package pricing

import (
	"testing"
	"time"
)

func testRoute() *Route {
	return &Route{
		Origin:         "COLOMBO",
		Destination:    "KANDY",
		DistanceKm:     100,
		BasePricePerKm: 8.0,
		RouteCode:      "COLOMBO-KANDY",
		IsActive:       true,
	}
}

// Wednesday at noon: no peak, weekend or holiday modifier applies.
var plainWeekdayNoon = time.Date(2026, 3, 11, 12, 0, 0, 0, time.Local)

func TestCalculateBaseFare(t *testing.T) {
	calc := NewCalculator(nil)

	result := calc.Calculate(testRoute(), "Normal", plainWeekdayNoon, 1)

	if result.BasePrice != 800 {
		t.Fatalf("expected base price 800, got %v", result.BasePrice)
	}
	if result.PricePerSeat != 800 {
		t.Fatalf("expected price per seat 800, got %v", result.PricePerSeat)
	}
	if result.TotalPrice != 800 {
		t.Fatalf("expected total 800, got %v", result.TotalPrice)
	}
	if result.Currency != "LKR" {
		t.Fatalf("expected currency LKR, got %q", result.Currency)
	}
}

func TestCalculateLuxuryWeekday(t *testing.T) {
	calc := NewCalculator(nil)

	result := calc.Calculate(testRoute(), "Luxury", plainWeekdayNoon, 1)

	if result.BusTypeMultiplier != 2.0 {
		t.Fatalf("expected luxury multiplier 2.0, got %v", result.BusTypeMultiplier)
	}
	if result.PricePerSeat != 1600 {
		t.Fatalf("expected price per seat 1600, got %v", result.PricePerSeat)
	}
}

func TestCalculateAllModifiersStack(t *testing.T) {
	calc := NewCalculator(nil)

	// Saturday 2028-01-01 at 18:00: peak evening, weekend and new year
	// holiday all at once.
	journey := time.Date(2028, 1, 1, 18, 0, 0, 0, time.Local)
	result := calc.Calculate(testRoute(), "Luxury", journey, 2)

	tm := result.TimeMultipliers
	if !tm.IsPeakHour || !tm.IsWeekend || !tm.IsHoliday {
		t.Fatalf("expected all time flags set, got %+v", tm)
	}

	// 800 * 2.0 * 1.2 * 1.1 * 1.3 = 2745.6, rounded once at the end.
	if result.PricePerSeat != 2746 {
		t.Fatalf("expected price per seat 2746, got %v", result.PricePerSeat)
	}
	if result.TotalPrice != 2746*2 {
		t.Fatalf("expected total %v, got %v", 2746*2, result.TotalPrice)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	calc := NewCalculator(nil)
	journey := time.Date(2028, 1, 1, 18, 30, 0, 0, time.Local)

	first := calc.Calculate(testRoute(), "Express", journey, 3)
	for i := 0; i < 10; i++ {
		again := calc.Calculate(testRoute(), "Express", journey, 3)
		if again != first {
			t.Fatalf("identical inputs produced different quotes: %+v vs %+v", first, again)
		}
	}
}

func TestUnknownBusTypeIsNeutral(t *testing.T) {
	calc := NewCalculator(nil)

	result := calc.Calculate(testRoute(), "Hovercraft", plainWeekdayNoon, 1)

	if result.BusTypeMultiplier != 1.0 {
		t.Fatalf("expected neutral multiplier for unknown class, got %v", result.BusTypeMultiplier)
	}
	if result.PricePerSeat != 800 {
		t.Fatalf("expected price per seat 800, got %v", result.PricePerSeat)
	}
}

func TestRouteOverrideBeatsGlobalTable(t *testing.T) {
	calc := NewCalculator(nil)

	route := testRoute()
	route.BusTypeMultipliers = BusTypeMultipliers{"Express": 1.45}

	result := calc.Calculate(route, "Express", plainWeekdayNoon, 1)
	if result.BusTypeMultiplier != 1.45 {
		t.Fatalf("expected route override 1.45, got %v", result.BusTypeMultiplier)
	}

	// A class the override table does not mention still falls back to the
	// global default.
	result = calc.Calculate(route, "Luxury", plainWeekdayNoon, 1)
	if result.BusTypeMultiplier != 2.0 {
		t.Fatalf("expected global default 2.0, got %v", result.BusTypeMultiplier)
	}
}

func TestBreakdownReconstructsPrice(t *testing.T) {
	calc := NewCalculator(nil)
	journey := time.Date(2028, 1, 1, 18, 0, 0, 0, time.Local)

	result := calc.Calculate(testRoute(), "Semi-Luxury", journey, 1)
	b := result.Breakdown

	sum := b.BasePrice + b.BusTypeAdjustment + b.PeakHourAdjustment +
		b.WeekendAdjustment + b.HolidayAdjustment
	if roundHalfUp(sum) != result.PricePerSeat {
		t.Fatalf("breakdown sums to %v, price per seat is %v", sum, result.PricePerSeat)
	}
}

func TestBasePriceRoundsHalfUp(t *testing.T) {
	route := &Route{DistanceKm: 12.5, BasePricePerKm: 1.0}
	if got := route.BasePrice(); got != 13 {
		t.Fatalf("expected 12.5 to round to 13, got %v", got)
	}
}

func TestLegacyFarePerSeat(t *testing.T) {
	calc := NewCalculator(nil)

	cases := []struct {
		busType string
		want    float64
	}{
		{"Normal", 100},
		{"Express", 130},
		{"Semi-Luxury", 150},
		{"Luxury", 200},
		{"Intercity", 120},
		{"Hovercraft", 100},
	}
	for _, tc := range cases {
		if got := calc.LegacyFarePerSeat(tc.busType); got != tc.want {
			t.Fatalf("legacy fare for %s: expected %v, got %v", tc.busType, tc.want, got)
		}
	}
}
