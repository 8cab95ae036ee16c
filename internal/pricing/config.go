package pricing

import (
	"time"

	"buslink/internal/shared/config"
)

// HourWindow is a half-open [Start, End) range of hours in local time.
type HourWindow struct {
	Start int
	End   int
}

// Config carries every tunable of the pricing engine. It is built once and
// injected into the calculator; tests substitute alternate tables.
type Config struct {
	Currency string

	// Global bus-type multiplier table, applied when a route carries no
	// override for the class.
	DefaultBusTypeMultipliers map[string]float64

	PeakWindows    []HourWindow
	PeakMultiplier float64

	WeekendDays       []time.Weekday
	WeekendMultiplier float64

	// Month-day strings (MM-DD), timezone-naive calendar matches.
	Holidays          []string
	HolidayMultiplier float64

	// Flat fare base used when no route matches an origin/destination
	// pair; multiplied by the default bus-type multiplier.
	LegacyBaseFare float64
}

// DefaultConfig returns the production multiplier tables.
func DefaultConfig() *Config {
	return &Config{
		Currency: "LKR",
		DefaultBusTypeMultipliers: map[string]float64{
			"Normal":      1.0,
			"Express":     1.3,
			"Semi-Luxury": 1.5,
			"Luxury":      2.0,
			"Intercity":   1.2,
		},
		PeakWindows: []HourWindow{
			{Start: 6, End: 9},   // morning
			{Start: 17, End: 20}, // evening
		},
		PeakMultiplier:    1.2,
		WeekendDays:       []time.Weekday{time.Saturday, time.Sunday},
		WeekendMultiplier: 1.1,
		Holidays:          []string{"01-01", "02-04", "05-01", "12-25"},
		HolidayMultiplier: 1.3,
		LegacyBaseFare:    100,
	}
}

// ConfigFromApp overlays deployment settings onto the defaults.
func ConfigFromApp(app config.PricingConfig) *Config {
	cfg := DefaultConfig()
	if app.Currency != "" {
		cfg.Currency = app.Currency
	}
	if app.LegacyBaseFare > 0 {
		cfg.LegacyBaseFare = app.LegacyBaseFare
	}
	if len(app.Holidays) > 0 {
		cfg.Holidays = app.Holidays
	}
	return cfg
}
