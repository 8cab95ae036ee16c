package pricing

import (
	"testing"
	"time"
)

func TestPeakWindowBoundaries(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		hour int
		peak bool
	}{
		{5, false},
		{6, true}, // morning window opens
		{8, true},
		{9, false}, // half-open, end hour is off-peak
		{12, false},
		{16, false},
		{17, true}, // evening window opens
		{19, true},
		{20, false},
		{23, false},
	}
	for _, tc := range cases {
		// Wednesday, not a holiday, to isolate the peak flag.
		journey := time.Date(2026, 3, 11, tc.hour, 15, 0, 0, time.Local)
		tm := cfg.ResolveTimeMultipliers(journey)
		if tm.IsPeakHour != tc.peak {
			t.Fatalf("hour %d: expected peak=%v, got %v", tc.hour, tc.peak, tm.IsPeakHour)
		}
		wantMult := 1.0
		if tc.peak {
			wantMult = cfg.PeakMultiplier
		}
		if tm.PeakHour != wantMult {
			t.Fatalf("hour %d: expected peak multiplier %v, got %v", tc.hour, wantMult, tm.PeakHour)
		}
	}
}

func TestWeekendDetection(t *testing.T) {
	cfg := DefaultConfig()

	saturday := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	sunday := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)
	monday := time.Date(2026, 3, 16, 12, 0, 0, 0, time.Local)

	if tm := cfg.ResolveTimeMultipliers(saturday); !tm.IsWeekend || tm.Weekend != 1.1 {
		t.Fatalf("saturday: expected weekend multiplier 1.1, got %+v", tm)
	}
	if tm := cfg.ResolveTimeMultipliers(sunday); !tm.IsWeekend {
		t.Fatalf("sunday should be a weekend day")
	}
	if tm := cfg.ResolveTimeMultipliers(monday); tm.IsWeekend {
		t.Fatalf("monday should not be a weekend day")
	}
}

func TestHolidayMatchesMonthDayAcrossYears(t *testing.T) {
	cfg := DefaultConfig()

	for _, year := range []int{2025, 2026, 2030} {
		journey := time.Date(year, 12, 25, 10, 0, 0, 0, time.Local)
		tm := cfg.ResolveTimeMultipliers(journey)
		if !tm.IsHoliday || tm.Holiday != 1.3 {
			t.Fatalf("year %d: expected christmas holiday multiplier 1.3, got %+v", year, tm)
		}
	}

	notHoliday := time.Date(2026, 12, 24, 10, 0, 0, 0, time.Local)
	if tm := cfg.ResolveTimeMultipliers(notHoliday); tm.IsHoliday {
		t.Fatalf("december 24 should not be a holiday")
	}
}

func TestModifiersAreIndependent(t *testing.T) {
	cfg := DefaultConfig()

	// Saturday 2028-01-01 at 07:00: peak morning + weekend + holiday.
	journey := time.Date(2028, 1, 1, 7, 0, 0, 0, time.Local)
	tm := cfg.ResolveTimeMultipliers(journey)

	if !tm.IsPeakHour || !tm.IsWeekend || !tm.IsHoliday {
		t.Fatalf("expected all flags set, got %+v", tm)
	}
	if tm.PeakHour != 1.2 || tm.Weekend != 1.1 || tm.Holiday != 1.3 {
		t.Fatalf("expected multipliers 1.2/1.1/1.3, got %+v", tm)
	}
}
