package pricing

import (
	"fmt"
	"time"
)

// TimeMultipliers is the set of independent time-based modifiers for one
// journey timestamp. All three apply simultaneously; they are never
// mutually exclusive.
type TimeMultipliers struct {
	PeakHour float64 `json:"peak_hour"`
	Weekend  float64 `json:"weekend"`
	Holiday  float64 `json:"holiday"`

	IsPeakHour bool `json:"is_peak_hour"`
	IsWeekend  bool `json:"is_weekend"`
	IsHoliday  bool `json:"is_holiday"`
}

// ResolveTimeMultipliers maps a journey timestamp to its peak-hour, weekend
// and holiday multipliers. Any valid timestamp yields a result.
func (c *Config) ResolveTimeMultipliers(journey time.Time) TimeMultipliers {
	isPeak := c.isPeakHour(journey.Hour())
	isWeekend := c.isWeekend(journey.Weekday())
	isHoliday := c.isHoliday(journey)

	tm := TimeMultipliers{
		PeakHour:   1.0,
		Weekend:    1.0,
		Holiday:    1.0,
		IsPeakHour: isPeak,
		IsWeekend:  isWeekend,
		IsHoliday:  isHoliday,
	}
	if isPeak {
		tm.PeakHour = c.PeakMultiplier
	}
	if isWeekend {
		tm.Weekend = c.WeekendMultiplier
	}
	if isHoliday {
		tm.Holiday = c.HolidayMultiplier
	}
	return tm
}

// isPeakHour reports whether the hour falls in a peak window. Windows are
// half-open, so the end hour itself is off-peak.
func (c *Config) isPeakHour(hour int) bool {
	for _, w := range c.PeakWindows {
		if hour >= w.Start && hour < w.End {
			return true
		}
	}
	return false
}

func (c *Config) isWeekend(day time.Weekday) bool {
	for _, d := range c.WeekendDays {
		if day == d {
			return true
		}
	}
	return false
}

// isHoliday matches on the calendar month-day only, ignoring the year.
func (c *Config) isHoliday(t time.Time) bool {
	monthDay := fmt.Sprintf("%02d-%02d", int(t.Month()), t.Day())
	for _, h := range c.Holidays {
		if h == monthDay {
			return true
		}
	}
	return false
}
