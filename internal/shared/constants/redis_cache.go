package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs for the buslink backend.
// Pattern: buslink:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG   = 24 * time.Hour // very stable data
	TTL_STATIC_MEDIUM = 12 * time.Hour
	TTL_STATIC_SHORT  = 6 * time.Hour
)

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute
)

const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute
	TTL_DYNAMIC_SHORT  = 5 * time.Minute
)

const (
	TTL_REALTIME_SHORT = 30 * time.Second // live seat counts
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "buslink"
)

// ================== ROUTES / PRICING MODULE ==================

const (
	CACHE_KEY_ROUTES_LIST  = CACHE_PREFIX + ":routes:list"         // + :origin:X:dest:Y
	CACHE_KEY_ROUTE_DETAIL = CACHE_PREFIX + ":routes:detail:uuid:" // + route-id
)

const (
	TTL_ROUTES_LIST  = TTL_SEMI_STATIC_SHORT // routes change rarely
	TTL_ROUTE_DETAIL = TTL_SEMI_STATIC_MEDIUM
)

// ================== SCHEDULES MODULE ==================

const (
	CACHE_KEY_SCHEDULES_LIST  = CACHE_PREFIX + ":schedules:list"         // + :origin:X:dest:Y
	CACHE_KEY_SCHEDULE_DETAIL = CACHE_PREFIX + ":schedules:detail:uuid:" // + schedule-id
)

const (
	TTL_SCHEDULES_LIST  = TTL_SEMI_STATIC_QUICK
	TTL_SCHEDULE_DETAIL = TTL_SEMI_STATIC_MEDIUM
)

// ================== BOOKINGS / SEATS MODULE ==================

const (
	CACHE_KEY_SEAT_AVAILABILITY = CACHE_PREFIX + ":bookings:availability:schedule:" // + schedule-id:day:YYYY-MM-DD
)

const (
	TTL_SEAT_AVAILABILITY = TTL_REALTIME_SHORT
)

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_ROUTES_ALL    = CACHE_PREFIX + ":routes:*"
	PATTERN_INVALIDATE_SCHEDULES_ALL = CACHE_PREFIX + ":schedules:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildRoutesListKey(origin, destination string) string {
	return fmt.Sprintf("%s:origin:%s:dest:%s", CACHE_KEY_ROUTES_LIST, origin, destination)
}

func BuildRouteDetailKey(routeID string) string {
	return CACHE_KEY_ROUTE_DETAIL + routeID
}

func BuildScheduleDetailKey(scheduleID string) string {
	return CACHE_KEY_SCHEDULE_DETAIL + scheduleID
}

func BuildSeatAvailabilityKey(scheduleID, day string) string {
	return CACHE_KEY_SEAT_AVAILABILITY + scheduleID + ":day:" + day
}
