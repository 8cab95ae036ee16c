package seats

import (
	"fmt"
	"strconv"
)

// Older schedules number seats 1..capacity instead of using the letter-row
// layout. Capacity depends on the bus class; both schemes share the same
// string-based conflict contract, so "7" and "A7" never collide.
var legacyCapacities = map[string]int{
	"Normal":      30,
	"Express":     35,
	"Semi-Luxury": 30,
	"Luxury":      25,
	"Intercity":   40,
}

const legacyDefaultCapacity = 40

// LegacyCapacity returns the seat count for a bus class under the numeric
// scheme.
func LegacyCapacity(busType string) int {
	if n, ok := legacyCapacities[busType]; ok {
		return n
	}
	return legacyDefaultCapacity
}

// ValidateLegacySelection checks numeric seat labels against a bus class
// capacity and rejects duplicates. Labels must be canonical decimal form:
// "05" or "+5" would slip past the string-keyed conflict contract as a
// second label for physical seat 5.
func ValidateLegacySelection(seatNumbers []string, busType string) error {
	capacity := LegacyCapacity(busType)
	seen := make(map[string]struct{}, len(seatNumbers))
	for _, label := range seatNumbers {
		n, err := strconv.Atoi(label)
		if err != nil || n < 1 || n > capacity || label != strconv.Itoa(n) {
			return fmt.Errorf("invalid seat number %q: expected 1-%d for %s", label, capacity, busType)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("seat %s requested more than once", label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

// IsLegacySelection reports whether every requested label is numeric. A
// single booking uses one scheme only; mixed selections are rejected by
// validation of whichever scheme the first label implies.
func IsLegacySelection(seatNumbers []string) bool {
	if len(seatNumbers) == 0 {
		return false
	}
	for _, label := range seatNumbers {
		if _, err := strconv.Atoi(label); err != nil {
			return false
		}
	}
	return true
}

// GenerateLegacySeatMap lays out numeric seats 1..capacity for a bus class.
func GenerateLegacySeatMap(busType string, bookedSeats []string) []SeatInfo {
	booked := make(map[string]struct{}, len(bookedSeats))
	for _, s := range bookedSeats {
		booked[s] = struct{}{}
	}

	capacity := LegacyCapacity(busType)
	seatMap := make([]SeatInfo, 0, capacity)
	for n := 1; n <= capacity; n++ {
		label := strconv.Itoa(n)
		status := SeatAvailable
		if _, ok := booked[label]; ok {
			status = SeatBooked
		}
		seatMap = append(seatMap, SeatInfo{
			SeatNumber: label,
			Row:        n,
			Status:     status,
		})
	}
	return seatMap
}
