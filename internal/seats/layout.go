package seats

import (
	"fmt"
	"regexp"
)

// Standard coach layout: 10 rows of 4 seats across columns A-D. Seat codes
// read column-then-row, so "A1" is the first seat of column A and "D10" the
// last of column D.
const (
	LayoutRows    = 10
	LayoutColumns = "ABCD"
	LayoutSeats   = LayoutRows * len(LayoutColumns)
)

var seatCodePattern = regexp.MustCompile(`^[A-D]([1-9]|10)$`)

// SeatStatus is the availability of one seat for one schedule and day.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatBooked    SeatStatus = "BOOKED"
)

// SeatInfo is one cell of a seat map response.
type SeatInfo struct {
	SeatNumber string     `json:"seat_number"`
	Row        int        `json:"row"`
	Column     string     `json:"column"`
	Status     SeatStatus `json:"status"`
}

// GenerateSeatMap lays out the standard 40-seat coach and marks the given
// seats as booked. Column-major order matches the seat code scheme.
func GenerateSeatMap(bookedSeats []string) []SeatInfo {
	booked := make(map[string]struct{}, len(bookedSeats))
	for _, s := range bookedSeats {
		booked[s] = struct{}{}
	}

	seatMap := make([]SeatInfo, 0, LayoutSeats)
	for _, col := range LayoutColumns {
		for row := 1; row <= LayoutRows; row++ {
			code := fmt.Sprintf("%c%d", col, row)
			status := SeatAvailable
			if _, ok := booked[code]; ok {
				status = SeatBooked
			}
			seatMap = append(seatMap, SeatInfo{
				SeatNumber: code,
				Row:        row,
				Column:     string(col),
				Status:     status,
			})
		}
	}
	return seatMap
}

// ValidateSeatCode checks a letter-row seat code against the standard
// layout.
func ValidateSeatCode(code string) error {
	if !seatCodePattern.MatchString(code) {
		return fmt.Errorf("invalid seat number %q: expected column A-D and row 1-%d", code, LayoutRows)
	}
	return nil
}

// ValidateSelection checks every requested seat code and rejects
// duplicates within the request itself.
func ValidateSelection(seatNumbers []string) error {
	seen := make(map[string]struct{}, len(seatNumbers))
	for _, code := range seatNumbers {
		if err := ValidateSeatCode(code); err != nil {
			return err
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("seat %s requested more than once", code)
		}
		seen[code] = struct{}{}
	}
	return nil
}

// Conflicts returns the requested seats that are already taken, preserving
// request order.
func Conflicts(requested, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, s := range booked {
		taken[s] = struct{}{}
	}

	var conflicts []string
	for _, s := range requested {
		if _, ok := taken[s]; ok {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}
