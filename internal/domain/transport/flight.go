package transport

import (
	"fmt"
	"time"
)

// Flight is one scheduled departure between two stops.
type Flight struct {
	ID            string
	FromStopID    string
	ToStopID      string
	DepartureTime string // HH:MM
	ArrivalTime   string // HH:MM
	DaysOfWeek    []int  // ISO weekdays, Monday=1 .. Sunday=7
	RouteID       string
	PriceRub      float64
	IsVirtual     bool
	TransportType TransportType
	Metadata      map[string]string
}

// ParseClock parses an HH:MM string into minutes since midnight.
func ParseClock(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("failed to parse clock time %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", hhmm)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as HH:MM, wrapping past
// midnight.
func FormatClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DurationMinutes computes arrival minus departure, adding 24h when the
// flight spans midnight.
func (f *Flight) DurationMinutes() (int, error) {
	dep, err := ParseClock(f.DepartureTime)
	if err != nil {
		return 0, err
	}
	arr, err := ParseClock(f.ArrivalTime)
	if err != nil {
		return 0, err
	}
	d := arr - dep
	if d < 0 {
		d += 24 * 60
	}
	return d, nil
}

// ISOWeekday returns the ISO weekday of the date, Monday=1 .. Sunday=7.
func ISOWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// OperatesOn reports whether the flight runs on the given date's weekday.
func (f *Flight) OperatesOn(date time.Time) bool {
	wd := ISOWeekday(date)
	for _, d := range f.DaysOfWeek {
		if d == wd {
			return true
		}
	}
	return false
}
