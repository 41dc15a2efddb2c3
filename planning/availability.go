package planning

import (
	"strings"
	"time"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
)

// DateLayout is the ISO-8601 calendar date format used for start and end dates
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate parses an ISO-8601 date or timestamp and truncates it to its
// calendar date. The boolean is false for empty or unparsable input.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOf(t), true
		}
	}
	return time.Time{}, false
}

// DateOf returns midnight UTC of the calendar date t falls on in its own location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysInRange enumerates the calendar days from start to end, both inclusive.
// A start after end yields an empty result.
func DaysInRange(start, end time.Time) []time.Time {
	first, last := DateOf(start), DateOf(end)
	days := make([]time.Time, 0)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// Interval returns the order's [start, end] calendar dates. ok is false when
// either bound is missing or unparsable.
func Interval(order models.Order) (start, end time.Time, ok bool) {
	if order.StartDate == nil || order.EndDate == nil {
		return time.Time{}, time.Time{}, false
	}
	start, okStart := ParseDate(*order.StartDate)
	end, okEnd := ParseDate(*order.EndDate)
	if !okStart || !okEnd {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// OccupiesDay reports whether order keeps technicianID busy on day: the
// technician is assigned, the order is not completed, and day lies within the
// closed interval [start_date, end_date].
func OccupiesDay(order models.Order, technicianID string, day time.Time) bool {
	if !IsAssigned(order, technicianID) || order.IsCompleted() {
		return false
	}
	start, end, ok := Interval(order)
	if !ok {
		return false
	}
	d := DateOf(day)
	return !d.Before(start) && !d.After(end)
}

// OrdersOnDay returns the orders occupying technicianID on day, in input order.
// Orders with missing or unparsable dates never occupy a day.
func OrdersOnDay(orders []models.Order, technicianID string, day time.Time) []models.Order {
	busy := make([]models.Order, 0)
	for _, order := range orders {
		if OccupiesDay(order, technicianID, day) {
			busy = append(busy, order)
		}
	}
	return busy
}
