package planning

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
)

const daysPerWeek = 7

var weekdayShortNames = map[time.Weekday]string{
	time.Monday:    "Mo",
	time.Tuesday:   "Di",
	time.Wednesday: "Mi",
	time.Thursday:  "Do",
	time.Friday:    "Fr",
	time.Saturday:  "Sa",
	time.Sunday:    "So",
}

func weekConfig(weekStart time.Weekday) *now.Config {
	return &now.Config{WeekStartDay: weekStart, TimeLocation: time.UTC}
}

// StartOfWeek returns the first calendar day of the week containing t
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return weekConfig(weekStart).With(DateOf(t)).BeginningOfWeek()
}

// EndOfWeek returns the last calendar day of the week containing t
func EndOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	return DateOf(weekConfig(weekStart).With(DateOf(t)).EndOfWeek())
}

// NextWeek moves a week anchor forward by seven days
func NextWeek(start time.Time) time.Time {
	return start.AddDate(0, 0, daysPerWeek)
}

// PrevWeek moves a week anchor back by seven days
func PrevWeek(start time.Time) time.Time {
	return start.AddDate(0, 0, -daysPerWeek)
}

// Today returns the anchor of the week the clock reading falls into
func Today(clock time.Time, weekStart time.Weekday) time.Time {
	return StartOfWeek(clock, weekStart)
}

// DayColumn is one day header of the planning table
type DayColumn struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Label   string `json:"label"`
	IsToday bool   `json:"is_today"`
}

// ScheduleCell lists the orders occupying a technician on one day
type ScheduleCell struct {
	Date   string         `json:"date"`
	Orders []models.Order `json:"orders"`
}

// ScheduleRow is one technician's week
type ScheduleRow struct {
	Technician models.Technician `json:"technician"`
	Cells      []ScheduleCell    `json:"cells"`
}

// WeekSchedule is the resource-planning table for one week
type WeekSchedule struct {
	WeekStart    string        `json:"week_start"`
	WeekEnd      string        `json:"week_end"`
	Title        string        `json:"title"`
	PreviousWeek string        `json:"previous_week"`
	NextWeek     string        `json:"next_week"`
	Days         []DayColumn   `json:"days"`
	Rows         []ScheduleRow `json:"rows"`
}

// BuildWeekSchedule projects the week containing anchor into a table with one
// row per active technician and one cell per day. clock decides which column
// is flagged as today. Cells keep the input order of orders.
func BuildWeekSchedule(anchor, clock time.Time, technicians []models.Technician, orders []models.Order, weekStart time.Weekday) WeekSchedule {
	start := StartOfWeek(anchor, weekStart)
	end := EndOfWeek(anchor, weekStart)
	today := DateOf(clock)
	days := DaysInRange(start, end)

	schedule := WeekSchedule{
		WeekStart:    start.Format(DateLayout),
		WeekEnd:      end.Format(DateLayout),
		Title:        fmt.Sprintf("Woche: %s - %s", start.Format("02.01."), end.Format("02.01.2006")),
		PreviousWeek: PrevWeek(start).Format(DateLayout),
		NextWeek:     NextWeek(start).Format(DateLayout),
		Days:         make([]DayColumn, 0, len(days)),
		Rows:         make([]ScheduleRow, 0),
	}

	for _, day := range days {
		schedule.Days = append(schedule.Days, DayColumn{
			Date:    day.Format(DateLayout),
			Weekday: weekdayShortNames[day.Weekday()],
			Label:   day.Format("02.01."),
			IsToday: day.Equal(today),
		})
	}

	for _, technician := range ActiveTechnicians(technicians) {
		row := ScheduleRow{
			Technician: technician,
			Cells:      make([]ScheduleCell, 0, len(days)),
		}
		for _, day := range days {
			row.Cells = append(row.Cells, ScheduleCell{
				Date:   day.Format(DateLayout),
				Orders: OrdersOnDay(orders, technician.ID, day),
			})
		}
		schedule.Rows = append(schedule.Rows, row)
	}

	return schedule
}
