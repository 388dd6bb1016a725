package calendar

import (
	"time"

	"teamcal/internal/model"
)

// EventOccurrence is an event as it appears on one particular day.
type EventOccurrence struct {
	Event model.Event
	// IsStart is true only on the event's own start day; every other
	// day of a multi-day event is a continuation.
	IsStart bool
	// MultiDay is true when the event spans more than one day.
	MultiDay bool
}

// DayView is one rendered calendar day.
type DayView struct {
	Date    Date
	IsToday bool
	Tasks   []model.Task
	Events  []EventOccurrence
}

// Count is the number of occurrences shown in the day's badge.
func (v DayView) Count() int {
	return len(v.Tasks) + len(v.Events)
}

// Empty reports whether the day has no occurrences.
func (v DayView) Empty() bool {
	return v.Count() == 0
}

// Cell is one slot of the month grid. Day is nil for the leading and
// trailing placeholders outside the month.
type Cell struct {
	Day *DayView
}

// MonthGrid is the week-grid layout used on wide viewports.
type MonthGrid struct {
	Month       Month
	WeekStart   time.Weekday
	Offset      int
	DaysInMonth int
	Cells       []Cell
}

// Weeks splits the cells into rows of seven.
func (g MonthGrid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, len(g.Cells)/7)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// Weekdays returns the column headers in display order.
func (g MonthGrid) Weekdays() []time.Weekday {
	return WeekdayOrder(g.WeekStart)
}

// WeekdayOrder lists the seven weekdays starting at weekStart.
func WeekdayOrder(weekStart time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = (weekStart + time.Weekday(i)) % 7
	}
	return out
}

// FirstWeekdayOffset is the grid column of day 1. With a Sunday week
// start this is the plain weekday index (0=Sunday).
func FirstWeekdayOffset(m Month, weekStart time.Weekday) int {
	wd := m.First().Weekday()
	return (int(wd) - int(weekStart) + 7) % 7
}

// GridCellCount returns ceil((daysInMonth+offset)/7)*7.
func GridCellCount(daysInMonth, offset int) int {
	return (daysInMonth + offset + 6) / 7 * 7
}

// BuildGrid lays out month as a week grid. Every real day is resolved
// exactly once; placeholders carry no occurrence data.
func BuildGrid(m Month, weekStart time.Weekday, r *Resolver, now time.Time) MonthGrid {
	days := m.Days()
	offset := FirstWeekdayOffset(m, weekStart)
	total := GridCellCount(days, offset)

	g := MonthGrid{
		Month:       m,
		WeekStart:   weekStart,
		Offset:      offset,
		DaysInMonth: days,
		Cells:       make([]Cell, total),
	}
	for i := range g.Cells {
		dayNumber := i - offset + 1
		if dayNumber < 1 || dayNumber > days {
			continue
		}
		v := BuildDay(Date{Year: m.Year, Month: m.Month, Day: dayNumber}, r, now)
		g.Cells[i].Day = &v
	}
	return g
}

// BuildAgenda lists every day of the month in order, including days with
// no occurrences. It is the layout used on narrow viewports.
func BuildAgenda(m Month, r *Resolver, now time.Time) []DayView {
	days := m.Days()
	out := make([]DayView, 0, days)
	for d := 1; d <= days; d++ {
		out = append(out, BuildDay(Date{Year: m.Year, Month: m.Month, Day: d}, r, now))
	}
	return out
}

// BuildDay resolves a single day into its rendered form.
func BuildDay(d Date, r *Resolver, now time.Time) DayView {
	items := r.Day(d)
	key := d.String()

	v := DayView{
		Date:    d,
		IsToday: IsToday(d, now),
		Tasks:   items.Tasks,
		Events:  make([]EventOccurrence, 0, len(items.Events)),
	}
	for _, ev := range items.Events {
		v.Events = append(v.Events, EventOccurrence{
			Event:    ev,
			IsStart:  ev.Date == key,
			MultiDay: ev.Date != ev.End(),
		})
	}
	return v
}
