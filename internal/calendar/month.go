package calendar

import (
	"fmt"
	"time"
)

// Month is the only navigation state of the calendar view.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t. It is both the initial state
// of a view and the target of "go to today".
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous month, rolling the year back after January.
func (m Month) Prev() Month {
	if m.Month <= time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month, rolling the year forward after
// December.
func (m Month) Next() Month {
	if m.Month >= time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Valid reports whether Month is within January..December.
func (m Month) Valid() bool {
	return m.Month >= time.January && m.Month <= time.December
}

// First returns day 1 of the month.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
