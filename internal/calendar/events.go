package calendar

import (
	"sort"

	"teamcal/internal/model"
)

// Happening reports whether ev is in progress on today, i.e.
// Date <= today <= EndDate. Malformed dates are never happening.
func Happening(ev model.Event, today Date) bool {
	s := eventSpan(ev)
	if !s.ok {
		return false
	}
	return s.start.Compare(today) <= 0 && today.Compare(s.end) <= 0
}

// ValidRange reports whether ev has parseable dates with end >= start.
func ValidRange(ev model.Event) bool {
	s := eventSpan(ev)
	return s.ok && !s.end.Before(s.start)
}

// SortEvents returns a copy of events ordered by start date, then start
// time. Events with malformed dates go last, in input order.
func SortEvents(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)

	sort.SliceStable(out, func(i, j int) bool {
		a, aok := ParseDate(out[i].Date)
		b, bok := ParseDate(out[j].Date)
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		if c := a.Compare(b); c != 0 {
			return c < 0
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}
