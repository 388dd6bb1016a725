package ics

import (
	"time"

	"github.com/google/uuid"

	"teamcal/internal/calendar"
	"teamcal/internal/model"
)

// feedNamespace scopes the deterministic IDs of imported events.
var feedNamespace = uuid.MustParse("0b7e2f2e-6f0a-4f57-9d4b-6a1c3b8f5e21")

// ToEvents converts occurrences into calendar events. Dates are taken
// from the occurrence's own (display) location. All-day ends are
// exclusive in iCalendar, so the last covered day is end minus one day;
// a timed event ending exactly at midnight likewise does not cover the
// following day.
//
// IDs are derived from source, UID and instance so that a refresh
// replaces an event with the same ID.
func ToEvents(occs []Occurrence, eventType string) []model.Event {
	out := make([]model.Event, 0, len(occs))
	for _, o := range occs {
		start := calendar.DateOf(o.Start)
		last := lastDay(o)

		ev := model.Event{
			ID:          uuid.NewSHA1(feedNamespace, []byte(o.SourceID+"\x00"+o.UID+"\x00"+o.InstanceKey)).String(),
			Title:       o.Summary,
			Description: o.Description,
			Location:    o.Location,
			Type:        eventType,
			Date:        start.String(),
			SourceID:    o.SourceID,
		}
		if last.After(start) {
			ev.EndDate = last.String()
		}
		if !o.AllDay {
			ev.StartTime = o.Start.Format("15:04")
			ev.EndTime = o.End.Format("15:04")
		}
		out = append(out, ev)
	}
	return out
}

func lastDay(o Occurrence) calendar.Date {
	if !o.End.After(o.Start) {
		return calendar.DateOf(o.Start)
	}
	end := o.End
	if o.AllDay || isMidnight(end) {
		end = end.Add(-time.Nanosecond)
	}
	return calendar.DateOf(end)
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
