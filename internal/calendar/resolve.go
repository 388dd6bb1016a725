package calendar

import (
	"time"

	"teamcal/internal/model"
)

// DayItems is the occurrence bucket of one calendar day. Both lists keep
// the order of the input collections.
type DayItems struct {
	Tasks  []model.Task
	Events []model.Event
}

// span is an event's inclusive day range, parsed once.
type span struct {
	start, end Date
	ok         bool
}

// Resolver answers per-day occurrence queries over a fixed snapshot of
// tasks and events. Event ranges are parsed once at construction so a
// full month render does not re-parse every event for every cell.
type Resolver struct {
	tasks  []model.Task
	events []model.Event
	spans  []span
}

// NewResolver snapshots tasks and events. The slices are read, never
// mutated; callers must not modify them while the Resolver is in use.
func NewResolver(tasks []model.Task, events []model.Event) *Resolver {
	r := &Resolver{
		tasks:  tasks,
		events: events,
		spans:  make([]span, len(events)),
	}
	for i, ev := range events {
		r.spans[i] = eventSpan(ev)
	}
	return r
}

func eventSpan(ev model.Event) span {
	start, ok := ParseDate(ev.Date)
	if !ok {
		return span{}
	}
	end, ok := ParseDate(ev.End())
	if !ok {
		return span{}
	}
	return span{start: start, end: end, ok: true}
}

// Day returns the tasks due on d and the events whose range contains d.
//
// Tasks match by exact string equality of DueDate against the canonical
// key of d. Events match when start <= d <= end by day ordering. Records
// with malformed dates match nothing.
func (r *Resolver) Day(d Date) DayItems {
	key := d.String()

	out := DayItems{
		Tasks:  make([]model.Task, 0),
		Events: make([]model.Event, 0),
	}
	for _, t := range r.tasks {
		if t.DueDate == key {
			out.Tasks = append(out.Tasks, t)
		}
	}
	for i, ev := range r.events {
		s := r.spans[i]
		if !s.ok {
			continue
		}
		if s.start.Compare(d) <= 0 && d.Compare(s.end) <= 0 {
			out.Events = append(out.Events, ev)
		}
	}
	return out
}

// ResolveDay is the one-shot form of Resolver.Day for (year, month, day).
func ResolveDay(year int, month time.Month, day int, tasks []model.Task, events []model.Event) DayItems {
	return NewResolver(tasks, events).Day(NewDate(year, month, day))
}
