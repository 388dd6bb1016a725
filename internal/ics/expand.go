package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "teamcal/internal/log"
)

const defaultMaxOccurrencesPerEvent = 5000

// Occurrence is a single concrete instance of a feed event, converted
// to the display location.
type Occurrence struct {
	SourceID string
	UID      string

	// InstanceKey identifies one instance of a recurring event; it is
	// the instance's original start in RFC3339.
	InstanceKey string

	Summary     string
	Description string
	Location    string

	AllDay bool
	Start  time.Time
	End    time.Time
}

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the zone occurrences are converted to. Nil
	// means time.Local.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the expansion window (inclusive).
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero uses the default.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded occurrences and the UIDs that hit the
// per-event cap.
type ExpandResult struct {
	Occurrences     []Occurrence
	TruncatedEvents []string
}

// ExpandOccurrences turns parsed events into concrete occurrences
// within the configured window. It handles single events, RRULE
// recurrence, EXDATE removal, RECURRENCE-ID overrides and all-day
// events.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Keep first-seen UID order so imports are stable between refreshes.
	var order []string
	base := make(map[string][]ParsedEvent)
	overrides := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := base[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		base[ev.UID] = append(base[ev.UID], ev)
	}

	for _, uid := range order {
		truncated := false
		for _, ev := range base[uid] {
			occ, hitCap := expandEvent(ev, overrides[uid], cfg)
			truncated = truncated || hitCap
			result.Occurrences = append(result.Occurrences, occ...)
		}
		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("expand: truncated occurrences",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]Occurrence, bool) {
	if ev.RawRRule == "" {
		if !overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
			return nil, false
		}
		return []Occurrence{instance(ev, ev.Start, overrides, cfg.DisplayLocation)}, false
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by the event length so an instance that
	// started before the window but is still running is kept.
	dur := ev.End.Sub(ev.Start)
	from := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())

	starts := set.Between(from, to, true)
	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		out = append(out, instance(ev, s, overrides, cfg.DisplayLocation))
	}
	return out, hitCap
}

// instance builds the occurrence starting at start, applying an
// override whose RECURRENCE-ID equals start.
func instance(ev ParsedEvent, start time.Time, overrides []ParsedEvent, loc *time.Location) Occurrence {
	key := start
	end := start.Add(ev.End.Sub(ev.Start))
	src := ev

	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			src, start, end = ov, ov.Start, ov.End
			break
		}
	}

	occ := Occurrence{
		SourceID:    src.Source.ID,
		UID:         src.UID,
		Summary:     src.Summary,
		Description: src.Description,
		Location:    src.Location,
		AllDay:      src.AllDay,
	}
	if src.AllDay {
		// All-day values are floating dates; keep the wall date instead
		// of shifting it through a zone conversion.
		occ.Start = rebase(start, loc)
		occ.End = rebase(end, loc)
	} else {
		occ.Start = start.In(loc)
		occ.End = end.In(loc)
	}
	occ.InstanceKey = key.UTC().Format(time.RFC3339)
	return occ
}

func rebase(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
