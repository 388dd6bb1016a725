package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func feed(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//teamcal//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR")
	return []byte(strings.Join(all, "\r\n") + "\r\n")
}

var src = Source{ID: "team", URL: "https://calendar.example.com/team.ics?token=secret"}

func window() ExpandConfig {
	return ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
	}
}

func TestParseICS(t *testing.T) {
	body := feed(
		"BEGIN:VEVENT",
		"UID:standup",
		"SUMMARY:Standup",
		"LOCATION:Room 1",
		"DTSTART:20240610T090000Z",
		"DTEND:20240610T093000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:No UID",
		"DTSTART:20240610T090000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:offsite",
		"SUMMARY:Offsite",
		"DTSTART;VALUE=DATE:20240612",
		"DTEND;VALUE=DATE:20240615",
		"END:VEVENT",
	)

	events, err := ParseICS(src, body)
	if err != nil {
		t.Fatalf("ParseICS: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (UID-less skipped)", len(events))
	}
	if events[0].UID != "standup" || events[0].AllDay || events[0].Location != "Room 1" {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if !events[1].AllDay {
		t.Fatal("VALUE=DATE should be all-day")
	}

	if _, err := ParseICS(src, nil); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestExpandAndConvertAllDay(t *testing.T) {
	events, err := ParseICS(src, feed(
		"BEGIN:VEVENT",
		"UID:offsite",
		"SUMMARY:Offsite",
		"DTSTART;VALUE=DATE:20240612",
		"DTEND;VALUE=DATE:20240615",
		"END:VEVENT",
	))
	if err != nil {
		t.Fatal(err)
	}

	res, err := ExpandOccurrences(events, window())
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	got := ToEvents(res.Occurrences, "meeting")
	if len(got) != 1 {
		t.Fatalf("events = %d", len(got))
	}
	ev := got[0]
	if ev.Date != "2024-06-12" || ev.EndDate != "2024-06-14" {
		t.Fatalf("range = %s..%s, want 2024-06-12..2024-06-14", ev.Date, ev.EndDate)
	}
	if ev.StartTime != "" || ev.Type != "meeting" || ev.SourceID != "team" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestExpandRecurringWithExdate(t *testing.T) {
	events, err := ParseICS(src, feed(
		"BEGIN:VEVENT",
		"UID:daily",
		"SUMMARY:Daily sync",
		"DTSTART:20240610T090000Z",
		"DTEND:20240610T091500Z",
		"RRULE:FREQ=DAILY;COUNT=4",
		"EXDATE:20240611T090000Z",
		"END:VEVENT",
	))
	if err != nil {
		t.Fatal(err)
	}

	res, err := ExpandOccurrences(events, window())
	if err != nil {
		t.Fatal(err)
	}
	got := ToEvents(res.Occurrences, "")
	want := []string{"2024-06-10", "2024-06-12", "2024-06-13"}
	if len(got) != len(want) {
		t.Fatalf("occurrences = %d, want %d", len(got), len(want))
	}
	for i, ev := range got {
		if ev.Date != want[i] || ev.EndDate != "" {
			t.Errorf("occurrence %d = %s..%s", i, ev.Date, ev.EndDate)
		}
		if ev.StartTime != "09:00" || ev.EndTime != "09:15" {
			t.Errorf("occurrence %d times = %s-%s", i, ev.StartTime, ev.EndTime)
		}
	}
	if got[0].ID == got[1].ID {
		t.Fatal("instances must have distinct IDs")
	}

	again := ToEvents(res.Occurrences, "")
	if again[0].ID != got[0].ID {
		t.Fatal("IDs must be stable across conversions")
	}
}

func TestExpandTruncatesAtCap(t *testing.T) {
	events, err := ParseICS(src, feed(
		"BEGIN:VEVENT",
		"UID:hourly",
		"SUMMARY:Ping",
		"DTSTART:20240601T000000Z",
		"RRULE:FREQ=HOURLY",
		"END:VEVENT",
	))
	if err != nil {
		t.Fatal(err)
	}
	cfg := window()
	cfg.MaxOccurrencesPerEvent = 10

	res, err := ExpandOccurrences(events, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Occurrences) != 10 || len(res.TruncatedEvents) != 1 {
		t.Fatalf("occurrences=%d truncated=%v", len(res.Occurrences), res.TruncatedEvents)
	}
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	cfg := window()
	cfg.RangeStart, cfg.RangeEnd = cfg.RangeEnd, cfg.RangeStart
	if _, err := ExpandOccurrences(nil, cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestTimedEventEndingAtMidnight(t *testing.T) {
	got := ToEvents([]Occurrence{{
		SourceID: "team",
		UID:      "late",
		Start:    time.Date(2024, 6, 10, 22, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
	}}, "")
	if got[0].Date != "2024-06-10" || got[0].EndDate != "" {
		t.Fatalf("range = %s..%s", got[0].Date, got[0].EndDate)
	}
}

func TestFetcherUsesConditionalCache(t *testing.T) {
	body := feed("BEGIN:VEVENT", "UID:x", "DTSTART:20240610T090000Z", "END:VEVENT")
	var hits, fail atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if fail.Load() == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), time.Second)
	s := Source{ID: "team", URL: srv.URL + "/team.ics"}

	first, err := f.Fetch(context.Background(), s)
	if err != nil || first.FromCache {
		t.Fatalf("first fetch: cache=%v err=%v", first.FromCache, err)
	}

	second, err := f.Fetch(context.Background(), s)
	if err != nil || !second.FromCache || string(second.Body) != string(body) {
		t.Fatalf("second fetch should be a 304 served from cache: cache=%v err=%v", second.FromCache, err)
	}

	fail.Store(1)
	third, err := f.Fetch(context.Background(), s)
	if err != nil || !third.FromCache {
		t.Fatalf("server error should fall back to cache: cache=%v err=%v", third.FromCache, err)
	}
	if hits.Load() != 3 {
		t.Fatalf("hits = %d", hits.Load())
	}
}

func TestFetchWithoutCacheFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), time.Second)
	if _, err := f.Fetch(context.Background(), Source{ID: "missing", URL: srv.URL + "/missing.ics"}); err == nil {
		t.Fatal("expected error for 404 without cache")
	}
	if _, err := f.Fetch(context.Background(), Source{ID: "empty"}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestRedactURL(t *testing.T) {
	if got := redactURL(src.URL); got != "https://calendar.example.com/...(redacted)" {
		t.Fatalf("redactURL = %q", got)
	}
	if got := redactURL("not a url"); got != "ics://...(redacted)" {
		t.Fatalf("redactURL = %q", got)
	}
}
