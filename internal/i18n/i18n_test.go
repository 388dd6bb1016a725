package i18n

import (
	"testing"
	"time"

	"teamcal/internal/calendar"
	"teamcal/internal/model"
)

func TestNegotiate(t *testing.T) {
	cases := []struct {
		header string
		want   Language
	}{
		{"", Indonesian},
		{"id-ID,id;q=0.9,en;q=0.8", Indonesian},
		{"en-US,en;q=0.9", English},
		{"fr-FR", Indonesian},
		{"de;q=0.9, en;q=0.5", English},
	}
	for _, tc := range cases {
		if got := Negotiate(tc.header, Indonesian); got != tc.want {
			t.Errorf("Negotiate(%q) = %s, want %s", tc.header, got, tc.want)
		}
	}
}

func TestForFallsBackToEnglish(t *testing.T) {
	if d := For(Language("xx")); d.Lang != English {
		t.Fatalf("fallback lang = %s", d.Lang)
	}
	if d := For(Indonesian); d.Common.Today != "Hari Ini" {
		t.Fatalf("id today = %q", d.Common.Today)
	}
}

func TestDateRange(t *testing.T) {
	d := For(English)
	cases := []struct {
		start, end calendar.Date
		want       string
	}{
		{calendar.Date{Year: 2024, Month: time.June, Day: 5}, calendar.Date{}, "5 Jun"},
		{calendar.Date{Year: 2024, Month: time.June, Day: 5}, calendar.Date{Year: 2024, Month: time.June, Day: 5}, "5 Jun"},
		{calendar.Date{Year: 2024, Month: time.June, Day: 5}, calendar.Date{Year: 2024, Month: time.June, Day: 7}, "5 - 7 Jun"},
		{calendar.Date{Year: 2024, Month: time.June, Day: 30}, calendar.Date{Year: 2024, Month: time.July, Day: 2}, "30 Jun - 2 Jul"},
	}
	for _, tc := range cases {
		if got := d.DateRange(tc.start, tc.end); got != tc.want {
			t.Errorf("DateRange(%s, %s) = %q, want %q", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestColumnTitleAndNames(t *testing.T) {
	d := For(Indonesian)
	if got := d.ColumnTitle(model.KanbanColumn{ID: model.StatusDone, Title: "Done"}); got != "SELESAI" {
		t.Fatalf("done column = %q", got)
	}
	if got := d.ColumnTitle(model.KanbanColumn{ID: "review", Title: "Review"}); got != "Review" {
		t.Fatalf("custom column = %q", got)
	}
	if got := d.MonthName(time.May); got != "Mei" {
		t.Fatalf("May = %q", got)
	}
	if got := d.WeekdayShort(time.Sunday); got != "Min" {
		t.Fatalf("Sunday = %q", got)
	}
	if got := d.PriorityLabel(model.PriorityHigh); got != "TINGGI" {
		t.Fatalf("high = %q", got)
	}
}

func TestParseLanguage(t *testing.T) {
	if l, ok := ParseLanguage("EN"); !ok || l != English {
		t.Fatalf("ParseLanguage = %q %v", l, ok)
	}
	if _, ok := ParseLanguage("jp"); ok {
		t.Fatal("unsupported language accepted")
	}
}
