// Package i18n holds the UI dictionaries. A Dictionary is selected once
// per request and passed to the renderer explicitly.
package i18n

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"teamcal/internal/calendar"
	"teamcal/internal/model"
)

type Language string

const (
	English    Language = "en"
	Indonesian Language = "id"
)

// ParseLanguage reports whether s names a supported language.
func ParseLanguage(s string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	_, ok := dictionaries[l]
	return l, ok
}

var (
	supported = []Language{English, Indonesian}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Indonesian})
)

// Negotiate picks the best supported language for an Accept-Language
// header, or fallback when nothing matches.
func Negotiate(acceptLanguage string, fallback Language) Language {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(supported) {
		return fallback
	}
	return supported[idx]
}

// For returns the dictionary of lang. Unsupported languages get English.
func For(lang Language) *Dictionary {
	if d, ok := dictionaries[lang]; ok {
		return d
	}
	return dictionaries[English]
}

// MonthName returns the full month name.
func (d *Dictionary) MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return m.String()
	}
	return d.Calendar.Months[m-1]
}

// MonthShort returns the abbreviated month name.
func (d *Dictionary) MonthShort(m time.Month) string {
	if m < time.January || m > time.December {
		return m.String()
	}
	return d.Calendar.MonthsShort[m-1]
}

// WeekdayShort returns the abbreviated weekday name.
func (d *Dictionary) WeekdayShort(wd time.Weekday) string {
	return d.Calendar.Weekdays[wd%7]
}

// DateRange formats an event's span for cards: "5 Jun", "5 - 7 Jun" or
// "30 Jun - 2 Jul". A zero end means a single day.
func (d *Dictionary) DateRange(start, end calendar.Date) string {
	if end.IsZero() || end == start {
		return fmt.Sprintf("%d %s", start.Day, d.MonthShort(start.Month))
	}
	if start.Month == end.Month && start.Year == end.Year {
		return fmt.Sprintf("%d - %d %s", start.Day, end.Day, d.MonthShort(start.Month))
	}
	return fmt.Sprintf("%d %s - %d %s", start.Day, d.MonthShort(start.Month), end.Day, d.MonthShort(end.Month))
}

// ColumnTitle translates the default workflow columns and leaves custom
// ones as titled by the user.
func (d *Dictionary) ColumnTitle(col model.KanbanColumn) string {
	switch col.ID {
	case model.StatusTodo:
		return d.Kanban.Todo
	case model.StatusInProgress:
		return d.Kanban.InProgress
	case model.StatusDone:
		return d.Kanban.Done
	}
	return col.Title
}

// PriorityLabel returns the localized label of p.
func (d *Dictionary) PriorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return d.Priority.High
	case model.PriorityMedium:
		return d.Priority.Medium
	case model.PriorityLow:
		return d.Priority.Low
	}
	return string(p)
}
