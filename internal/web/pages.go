package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"teamcal/internal/board"
	"teamcal/internal/calendar"
	"teamcal/internal/i18n"
	appLog "teamcal/internal/log"
	"teamcal/internal/model"
	"teamcal/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"chip": func(p calendarPage, o calendar.EventOccurrence) chipData {
		return chipData{Occ: o, Style: p.EventStyle(o.Event.Type)}
	},
	"agendaCard": func(p calendarPage, o calendar.EventOccurrence) chipData {
		d := chipData{Occ: o, Style: p.EventStyle(o.Event.Type)}
		if o.MultiDay {
			d.Span = p.Span(o.Event)
		}
		return d
	},
}).ParseFS(templateFS, "templates/*.html"))

// chipData is the input of the eventChip and agendaEvent templates.
// Span is only set for multi-day events on agenda cards.
type chipData struct {
	Occ   calendar.EventOccurrence
	Style theme.Style
	Span  string
}

// pageData is shared by every HTML page.
type pageData struct {
	Title string
	Nav   string
	Lang  i18n.Language
	T     *i18n.Dictionary
	Theme theme.Palette
}

// ThemeCSS renders the palette as CSS custom properties. The values come
// from the closed palette table, never from user input.
func (p pageData) ThemeCSS() template.CSS {
	var b strings.Builder
	for _, v := range p.Theme.Vars() {
		fmt.Fprintf(&b, "%s: %s; ", v.Name, v.Value)
	}
	return template.CSS(b.String())
}

type calendarPage struct {
	pageData
	MonthLabel string
	Weekdays   []string
	Weeks      [][]calendar.Cell
	Agenda     []calendar.DayView
	PrevURL    string
	NextURL    string
	TodayURL   string

	eventTypes map[string]model.EventType
}

// EventStyle returns the colours of an event type.
func (p calendarPage) EventStyle(typeID string) theme.Style {
	return theme.StyleFor(p.eventTypes[typeID].Theme)
}

// Span formats the date range of an event for agenda cards.
func (p calendarPage) Span(ev model.Event) string {
	start, ok := calendar.ParseDate(ev.Date)
	if !ok {
		return ev.Date
	}
	end, _ := calendar.ParseDate(ev.EndDate)
	return p.T.DateRange(start, end)
}

type taskCard struct {
	model.Task
	Due           board.DueState
	PriorityLabel string
	Assignee      string
}

type laneView struct {
	Title string
	Style theme.Style
	Tasks []taskCard
}

type boardPage struct {
	pageData
	Stats   board.TeamStats
	Lanes   []laneView
	Orphans []taskCard
}

// pageBase picks the language and theme for a request. ?lang= and
// ?theme= override Accept-Language and the configured theme.
func (s *Server) pageBase(r *http.Request, nav string) pageData {
	fallback, ok := i18n.ParseLanguage(s.cfg.Language)
	if !ok {
		fallback = i18n.English
	}
	lang := i18n.Negotiate(r.Header.Get("Accept-Language"), fallback)
	if l, ok := i18n.ParseLanguage(r.URL.Query().Get("lang")); ok {
		lang = l
	}

	id, _ := theme.ParseID(s.cfg.Theme)
	if q, ok := theme.ParseID(r.URL.Query().Get("theme")); ok {
		id = q
	}

	return pageData{
		Nav:   nav,
		Lang:  lang,
		T:     i18n.For(lang),
		Theme: theme.Lookup(id),
	}
}

func monthURL(m calendar.Month) string {
	return fmt.Sprintf("/calendar?year=%d&month=%d", m.Year, int(m.Month))
}

// handleCalendarPage renders the month as a week grid for wide screens
// and as a day-by-day agenda for narrow ones.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	m := s.requestedMonth(r, now)
	res := s.resolver()

	base := s.pageBase(r, "calendar")
	base.Title = fmt.Sprintf("%s %d", base.T.MonthName(m.Month), m.Year)

	grid := calendar.BuildGrid(m, s.cfg.WeekStartDay(), res, now)
	page := calendarPage{
		pageData:   base,
		MonthLabel: base.Title,
		Weeks:      grid.Weeks(),
		Agenda:     calendar.BuildAgenda(m, res, now),
		PrevURL:    monthURL(m.Prev()),
		NextURL:    monthURL(m.Next()),
		TodayURL:   monthURL(calendar.MonthOf(now)),
		eventTypes: make(map[string]model.EventType),
	}
	for _, wd := range grid.Weekdays() {
		page.Weekdays = append(page.Weekdays, base.T.WeekdayShort(wd))
	}
	for _, et := range s.store.EventTypes() {
		page.eventTypes[et.ID] = et
	}

	s.render(w, "calendar", page)
}

// handleBoardPage renders the kanban board.
func (s *Server) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	base := s.pageBase(r, "board")
	base.Title = base.T.Nav.Board
	today := calendar.DateOf(s.today())

	members := s.store.Members()
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	card := func(t model.Task) taskCard {
		return taskCard{
			Task:          t,
			Due:           board.DueStatus(t, today, model.StatusDone),
			PriorityLabel: base.T.PriorityLabel(t.Priority),
			Assignee:      names[t.AssigneeID],
		}
	}

	tasks := s.store.Tasks()
	lanes, orphans := board.Group(s.store.Columns(), tasks)
	page := boardPage{
		pageData: base,
		Stats:    board.Stats(tasks, model.StatusDone, members),
	}
	for _, l := range lanes {
		lv := laneView{
			Title: base.T.ColumnTitle(l.Column),
			Style: theme.StyleFor(l.Column.Theme),
		}
		for _, t := range l.Tasks {
			lv.Tasks = append(lv.Tasks, card(t))
		}
		page.Lanes = append(page.Lanes, lv)
	}
	for _, t := range orphans {
		page.Orphans = append(page.Orphans, card(t))
	}

	s.render(w, "board", page)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		appLog.Error("failed to render page", err, "page", name)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
