package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"teamcal/internal/board"
	"teamcal/internal/calendar"
	appLog "teamcal/internal/log"
	"teamcal/internal/model"
	"teamcal/internal/store"
)

const maxBodyBytes = 1 << 20

// eventOccurrenceDTO is an event as rendered on one day.
type eventOccurrenceDTO struct {
	model.Event
	IsStart  bool `json:"is_start"`
	MultiDay bool `json:"multi_day"`
}

type dayDTO struct {
	Date    string               `json:"date"`
	IsToday bool                 `json:"is_today"`
	Count   int                  `json:"count"`
	Tasks   []model.Task         `json:"tasks"`
	Events  []eventOccurrenceDTO `json:"events"`
}

// calendarResponse is the JSON response shape for /api/calendar. Cells
// holds null for the placeholders before day 1 and after the last day.
type calendarResponse struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	WeekStart   string    `json:"week_start"`
	Offset      int       `json:"offset"`
	DaysInMonth int       `json:"days_in_month"`
	Cells       []*dayDTO `json:"cells"`
	Agenda      []dayDTO  `json:"agenda"`
	Prev        string    `json:"prev"`
	Next        string    `json:"next"`
	Timezone    string    `json:"timezone"`
}

type taskDTO struct {
	model.Task
	DueState board.DueState `json:"due_state"`
}

type eventDTO struct {
	model.Event
	Happening bool `json:"happening"`
}

func toDayDTO(v calendar.DayView) dayDTO {
	d := dayDTO{
		Date:    v.Date.String(),
		IsToday: v.IsToday,
		Count:   v.Count(),
		Tasks:   v.Tasks,
		Events:  make([]eventOccurrenceDTO, 0, len(v.Events)),
	}
	for _, o := range v.Events {
		d.Events = append(d.Events, eventOccurrenceDTO{Event: o.Event, IsStart: o.IsStart, MultiDay: o.MultiDay})
	}
	return d
}

// requestedMonth reads ?year=&month=, falling back to the current month
// when either is missing, malformed or out of range.
func (s *Server) requestedMonth(r *http.Request, now time.Time) calendar.Month {
	q := r.URL.Query()
	m := calendar.Month{
		Year:  parseIntDefault(q.Get("year"), -1),
		Month: time.Month(parseIntDefault(q.Get("month"), -1)),
	}
	if m.Year < 1 || !m.Valid() {
		return calendar.MonthOf(now)
	}
	return m
}

func (s *Server) resolver() *calendar.Resolver {
	return calendar.NewResolver(s.store.Tasks(), s.store.Events())
}

// handleCalendar returns the month grid and agenda.
//
// GET /api/calendar?year=2024&month=6
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	m := s.requestedMonth(r, now)
	res := s.resolver()

	grid := calendar.BuildGrid(m, s.cfg.WeekStartDay(), res, now)
	resp := calendarResponse{
		Year:        m.Year,
		Month:       int(m.Month),
		WeekStart:   s.cfg.WeekStart,
		Offset:      grid.Offset,
		DaysInMonth: grid.DaysInMonth,
		Cells:       make([]*dayDTO, len(grid.Cells)),
		Prev:        m.Prev().String(),
		Next:        m.Next().String(),
		Timezone:    s.loc.String(),
	}
	for i, c := range grid.Cells {
		if c.Day == nil {
			continue
		}
		d := toDayDTO(*c.Day)
		resp.Cells[i] = &d
	}
	for _, v := range calendar.BuildAgenda(m, res, now) {
		resp.Agenda = append(resp.Agenda, toDayDTO(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDay returns the bucket of one day.
//
// GET /api/day?date=2024-06-10
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	d, ok := calendar.ParseDate(r.URL.Query().Get("date"))
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(calendar.BuildDay(d, s.resolver(), s.today())))
}

// handleListTasks lists tasks, optionally filtered by ?status=.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	today := calendar.DateOf(s.today())

	out := make([]taskDTO, 0)
	for _, t := range s.store.Tasks() {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, taskDTO{Task: t, DueState: board.DueStatus(t, today, model.StatusDone)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in model.Task
	if !decodeBody(w, r, &in) {
		return
	}
	t, err := s.store.CreateTask(in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Task(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskDTO{Task: t, DueState: board.DueStatus(t, calendar.DateOf(s.today()), model.StatusDone)})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMoveTask moves a task to another column.
//
// PATCH /api/tasks/{id}/status  {"status": "done"}
func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	t, err := s.store.MoveTask(r.PathValue("id"), in.Status)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleListEvents lists events in start order, flagging the ones in
// progress today.
func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	today := calendar.DateOf(s.today())
	events := calendar.SortEvents(s.store.Events())

	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, eventDTO{Event: ev, Happening: calendar.Happening(ev, today)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in model.Event
	if !decodeBody(w, r, &in) {
		return
	}
	// Feed-owned events are only written by the refresher.
	in.SourceID = ""
	ev, err := s.store.CreateEvent(in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.Event(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventDTO{Event: ev, Happening: calendar.Happening(ev, calendar.DateOf(s.today()))})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEvent(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleActivity returns the activity log, newest first.
//
// GET /api/activity?limit=20
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	items := s.store.Activity()
	if limit := parseIntDefault(r.URL.Query().Get("limit"), 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListMembers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Members())
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var in model.Member
	if !decodeBody(w, r, &in) {
		return
	}
	m, err := s.store.AddMember(in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.Member(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleStats returns task totals overall and per member.
//
// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, board.Stats(s.store.Tasks(), model.StatusDone, s.store.Members()))
}

func (s *Server) handleColumns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Columns())
}

func (s *Server) handleEventTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.EventTypes())
}

// handleRefresh re-imports the ICS subscriptions synchronously.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "feed refresh is not configured")
		return
	}
	rep, err := s.refresher.Refresh(r.Context())
	if err != nil {
		appLog.Error("api refresh failed", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeStoreError maps store sentinel errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidDate),
		errors.Is(err, store.ErrInvalidRange),
		errors.Is(err, store.ErrInvalidPriority),
		errors.Is(err, store.ErrMissingTitle),
		errors.Is(err, store.ErrMissingName),
		errors.Is(err, store.ErrInvalidRole),
		errors.Is(err, store.ErrUnknownAssignee),
		errors.Is(err, board.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		appLog.Error("store operation failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
