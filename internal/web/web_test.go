package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"teamcal/internal/board"
	"teamcal/internal/config"
	"teamcal/internal/feeds"
	"teamcal/internal/model"
	"teamcal/internal/store"
)

type fixture struct {
	srv   *Server
	store *store.Store
	task  model.Task
	event model.Event
}

func newFixture(t *testing.T, mutate func(*config.Config)) fixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Language = "en"
	if mutate != nil {
		mutate(cfg)
	}

	st := store.NewMemory(store.DefaultWorkspace())
	task, err := st.CreateTask(model.Task{Title: "Edit launch video", DueDate: "2024-06-10", Priority: model.PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}
	event, err := st.CreateEvent(model.Event{Title: "Client shoot", Date: "2024-06-09", EndDate: "2024-06-11", Type: "meeting"})
	if err != nil {
		t.Fatal(err)
	}

	srv := NewServer(cfg, st, nil, time.UTC)
	srv.now = func() time.Time { return time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC) }
	return fixture{srv: srv, store: st, task: task, event: event}
}

func (f fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestCalendarJSON(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/api/calendar?year=2024&month=6", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[calendarResponse](t, rec)

	// June 2024 starts on a Saturday.
	if resp.Offset != 6 || resp.DaysInMonth != 30 || len(resp.Cells) != 42 {
		t.Fatalf("offset=%d days=%d cells=%d", resp.Offset, resp.DaysInMonth, len(resp.Cells))
	}
	if resp.Cells[5] != nil || resp.Cells[6] == nil || resp.Cells[6].Date != "2024-06-01" {
		t.Fatal("day 1 should be the first non-placeholder cell")
	}
	if resp.Prev != "2024-05" || resp.Next != "2024-07" {
		t.Fatalf("prev=%s next=%s", resp.Prev, resp.Next)
	}

	day10 := resp.Cells[6+9]
	if day10.Date != "2024-06-10" || !day10.IsToday || day10.Count != 2 {
		t.Fatalf("unexpected day 10: %+v", day10)
	}
	if day10.Events[0].IsStart || !day10.Events[0].MultiDay {
		t.Fatal("day 10 is a continuation of a multi-day event")
	}
	if len(resp.Agenda) != 30 {
		t.Fatalf("agenda = %d days", len(resp.Agenda))
	}
}

func TestCalendarDefaultsToCurrentMonth(t *testing.T) {
	f := newFixture(t, nil)
	resp := decode[calendarResponse](t, f.do(t, http.MethodGet, "/api/calendar?year=2024&month=13", ""))
	if resp.Year != 2024 || resp.Month != 6 {
		t.Fatalf("got %d-%d, want current month", resp.Year, resp.Month)
	}
}

func TestCalendarMonthWithoutYear(t *testing.T) {
	f := newFixture(t, nil)

	for _, target := range []string{
		"/api/calendar?month=3",
		"/api/calendar?year=abc&month=3",
		"/api/calendar?year=2023",
		"/api/calendar?year=0&month=3",
	} {
		resp := decode[calendarResponse](t, f.do(t, http.MethodGet, target, ""))
		if resp.Year != 2024 || resp.Month != 6 {
			t.Errorf("%s: got %d-%d, want current month", target, resp.Year, resp.Month)
		}
	}

	body := f.do(t, http.MethodGet, "/calendar?month=3", "").Body.String()
	if !strings.Contains(body, "June 2024") {
		t.Error("calendar page without year should show the current month")
	}
}

func TestDay(t *testing.T) {
	f := newFixture(t, nil)

	d := decode[dayDTO](t, f.do(t, http.MethodGet, "/api/day?date=2024-06-09", ""))
	if len(d.Tasks) != 0 || len(d.Events) != 1 || !d.Events[0].IsStart {
		t.Fatalf("unexpected day: %+v", d)
	}

	if rec := f.do(t, http.MethodGet, "/api/day?date=2024-02-30", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid date status = %d", rec.Code)
	}
}

func TestMoveTask(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPatch, "/api/tasks/nope/status", `{"status":"done"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown task status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPatch, "/api/tasks/"+f.task.ID+"/status", `{"status":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPatch, "/api/tasks/"+f.task.ID+"/status", `{"status":"done"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("move status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[model.Task](t, rec); got.Status != model.StatusDone {
		t.Fatalf("status = %q", got.Status)
	}

	activity := decode[[]model.Activity](t, f.do(t, http.MethodGet, "/api/activity?limit=1", ""))
	if len(activity) != 1 || activity[0].Action != "completed task" {
		t.Fatalf("activity = %+v", activity)
	}
}

func TestCreateAndDeleteTask(t *testing.T) {
	f := newFixture(t, nil)

	if rec := f.do(t, http.MethodPost, "/api/tasks", `{"title":"x","due_date":"soon"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid due date status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/tasks", `{`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad JSON status = %d", rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/tasks", `{"title":"Storyboard","due_date":"2024-06-20T09:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[model.Task](t, rec)
	if created.DueDate != "2024-06-20" || created.Status != model.StatusTodo {
		t.Fatalf("created = %+v", created)
	}

	got := decode[taskDTO](t, f.do(t, http.MethodGet, "/api/tasks/"+created.ID, ""))
	if got.DueState != "upcoming" {
		t.Fatalf("due state = %s", got.DueState)
	}

	if rec := f.do(t, http.MethodDelete, "/api/tasks/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/tasks/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}

	todo := decode[[]taskDTO](t, f.do(t, http.MethodGet, "/api/tasks?status=todo", ""))
	if len(todo) != 1 || todo[0].ID != f.task.ID || todo[0].DueState != "today" {
		t.Fatalf("todo tasks = %+v", todo)
	}
}

func TestEvents(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/events", `{"title":"Backwards","date":"2024-06-10","end_date":"2024-06-08"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/events", `{"title":"Retro","date":"2024-06-01","source_id":"spoofed"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	if ev := decode[model.Event](t, rec); ev.SourceID != "" {
		t.Fatalf("source id should be cleared, got %q", ev.SourceID)
	}

	list := decode[[]eventDTO](t, f.do(t, http.MethodGet, "/api/events", ""))
	if len(list) != 2 || list[0].Title != "Retro" || list[1].ID != f.event.ID {
		t.Fatalf("events not sorted: %+v", list)
	}
	if list[0].Happening || !list[1].Happening {
		t.Fatal("only the running shoot is happening")
	}

	if rec := f.do(t, http.MethodDelete, "/api/events/"+f.event.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/events/"+f.event.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}
}

func TestLookups(t *testing.T) {
	f := newFixture(t, nil)

	cols := decode[[]model.KanbanColumn](t, f.do(t, http.MethodGet, "/api/columns", ""))
	if len(cols) != 3 || cols[0].ID != model.StatusTodo {
		t.Fatalf("columns = %+v", cols)
	}
	types := decode[[]model.EventType](t, f.do(t, http.MethodGet, "/api/event-types", ""))
	if len(types) == 0 {
		t.Fatal("expected default event types")
	}
	if rec := f.do(t, http.MethodDelete, "/api/columns", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /api/columns = %d", rec.Code)
	}
}

func TestCalendarPage(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/calendar?year=2024&month=6", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`data-ready="true"`,
		"June 2024",
		"Edit launch video",
		`href="/api/tasks/` + f.task.ID + `"`,
		`class="chip cont"`,
		"--color-primary: #10b981",
		`/calendar?year=2024&amp;month=7`,
		`class="agenda-card"`,
		`<div class="meta span">9 - 11 Jun</div>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("calendar page missing %q", want)
		}
	}
}

func TestCalendarPageLanguageAndTheme(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/?theme=midnight-dark", nil)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9,en;q=0.5")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Juni 2024") || !strings.Contains(body, `lang="id"`) {
		t.Error("expected Indonesian rendering")
	}
	if !strings.Contains(body, "--color-primary: #818cf8") {
		t.Error("expected midnight palette")
	}
}

func TestBoardPage(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/board", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"TODO (1)", "IN PROGRESS (0)", "Edit launch video", "HIGH", `class="card today"`} {
		if !strings.Contains(body, want) {
			t.Errorf("board page missing %q", want)
		}
	}
}

type stubRefresher struct{ calls int }

func (s *stubRefresher) Refresh(context.Context) (feeds.Report, error) {
	s.calls++
	return feeds.Report{Sources: 1, Imported: 4}, nil
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, nil)
	if rec := f.do(t, http.MethodPost, "/api/refresh", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("without refresher = %d", rec.Code)
	}

	stub := &stubRefresher{}
	f.srv.refresher = stub
	rec := f.do(t, http.MethodPost, "/api/refresh", "")
	if rec.Code != http.StatusOK || stub.calls != 1 {
		t.Fatalf("refresh = %d calls=%d", rec.Code, stub.calls)
	}
	if rep := decode[feeds.Report](t, rec); rep.Imported != 4 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestBasicAuth(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "team", Password: "s3cret"}
	})

	if rec := f.do(t, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health behind auth = %d", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/tasks", "")
	if rec.Code != http.StatusUnauthorized || rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("unauthenticated = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.SetBasicAuth("team", "wrong")
	rec = httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.SetBasicAuth("team", "s3cret")
	rec = httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated = %d", rec.Code)
	}
}

func TestPreviewMissing(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.SnapshotPath = t.TempDir() + "/missing.png"
	})
	if rec := f.do(t, http.MethodGet, "/preview.png", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("preview = %d", rec.Code)
	}
}

func TestMembersAndStats(t *testing.T) {
	f := newFixture(t, nil)

	if rec := f.do(t, http.MethodPost, "/api/members", `{"name":"Ana","role":"admin"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid role status = %d", rec.Code)
	}
	rec := f.do(t, http.MethodPost, "/api/members", `{"name":"Ana","email":"ana@example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member status = %d", rec.Code)
	}
	ana := decode[model.Member](t, rec)
	if ana.Role != model.RoleMember {
		t.Fatalf("role = %q", ana.Role)
	}

	members := decode[[]model.Member](t, f.do(t, http.MethodGet, "/api/members", ""))
	if len(members) != 1 || members[0].ID != ana.ID {
		t.Fatalf("members = %+v", members)
	}
	if rec := f.do(t, http.MethodGet, "/api/members/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown member status = %d", rec.Code)
	}

	if rec := f.do(t, http.MethodPost, "/api/tasks", `{"title":"Ghost","due_date":"2024-06-12","assignee_id":"ghost"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown assignee status = %d", rec.Code)
	}
	rec = f.do(t, http.MethodPost, "/api/tasks", `{"title":"Color grade","due_date":"2024-06-12","assignee_id":"`+ana.ID+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task status = %d", rec.Code)
	}
	graded := decode[model.Task](t, rec)
	if rec := f.do(t, http.MethodPatch, "/api/tasks/"+graded.ID+"/status", `{"status":"done"}`); rec.Code != http.StatusOK {
		t.Fatalf("move status = %d", rec.Code)
	}

	st := decode[board.TeamStats](t, f.do(t, http.MethodGet, "/api/stats", ""))
	if st.TotalTasks != 2 || st.CompletedTasks != 1 || st.ActiveTasks != 1 || st.Members != 1 || st.Unassigned != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if len(st.PerMember) != 1 || st.PerMember[0].Completed != 1 || st.PerMember[0].Active != 0 {
		t.Fatalf("per member = %+v", st.PerMember)
	}

	body := f.do(t, http.MethodGet, "/board", "").Body.String()
	for _, want := range []string{"Total Tasks", `data-member="` + ana.ID + `"`, "HIGH", " · Ana"} {
		if !strings.Contains(body, want) {
			t.Errorf("board page missing %q", want)
		}
	}
}
