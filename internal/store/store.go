// Package store holds the workspace state in memory and snapshots it to
// a YAML file after every mutation.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"teamcal/internal/board"
	"teamcal/internal/calendar"
	"teamcal/internal/config"
	appLog "teamcal/internal/log"
	"teamcal/internal/model"
)

const maxActivity = 200

var (
	ErrTaskNotFound    = board.ErrTaskNotFound
	ErrEventNotFound   = errors.New("event not found")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRange    = errors.New("end date is before start date")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrMissingTitle    = errors.New("title is required")
	ErrMemberNotFound  = errors.New("member not found")
	ErrUnknownAssignee = errors.New("assignee is not a team member")
	ErrInvalidRole     = errors.New("invalid member role")
	ErrMissingName     = errors.New("name is required")
)

// Workspace is the persisted document.
type Workspace struct {
	Columns    []model.KanbanColumn `yaml:"columns"`
	EventTypes []model.EventType    `yaml:"event_types"`
	Members    []model.Member       `yaml:"members"`
	Tasks      []model.Task         `yaml:"tasks"`
	Events     []model.Event        `yaml:"events"`
	Activity   []model.Activity     `yaml:"activity"`
}

// DefaultWorkspace is the state of a freshly created workspace.
func DefaultWorkspace() Workspace {
	return Workspace{
		Columns: []model.KanbanColumn{
			{ID: model.StatusTodo, Title: "To Do", Theme: "slate"},
			{ID: model.StatusInProgress, Title: "In Progress", Theme: "blue"},
			{ID: model.StatusDone, Title: "Done", Theme: "emerald"},
		},
		EventTypes: []model.EventType{
			{ID: "meeting", Label: "Meeting", Theme: "purple"},
			{ID: "workshop", Label: "Workshop", Theme: "orange"},
			{ID: "deadline", Label: "Deadline", Theme: "red"},
		},
		Members:  []model.Member{},
		Tasks:    []model.Task{},
		Events:   []model.Event{},
		Activity: []model.Activity{},
	}
}

func (ws Workspace) clone() Workspace {
	return Workspace{
		Columns:    slices.Clone(ws.Columns),
		EventTypes: slices.Clone(ws.EventTypes),
		Members:    slices.Clone(ws.Members),
		Tasks:      slices.Clone(ws.Tasks),
		Events:     slices.Clone(ws.Events),
		Activity:   slices.Clone(ws.Activity),
	}
}

// Store is safe for concurrent use. Readers receive copies.
type Store struct {
	mu   sync.RWMutex
	path string
	ws   Workspace
	now  func() time.Time
}

// Open loads the workspace at path, creating it with DefaultWorkspace
// on first run.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	s := &Store{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		s.ws = DefaultWorkspace()
		if err := s.save(); err != nil {
			return nil, err
		}
		appLog.Info("workspace created", "path", path)
		return s, nil
	}

	if err := yaml.Unmarshal(data, &s.ws); err != nil {
		return nil, fmt.Errorf("parse workspace %s: %w", path, err)
	}
	if len(s.ws.Columns) == 0 {
		s.ws.Columns = DefaultWorkspace().Columns
	}
	appLog.Info("workspace loaded",
		"path", path,
		"tasks", len(s.ws.Tasks),
		"events", len(s.ws.Events),
	)
	return s, nil
}

// NewMemory returns a store that never touches disk.
func NewMemory(ws Workspace) *Store {
	return &Store{ws: ws, now: time.Now}
}

// save must be called with mu held for writing.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(&s.ws)
	if err != nil {
		return err
	}
	return config.WriteFileAtomic(s.path, data)
}

// mutate applies fn to the workspace and saves it. If fn or the save
// fails the workspace is restored to its previous state. mu must be
// held for writing.
func (s *Store) mutate(fn func(ws *Workspace) error) error {
	prev := s.ws.clone()
	if err := fn(&s.ws); err != nil {
		s.ws = prev
		return err
	}
	if err := s.save(); err != nil {
		s.ws = prev
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

// Tasks returns a snapshot of all tasks.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.ws.Tasks...)
}

// Events returns a snapshot of all events.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Event(nil), s.ws.Events...)
}

func (s *Store) Columns() []model.KanbanColumn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.KanbanColumn(nil), s.ws.Columns...)
}

func (s *Store) EventTypes() []model.EventType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.EventType(nil), s.ws.EventTypes...)
}

// Activity returns the log, newest first.
func (s *Store) Activity() []model.Activity {
	s.mu.RLock()
	out := append([]model.Activity(nil), s.ws.Activity...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Members returns the team roster.
func (s *Store) Members() []model.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Member(nil), s.ws.Members...)
}

func (s *Store) Member(id string) (model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.ws.Members {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Member{}, ErrMemberNotFound
}

func (s *Store) Task(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.ws.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Task{}, ErrTaskNotFound
}

func (s *Store) Event(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.ws.Events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Event{}, ErrEventNotFound
}

// canonicalDate rewrites a date to YYYY-MM-DD so the resolver's string
// match on due dates sees the same key it builds itself.
func canonicalDate(s string) (string, error) {
	d, ok := calendar.ParseDate(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d.String(), nil
}

// CreateTask validates t, assigns an ID and stores it.
func (s *Store) CreateTask(t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return model.Task{}, ErrMissingTitle
	}
	due, err := canonicalDate(t.DueDate)
	if err != nil {
		return model.Task{}, err
	}
	t.DueDate = due
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !t.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	t.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.mutate(func(ws *Workspace) error {
		if t.AssigneeID != "" && !hasMember(ws.Members, t.AssigneeID) {
			return fmt.Errorf("%w: %q", ErrUnknownAssignee, t.AssigneeID)
		}
		if t.Status == "" && len(ws.Columns) > 0 {
			t.Status = ws.Columns[0].ID
		}
		ws.Tasks = append(ws.Tasks, t)
		s.record(ws, model.ActivityTask, "created task", t.Title)
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func hasMember(members []model.Member, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// CreateEvent validates ev, assigns an ID and stores it. An end date
// before the start date is rejected with ErrInvalidRange.
func (s *Store) CreateEvent(ev model.Event) (model.Event, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return model.Event{}, ErrMissingTitle
	}
	if err := normalizeEvent(&ev); err != nil {
		return model.Event{}, err
	}
	ev.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.mutate(func(ws *Workspace) error {
		ws.Events = append(ws.Events, ev)
		s.record(ws, model.ActivityEvent, "scheduled event", ev.Title)
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

func normalizeEvent(ev *model.Event) error {
	start, err := canonicalDate(ev.Date)
	if err != nil {
		return err
	}
	ev.Date = start
	if ev.EndDate != "" {
		end, err := canonicalDate(ev.EndDate)
		if err != nil {
			return err
		}
		ev.EndDate = end
	}
	if !calendar.ValidRange(*ev) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, ev.Date, ev.EndDate)
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(ws *Workspace) error {
		i := slices.IndexFunc(ws.Tasks, func(t model.Task) bool { return t.ID == id })
		if i < 0 {
			return ErrTaskNotFound
		}
		title := ws.Tasks[i].Title
		ws.Tasks = slices.Delete(ws.Tasks, i, i+1)
		s.record(ws, model.ActivityTask, "deleted task", title)
		return nil
	})
}

func (s *Store) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutate(func(ws *Workspace) error {
		i := slices.IndexFunc(ws.Events, func(e model.Event) bool { return e.ID == id })
		if i < 0 {
			return ErrEventNotFound
		}
		title := ws.Events[i].Title
		ws.Events = slices.Delete(ws.Events, i, i+1)
		s.record(ws, model.ActivityEvent, "deleted event", title)
		return nil
	})
}

// MoveTask moves a task to another workflow column.
func (s *Store) MoveTask(id, status string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t model.Task
	err := s.mutate(func(ws *Workspace) error {
		var err error
		t, err = board.MoveTask(ws.Tasks, id, status)
		if err != nil {
			return err
		}
		action := "moved task to " + t.Status
		if t.Status == model.StatusDone {
			action = "completed task"
		}
		s.record(ws, model.ActivityTask, action, t.Title)
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// AddMember validates m, assigns an ID and adds it to the roster.
func (s *Store) AddMember(m model.Member) (model.Member, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return model.Member{}, ErrMissingName
	}
	if m.Role == "" {
		m.Role = model.RoleMember
	}
	if !m.Role.Valid() {
		return model.Member{}, fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
	}
	m.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.mutate(func(ws *Workspace) error {
		ws.Members = append(ws.Members, m)
		s.record(ws, model.ActivityTeam, "joined the team", m.Name)
		return nil
	})
	if err != nil {
		return model.Member{}, err
	}
	return m, nil
}

// ReplaceSourceEvents swaps every event imported from sourceID for
// events. Events with malformed dates or inverted ranges are skipped.
// It returns the number of events stored.
func (s *Store) ReplaceSourceEvents(sourceID string, events []model.Event) (int, error) {
	if sourceID == "" {
		return 0, errors.New("source id is empty")
	}

	incoming := make([]model.Event, 0, len(events))
	for _, ev := range events {
		ev.SourceID = sourceID
		if err := normalizeEvent(&ev); err != nil {
			appLog.Error("store: skipping imported event", err, "source", sourceID, "title", ev.Title)
			continue
		}
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		incoming = append(incoming, ev)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(ws *Workspace) error {
		kept := make([]model.Event, 0, len(ws.Events)+len(incoming))
		for _, e := range ws.Events {
			if e.SourceID != sourceID {
				kept = append(kept, e)
			}
		}
		ws.Events = append(kept, incoming...)
		s.record(ws, model.ActivityFeed, fmt.Sprintf("imported %d events", len(incoming)), sourceID)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(incoming), nil
}

// record appends to the activity log of ws, keeping the newest
// maxActivity entries.
func (s *Store) record(ws *Workspace, kind model.ActivityKind, action, target string) {
	ws.Activity = append(ws.Activity, model.Activity{
		ID:        uuid.NewString(),
		Action:    action,
		Target:    target,
		Kind:      kind,
		Timestamp: s.now().UTC(),
	})
	if n := len(ws.Activity); n > maxActivity {
		ws.Activity = append([]model.Activity(nil), ws.Activity[n-maxActivity:]...)
	}
}
