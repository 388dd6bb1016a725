package model

import "time"

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Default workflow column identifiers. Status is an open set; these are
// only the columns a fresh workspace starts with.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

type Subtask struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	IsCompleted bool   `yaml:"is_completed" json:"is_completed"`
}

// Task is a single work item. It occurs on exactly one calendar day,
// DueDate, stored in canonical YYYY-MM-DD form.
type Task struct {
	ID          string    `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Status      string    `yaml:"status" json:"status"`
	AssigneeID  string    `yaml:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	DueDate     string    `yaml:"due_date" json:"due_date"`
	Priority    Priority  `yaml:"priority" json:"priority"`
	Duration    string    `yaml:"duration,omitempty" json:"duration,omitempty"`
	AssetLink   string    `yaml:"asset_link,omitempty" json:"asset_link,omitempty"`
	ProjectLink string    `yaml:"project_link,omitempty" json:"project_link,omitempty"`
	Subtasks    []Subtask `yaml:"subtasks,omitempty" json:"subtasks,omitempty"`
}

// Event is a calendar entry spanning the inclusive day range
// [Date, EndDate]. An empty EndDate means a single-day event.
type Event struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Date    string `yaml:"date" json:"date"`
	EndDate string `yaml:"end_date,omitempty" json:"end_date,omitempty"`

	// StartTime / EndTime are HH:MM strings used for display only.
	StartTime string `yaml:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   string `yaml:"end_time,omitempty" json:"end_time,omitempty"`

	Type       string   `yaml:"type,omitempty" json:"type,omitempty"`
	Location   string   `yaml:"location,omitempty" json:"location,omitempty"`
	ClientName string   `yaml:"client_name,omitempty" json:"client_name,omitempty"`
	Attendees  []string `yaml:"attendees,omitempty" json:"attendees,omitempty"`

	// SourceID is empty for locally created events and holds the
	// subscription ID for events imported from an ICS feed.
	SourceID string `yaml:"source_id,omitempty" json:"source_id,omitempty"`
}

// End returns EndDate, defaulting to Date when unset.
func (e Event) End() string {
	if e.EndDate == "" {
		return e.Date
	}
	return e.EndDate
}

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
	RoleGuest  MemberRole = "guest"
)

// Valid reports whether r is one of the known roles.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleMember, RoleGuest:
		return true
	}
	return false
}

// Member is one person on the team roster. Task.AssigneeID refers to
// Member.ID.
type Member struct {
	ID       string     `yaml:"id" json:"id"`
	Name     string     `yaml:"name" json:"name"`
	Username string     `yaml:"username,omitempty" json:"username,omitempty"`
	Email    string     `yaml:"email,omitempty" json:"email,omitempty"`
	Role     MemberRole `yaml:"role" json:"role"`
}

// KanbanColumn is one workflow column; its ID is the task status value.
type KanbanColumn struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Theme string `yaml:"theme" json:"theme"`
}

// EventType labels a category of events with a colour theme.
type EventType struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Theme string `yaml:"theme" json:"theme"`
}

type ActivityKind string

const (
	ActivityTask  ActivityKind = "task"
	ActivityEvent ActivityKind = "event"
	ActivityFeed  ActivityKind = "feed"
	ActivityTeam  ActivityKind = "team"
)

// Activity is one entry of the workspace activity log.
type Activity struct {
	ID        string       `yaml:"id" json:"id"`
	Action    string       `yaml:"action" json:"action"`
	Target    string       `yaml:"target" json:"target"`
	Kind      ActivityKind `yaml:"kind" json:"kind"`
	Timestamp time.Time    `yaml:"timestamp" json:"timestamp"`
}
