// Package board implements the kanban workflow operations on task
// snapshots. It never stores state; callers own the task slice.
package board

import (
	"errors"
	"strings"

	"teamcal/internal/calendar"
	"teamcal/internal/model"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("status is empty")
)

// MoveTask sets the status of the task with the given id. tasks is
// updated in place and the updated task is returned. Status values are
// an open set; any non-empty column ID is accepted.
func MoveTask(tasks []model.Task, id, status string) (model.Task, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return model.Task{}, ErrInvalidStatus
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Status = status
			return tasks[i], nil
		}
	}
	return model.Task{}, ErrTaskNotFound
}

// Lane is one column of the board with its tasks.
type Lane struct {
	Column model.KanbanColumn
	Tasks  []model.Task
}

// Group distributes tasks over columns, keeping column order and task
// order. Tasks whose status matches no column are returned as orphans.
func Group(columns []model.KanbanColumn, tasks []model.Task) (lanes []Lane, orphans []model.Task) {
	index := make(map[string]int, len(columns))
	lanes = make([]Lane, len(columns))
	for i, c := range columns {
		lanes[i] = Lane{Column: c, Tasks: make([]model.Task, 0)}
		index[c.ID] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			lanes[i].Tasks = append(lanes[i].Tasks, t)
			continue
		}
		orphans = append(orphans, t)
	}
	return lanes, orphans
}

type DueState string

const (
	DueNone     DueState = "none"
	DueDone     DueState = "done"
	DueOverdue  DueState = "overdue"
	DueToday    DueState = "today"
	DueUpcoming DueState = "upcoming"
)

// DueStatus classifies a task against today. Done tasks are never
// overdue; malformed due dates classify as DueNone.
func DueStatus(t model.Task, today calendar.Date, doneStatus string) DueState {
	if t.Status == doneStatus {
		return DueDone
	}
	due, ok := calendar.ParseDate(t.DueDate)
	if !ok {
		return DueNone
	}
	switch due.Compare(today) {
	case -1:
		return DueOverdue
	case 0:
		return DueToday
	}
	return DueUpcoming
}

// MemberLoad counts the tasks assigned to one member.
type MemberLoad struct {
	MemberID  string `json:"member_id"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
	Active    int    `json:"active"`
}

// TeamStats summarizes the board for the stats cards.
type TeamStats struct {
	TotalTasks     int          `json:"total_tasks"`
	CompletedTasks int          `json:"completed_tasks"`
	ActiveTasks    int          `json:"active_tasks"`
	Members        int          `json:"members"`
	Unassigned     int          `json:"unassigned"`
	PerMember      []MemberLoad `json:"per_member"`
}

// Stats counts tasks by completion, overall and per member. A task is
// completed when its status is doneStatus. Tasks whose assignee is
// empty or not on the roster count as unassigned.
func Stats(tasks []model.Task, doneStatus string, members []model.Member) TeamStats {
	st := TeamStats{
		TotalTasks: len(tasks),
		Members:    len(members),
		PerMember:  make([]MemberLoad, len(members)),
	}
	index := make(map[string]int, len(members))
	for i, m := range members {
		st.PerMember[i] = MemberLoad{MemberID: m.ID, Name: m.Name}
		index[m.ID] = i
	}

	for _, t := range tasks {
		done := t.Status == doneStatus
		if done {
			st.CompletedTasks++
		} else {
			st.ActiveTasks++
		}

		i, ok := index[t.AssigneeID]
		if !ok {
			st.Unassigned++
			continue
		}
		if done {
			st.PerMember[i].Completed++
		} else {
			st.PerMember[i].Active++
		}
	}
	return st
}
