package task

import (
	"fmt"
	"time"
)

// Kind distinguishes flat tasks from milestone-bearing projects.
type Kind string

const (
	KindSimple  Kind = "simple"
	KindProject Kind = "project"
)

// Status represents the lifecycle status of a task.
type Status string

const (
	StatusActive   Status = "active"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

// Priority buckets for scheduling metadata.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Milestone is a unit of project work with its own estimate.
type Milestone struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Committed        bool   `json:"committed"`
	Completed        bool   `json:"completed"`
	Order            int    `json:"order"`
}

// Task is a unit of work, simple or project-shaped.
type Task struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Kind             Kind        `json:"kind"`
	Status           Status      `json:"status"`
	EstimatedMinutes int         `json:"estimated_minutes,omitempty"`
	Milestones       []Milestone `json:"milestones,omitempty"`
	CommittedWeek    string      `json:"committed_week,omitempty"`
	DueDate          *time.Time  `json:"due_date,omitempty"`
	Priority         Priority    `json:"priority,omitempty"`
	ObjectiveID      string      `json:"objective_id,omitempty"`
	KeyResultID      string      `json:"key_result_id,omitempty"`
	AreaID           string      `json:"area_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	ModifiedAt       time.Time   `json:"modified_at"`
}

// CommittedThisWeek reports whether the task is committed to the given week.
func (t Task) CommittedThisWeek(week string) bool {
	return t.CommittedWeek == week && t.Status == StatusActive
}

// CommittedMinutes returns the task's contribution to weekly load. Projects
// sum the estimates of committed, not-yet-completed milestones. Simple tasks
// contribute a flat default unless they carry an explicit estimate.
func (t Task) CommittedMinutes(defaultMinutes int) int {
	if t.Kind == KindProject {
		total := 0
		for _, m := range t.Milestones {
			if m.Committed && !m.Completed {
				total += m.EstimatedMinutes
			}
		}
		return total
	}
	if t.EstimatedMinutes > 0 {
		return t.EstimatedMinutes
	}
	return defaultMinutes
}

// PlannedMinutes returns the minutes a task would add if committed as a
// candidate. Projects count every incomplete milestone; simple tasks use
// their estimate or the flat default.
func (t Task) PlannedMinutes(defaultMinutes int) int {
	if t.Kind == KindProject {
		total := 0
		for _, m := range t.Milestones {
			if !m.Completed {
				total += m.EstimatedMinutes
			}
		}
		return total
	}
	if t.EstimatedMinutes > 0 {
		return t.EstimatedMinutes
	}
	return defaultMinutes
}

// WeekToken returns the ISO week token for a time, e.g. "2026-W09".
func WeekToken(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// InboxItem is an unprocessed capture awaiting triage into a task.
type InboxItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarBlock is a reserved interval on a specific date.
type CalendarBlock struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // YYYY-MM-DD
	StartMin  int       `json:"start_min"`
	EndMin    int       `json:"end_min"`
	TaskID    string    `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Overlaps reports half-open interval overlap with another block on the same
// date: new.start < existing.end AND new.end > existing.start.
func (b CalendarBlock) Overlaps(other CalendarBlock) bool {
	if b.Date != other.Date {
		return false
	}
	return b.StartMin < other.EndMin && b.EndMin > other.StartMin
}
