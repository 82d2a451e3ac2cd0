package model

import (
	"time"
)

type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityMedium Priority = "MEDIUM"
	PriorityNormal Priority = "NORMAL"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityMedium, PriorityNormal:
		return true
	}
	return false
}

type Status string

const (
	StatusTodo  Status = "TODO"
	StatusDoing Status = "DOING"
	StatusDone  Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

func (s Status) rank() int {
	switch s {
	case StatusTodo:
		return 0
	case StatusDoing:
		return 1
	case StatusDone:
		return 2
	}
	return -1
}

// CanMove reports whether a task may go from s to next. Adjacent columns are
// reachable in either direction; DONE may also be reopened straight to TODO.
// TODO never jumps to DONE.
func (s Status) CanMove(next Status) bool {
	a, b := s.rank(), next.rank()
	if a < 0 || b < 0 {
		return false
	}
	if s == StatusDone && next == StatusTodo {
		return true
	}
	d := a - b
	return d == 1 || d == -1
}

type AttachmentKind string

const (
	KindImage AttachmentKind = "image"
	KindVideo AttachmentKind = "video"
)

type Member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`
}

type Attachment struct {
	ID        string         `json:"id"`
	Type      AttachmentKind `json:"type"`
	URL       string         `json:"url"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	AssigneeID  string       `json:"assigneeId,omitempty"`
	Priority    Priority     `json:"priority"`
	Status      Status       `json:"status"`
	DueDate     string       `json:"dueDate"`
	Attachments []Attachment `json:"attachments"`
}

// Clone returns a copy that shares no slice storage with t.
func (t Task) Clone() Task {
	c := t
	c.Attachments = make([]Attachment, len(t.Attachments))
	copy(c.Attachments, t.Attachments)
	return c
}

type Routine struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	DefaultPriority Priority `json:"defaultPriority"`
	Description     string   `json:"description"`
}

// RoutineLogEntry marks a routine as started on a local calendar date.
type RoutineLogEntry struct {
	RoutineID string `json:"id"`
	Date      string `json:"date"`
}
