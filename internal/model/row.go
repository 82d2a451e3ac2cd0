package model

import "time"

// Remote table names.
const (
	TableMembers     = "members"
	TableTasks       = "tasks"
	TableAttachments = "attachments"
	TableRoutines    = "routines"
)

// Rows mirror the remote tables. Column names are snake_case on the wire.

// MaxPhoneLen matches the phone_number column size.
const MaxPhoneLen = 32

// MemberRow.PhoneNumber may be empty; non-empty phones are kept unique by
// the roster service.
type MemberRow struct {
	ID          string `gorm:"primaryKey;column:id" json:"id"`
	Name        string `gorm:"column:name" json:"name"`
	Role        string `gorm:"column:role" json:"role"`
	PhoneNumber string `gorm:"column:phone_number;size:32;index" json:"phone_number"`
	IsAdmin     bool   `gorm:"column:is_admin" json:"is_admin"`
	Avatar      string `gorm:"column:avatar" json:"avatar"`
}

type TaskRow struct {
	ID          string          `gorm:"primaryKey;column:id" json:"id"`
	Title       string          `gorm:"column:title" json:"title"`
	Description string          `gorm:"column:description" json:"description"`
	Priority    string          `gorm:"column:priority" json:"priority"`
	Status      string          `gorm:"column:status" json:"status"`
	DueDate     string          `gorm:"column:due_date" json:"due_date"`
	AssigneeID  *string         `gorm:"column:assignee_id" json:"assignee_id"`
	Attachments []AttachmentRow `gorm:"-" json:"attachments,omitempty"`
}

type AttachmentRow struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	TaskID    string    `gorm:"column:task_id;index" json:"task_id"`
	Type      string    `gorm:"column:type" json:"type"`
	URL       string    `gorm:"column:url" json:"url"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

type RoutineRow struct {
	ID              string `gorm:"primaryKey;column:id" json:"id"`
	Title           string `gorm:"column:title" json:"title"`
	Description     string `gorm:"column:description" json:"description"`
	DefaultPriority string `gorm:"column:default_priority" json:"default_priority"`
}

func (MemberRow) TableName() string     { return TableMembers }
func (TaskRow) TableName() string       { return TableTasks }
func (AttachmentRow) TableName() string { return TableAttachments }
func (RoutineRow) TableName() string    { return TableRoutines }

func MemberToRow(m Member) MemberRow {
	return MemberRow{
		ID: m.ID, Name: m.Name, Role: m.Role,
		PhoneNumber: m.PhoneNumber, IsAdmin: m.IsAdmin, Avatar: m.Avatar,
	}
}

func MemberFromRow(r MemberRow) Member {
	return Member{
		ID: r.ID, Name: r.Name, Role: r.Role,
		PhoneNumber: r.PhoneNumber, IsAdmin: r.IsAdmin, Avatar: r.Avatar,
	}
}

func AttachmentToRow(taskID string, a Attachment) AttachmentRow {
	return AttachmentRow{
		ID: a.ID, TaskID: taskID, Type: string(a.Type),
		URL: a.URL, Name: a.Name, CreatedAt: a.CreatedAt,
	}
}

func AttachmentFromRow(r AttachmentRow) Attachment {
	return Attachment{
		ID: r.ID, Type: AttachmentKind(r.Type),
		URL: r.URL, Name: r.Name, CreatedAt: r.CreatedAt,
	}
}

// TaskToRow maps a task onto its remote row, attachments included.
// Writers that only touch the tasks table ignore Attachments.
func TaskToRow(t Task) TaskRow {
	row := TaskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
	}
	if t.AssigneeID != "" {
		id := t.AssigneeID
		row.AssigneeID = &id
	}
	if len(t.Attachments) > 0 {
		row.Attachments = make([]AttachmentRow, 0, len(t.Attachments))
		for _, a := range t.Attachments {
			row.Attachments = append(row.Attachments, AttachmentToRow(t.ID, a))
		}
	}
	return row
}

func TaskFromRow(r TaskRow) Task {
	t := Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    Priority(r.Priority),
		Status:      Status(r.Status),
		DueDate:     r.DueDate,
		Attachments: make([]Attachment, 0, len(r.Attachments)),
	}
	if r.AssigneeID != nil {
		t.AssigneeID = *r.AssigneeID
	}
	for _, a := range r.Attachments {
		t.Attachments = append(t.Attachments, AttachmentFromRow(a))
	}
	return t
}

func RoutineToRow(r Routine) RoutineRow {
	return RoutineRow{
		ID: r.ID, Title: r.Title, Description: r.Description,
		DefaultPriority: string(r.DefaultPriority),
	}
}

func RoutineFromRow(r RoutineRow) Routine {
	return Routine{
		ID: r.ID, Title: r.Title, Description: r.Description,
		DefaultPriority: Priority(r.DefaultPriority),
	}
}
