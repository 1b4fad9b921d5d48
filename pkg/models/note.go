package models

import (
	"time"
)

type NoteStatus string

const (
	NoteStatusDraft     NoteStatus = "draft"
	NoteStatusActive    NoteStatus = "active"
	NoteStatusDone      NoteStatus = "done"
	NoteStatusPostponed NoteStatus = "postponed"
)

// NoteStatuses lists the statuses in display order.
var NoteStatuses = []NoteStatus{NoteStatusDraft, NoteStatusActive, NoteStatusDone, NoteStatusPostponed}

func (s NoteStatus) Valid() bool {
	switch s {
	case NoteStatusDraft, NoteStatusActive, NoteStatusDone, NoteStatusPostponed:
		return true
	}
	return false
}

type NotePriority string

const (
	NotePriorityLow    NotePriority = "low"
	NotePriorityMedium NotePriority = "medium"
	NotePriorityHigh   NotePriority = "high"
)

var NotePriorities = []NotePriority{NotePriorityLow, NotePriorityMedium, NotePriorityHigh}

func (p NotePriority) Valid() bool {
	switch p {
	case NotePriorityLow, NotePriorityMedium, NotePriorityHigh:
		return true
	}
	return false
}

// Note is the full representation returned by the API, with category and
// tags resolved.
type Note struct {
	ID           uint         `json:"id"`
	Title        string       `json:"title"`
	Content      *string      `json:"content"`
	IsImportant  bool         `json:"is_important"`
	Status       NoteStatus   `json:"status"`
	Priority     NotePriority `json:"priority"`
	ReminderDate *time.Time   `json:"reminder_date"`
	CategoryID   *uint        `json:"category_id"`
	TagIDs       []uint       `json:"tag_ids"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Category     *Category    `json:"category"`
	Tags         []Tag        `json:"tags"`
}

// NoteCreate is the body of a create request. Status and Priority fall back
// to active/medium when empty.
type NoteCreate struct {
	Title        string       `json:"title" yaml:"title"`
	Content      *string      `json:"content" yaml:"content"`
	IsImportant  bool         `json:"is_important" yaml:"is_important"`
	Status       NoteStatus   `json:"status" yaml:"status"`
	Priority     NotePriority `json:"priority" yaml:"priority"`
	ReminderDate *Timestamp   `json:"reminder_date" yaml:"reminder_date"`
	CategoryID   *uint        `json:"category_id" yaml:"category_id"`
	TagIDs       []uint       `json:"tag_ids" yaml:"tag_ids"`
}

// NoteUpdate carries only the fields the caller supplied. A field whose
// Optional is not Set is left untouched.
type NoteUpdate struct {
	Title        Optional[string]       `json:"title"`
	Content      Optional[string]       `json:"content"`
	IsImportant  Optional[bool]         `json:"is_important"`
	Status       Optional[NoteStatus]   `json:"status"`
	Priority     Optional[NotePriority] `json:"priority"`
	ReminderDate Optional[Timestamp]    `json:"reminder_date"`
	CategoryID   Optional[uint]         `json:"category_id"`
	TagIDs       Optional[[]uint]       `json:"tag_ids"`
}

// NoteQuery holds the optional list filters as received from a client.
type NoteQuery struct {
	CategoryID *uint
	TagID      *uint
	Status     string
	Priority   string
	Important  bool
	Before     *time.Time
	Search     string
	Skip       int
	Limit      int
}

type NoteList struct {
	Items []Note `json:"items"`
	Total int64  `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}
