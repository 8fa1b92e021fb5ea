package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusDeleted:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a task may move from s to next. Pending
// tasks can be completed or deleted; completed and deleted tasks can only
// be restored to pending.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusDeleted
	case StatusCompleted, StatusDeleted:
		return next == StatusPending
	default:
		return false
	}
}

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting: high > medium > low > none.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// PriorityFromDirective maps the short directive values (H, M, L) to a
// priority. Unrecognized values map to PriorityNone without error; the
// directive is simply dropped.
func PriorityFromDirective(v string) Priority {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "H":
		return PriorityHigh
	case "M":
		return PriorityMedium
	case "L":
		return PriorityLow
	default:
		return PriorityNone
	}
}

// Task is the in-memory task record. UUID is the storage row key and is
// injected at the store boundary; it never appears inside the encoded
// payload. Note carries the back-reference to an external note, persisted
// as a "task-note:" annotation rather than a payload field of its own.
type Task struct {
	UUID             string
	Project          string
	Description      string
	Status           Status
	Priority         Priority
	Due              *time.Time
	Tags             []Tag
	Note             string
	LocationReminder *LocationReminder
	CriticalAlert    *CriticalAlert
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.UUID) == "" {
		return errors.New("model: task uuid is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return errors.New("model: task description is required")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.LocationReminder != nil {
		if err := t.LocationReminder.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasTag reports whether the task carries a tag with the given name.
// Tag names are case-sensitive.
func (t Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// AddTag appends tag unless a tag with the same name is already present.
func (t *Task) AddTag(tag Tag) {
	if t.HasTag(tag.Name) {
		return
	}
	t.Tags = append(t.Tags, tag)
}
