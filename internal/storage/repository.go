package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/taskvault/internal/model"
)

var (
	ErrNotFound         = errors.New("storage: not found")
	ErrAlreadyExists    = errors.New("storage: record already exists")
	ErrMalformedPayload = errors.New("storage: malformed task payload")
)

// TaskRepository owns the persisted table of task records, keyed by
// lowercased uuid with a JSON payload per row. Records are never hard
// deleted; "deleted" is a status.
type TaskRepository interface {
	GetPendingTasks(ctx context.Context, sorted bool) ([]model.Task, error)
	GetTask(ctx context.Context, uuid string) (model.Task, error)
	CreateTask(ctx context.Context, in model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, in model.Task) error
	UpdatePendingTasks(ctx context.Context, uuids []string, status model.Status) error
	TogglePendingTasksStatus(ctx context.Context, uuids []string) error
	AddAnnotation(ctx context.Context, uuid, text string) error
}

// SavedFilter pairs a persisted filter with its storage id. The id exists
// only for persistence; filter identity is structural.
type SavedFilter struct {
	ID     string
	Filter model.Filter
}

type FilterRepository interface {
	SaveFilter(ctx context.Context, f model.Filter) (SavedFilter, error)
	ListFilters(ctx context.Context) ([]SavedFilter, error)
	DeleteFilter(ctx context.Context, id string) error
	SelectFilter(ctx context.Context, id string) error
	SelectedFilter(ctx context.Context) (SavedFilter, error)
}

type TagRepository interface {
	EnsureTag(ctx context.Context, name string) (model.Tag, error)
	GetTag(ctx context.Context, name string) (model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}
