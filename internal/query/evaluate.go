// Package query holds the pure sorting and predicate-evaluation functions
// applied when presenting task lists.
package query

import (
	"sort"

	"github.com/sandeepkv93/taskvault/internal/model"
)

// SortTasks orders tasks in place: dated tasks first by due date
// ascending, then undated tasks by priority descending. Ties keep their
// original relative order.
func SortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskLess(tasks[i], tasks[j])
	})
}

func taskLess(a, b model.Task) bool {
	switch {
	case a.Due != nil && b.Due != nil:
		return a.Due.Before(*b.Due)
	case a.Due != nil:
		return true
	case b.Due != nil:
		return false
	default:
		return a.Priority.Rank() > b.Priority.Rank()
	}
}

// Matches reports whether task satisfies every field the filter explicitly
// set. Unset fields impose no constraint. Tag inclusion requires every
// included name on the task; exclusion requires every excluded name
// absent. A filter with nothing set matches nothing, but such filters are
// rejected before they get here.
func Matches(task model.Task, filter model.Filter) bool {
	if filter.DidSetProject && task.Project != filter.Project {
		return false
	}
	if filter.DidSetStatus && task.Status != filter.Status {
		return false
	}
	if filter.DidSetPriority && task.Priority != filter.Priority {
		return false
	}
	if filter.DidSetDue {
		if task.Due == nil || filter.Due == nil || !task.Due.Equal(*filter.Due) {
			return false
		}
	}
	for _, name := range filter.IncludedTags {
		if !task.HasTag(name) {
			return false
		}
	}
	for _, name := range filter.ExcludedTags {
		if task.HasTag(name) {
			return false
		}
	}
	return true
}

// Filtered returns the tasks matching filter, preserving input order.
func Filtered(tasks []model.Task, filter model.Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, filter) {
			out = append(out, t)
		}
	}
	return out
}
