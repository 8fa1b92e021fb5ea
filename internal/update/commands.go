package update

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/storage"
)

func (m Model) loadTasksCmd() tea.Cmd {
	repo := m.deps.Tasks
	return func() tea.Msg {
		tasks, err := repo.GetPendingTasks(context.Background(), true)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

func (m Model) createTaskCmd(task model.Task) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		created, err := deps.Tasks.CreateTask(context.Background(), task)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		if deps.Tags != nil {
			for _, tag := range created.Tags {
				if _, err := deps.Tags.EnsureTag(context.Background(), tag.Name); err == nil && deps.Suggest != nil {
					deps.Suggest.Cache().Add(tag.Name)
				}
			}
		}
		return taskCreatedMsg{task: created}
	}
}

func (m Model) setStatusForCmd(uuids []string, status model.Status) tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		if err := deps.Tasks.UpdatePendingTasks(context.Background(), uuids, status); err != nil {
			return AppErrorMsg{Err: err}
		}
		if deps.Alerts != nil {
			for _, uuid := range uuids {
				deps.Alerts.Cancel(uuid)
			}
		}
		return tasksMutatedMsg{status: string(status)}
	}
}

func (m Model) toggleStatusCmd(uuids []string) tea.Cmd {
	repo := m.deps.Tasks
	return func() tea.Msg {
		if err := repo.TogglePendingTasksStatus(context.Background(), uuids); err != nil {
			return AppErrorMsg{Err: err}
		}
		return tasksMutatedMsg{status: "toggled"}
	}
}

func (m Model) addAnnotationCmd(uuid, text string) tea.Cmd {
	repo := m.deps.Tasks
	return func() tea.Msg {
		if err := repo.AddAnnotation(context.Background(), uuid, text); err != nil {
			return AppErrorMsg{Err: err}
		}
		return annotationAddedMsg{uuid: uuid}
	}
}

func (m Model) loadFiltersCmd() tea.Cmd {
	repo := m.deps.Filters
	return func() tea.Msg {
		saved, err := repo.ListFilters(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		selected, err := repo.SelectedFilter(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return filtersLoadedMsg{saved: saved, selected: selected}
	}
}

func (m Model) saveFilterCmd(f model.Filter) tea.Cmd {
	repo := m.deps.Filters
	return func() tea.Msg {
		if _, err := repo.SaveFilter(context.Background(), f); err != nil {
			return AppErrorMsg{Err: err}
		}
		saved, err := repo.ListFilters(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		selected, _ := repo.SelectedFilter(context.Background())
		return filtersLoadedMsg{saved: saved, selected: selected}
	}
}

func (m Model) selectFilterCmd(id string) tea.Cmd {
	repo := m.deps.Filters
	return func() tea.Msg {
		if err := repo.SelectFilter(context.Background(), id); err != nil {
			return AppErrorMsg{Err: err}
		}
		selected, err := repo.SelectedFilter(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return filterAppliedMsg{filter: selected.Filter}
	}
}

func (m Model) deleteFilterCmd(id string) tea.Cmd {
	repo := m.deps.Filters
	return func() tea.Msg {
		if err := repo.DeleteFilter(context.Background(), id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return AppErrorMsg{Err: err}
		}
		saved, err := repo.ListFilters(context.Background())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		selected, _ := repo.SelectedFilter(context.Background())
		return filtersLoadedMsg{saved: saved, selected: selected}
	}
}

func (m Model) waitForAlertCmd() tea.Cmd {
	engine := m.deps.Alerts
	if engine == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-engine.C()
		if !ok {
			return nil
		}
		return alertFiredMsg{event: ev}
	}
}

func (m Model) runSyncCmd() tea.Cmd {
	coord := m.deps.Coordinator
	return func() tea.Msg {
		if coord == nil {
			return syncFinishedMsg{err: errors.New("no sync backend configured")}
		}
		needsSync, err := coord.Sync(context.Background())
		return syncFinishedMsg{needsSync: needsSync, err: err}
	}
}
