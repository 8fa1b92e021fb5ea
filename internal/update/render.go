package update

import (
	"strings"

	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/views"
)

func (m Model) renderTasksView() string {
	items := make([]views.TaskItemData, 0, len(m.TaskList.Tasks))
	for _, t := range m.TaskList.Tasks {
		items = append(items, views.TaskItemData{
			UUID:        t.UUID,
			Description: t.Description,
			Meta:        taskListMeta(t),
			Marked:      m.TaskList.Selected[t.UUID],
		})
	}
	selected := ""
	if task, ok := m.SelectedTask(); ok {
		selected = task.UUID
	}
	capture := ""
	if m.Capture.Active {
		capture = m.captureInput.View()
	}
	annotate := ""
	if m.Annotate.Active {
		annotate = m.noteArea.View()
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		ListView:        m.taskList.View(),
		Items:           items,
		SelectedUUID:    selected,
		CaptureView:     capture,
		AnnotateView:    annotate,
		Suggestions:     m.Capture.Suggestions,
		SuggestionIndex: m.Capture.SuggestionIndex,
	})
}

func (m Model) renderDetailPane() string {
	task, ok := m.SelectedTask()
	if !ok {
		return "details:\n(no selection)"
	}
	note := ""
	if task.Note != "" {
		note = views.RenderMarkdown(task.Note)
	}
	return views.RenderTaskDetail(views.TaskDetailData{
		UUID:        task.UUID,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Project:     task.Project,
		Due:         formatDue(task),
		Tags:        tagNames(task),
		NoteView:    note,
	})
}

func (m Model) renderFiltersView() string {
	saved := make([]views.SavedFilterData, 0, len(m.FilterView.Saved))
	for _, f := range m.FilterView.Saved {
		saved = append(saved, views.SavedFilterData{ID: f.ID, Label: f.Filter.FullDescription})
	}
	authoring := ""
	if m.FilterView.Authoring {
		authoring = m.filterInput.View()
	}
	return views.RenderFilterPanel(views.FilterPanelData{
		TableView:       m.filtersTable.View(),
		Saved:           saved,
		Cursor:          m.FilterView.Cursor,
		AuthoringView:   authoring,
		Suggestions:     m.FilterView.Suggestions,
		SuggestionIndex: m.FilterView.SuggestionIndex,
	})
}

func (m Model) renderActiveFilterPane() string {
	f := m.Active
	var b strings.Builder
	b.WriteString("active-filter:\n")
	b.WriteString("label: " + f.FullDescription + "\n")
	if f.DidSetStatus {
		b.WriteString("status: " + string(f.Status) + "\n")
	}
	if f.DidSetPriority {
		b.WriteString("priority: " + string(f.Priority) + "\n")
	}
	if f.DidSetProject {
		b.WriteString("project: " + f.Project + "\n")
	}
	if len(f.IncludedTags) > 0 {
		b.WriteString("with tags: " + strings.Join(f.IncludedTags, ",") + "\n")
	}
	if len(f.ExcludedTags) > 0 {
		b.WriteString("without tags: " + strings.Join(f.ExcludedTags, ",") + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderSyncView() string {
	backendName := "No sync"
	needsSync := false
	lastErr := ""
	if c := m.deps.Coordinator; c != nil {
		backendName = c.Backend().SettingName()
		needsSync = c.NeedsSync()
		lastErr = userFacingError(c.LastError())
	}
	return views.RenderSyncPanel(views.SyncPanelData{
		BackendName: backendName,
		Running:     m.Syncing,
		NeedsSync:   needsSync,
		LastError:   lastErr,
	})
}

func formatDue(t model.Task) string {
	if t.Due == nil {
		return ""
	}
	return t.Due.Format("2006-01-02 15:04")
}

func tagNames(t model.Task) []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}
