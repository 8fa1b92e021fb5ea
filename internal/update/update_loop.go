package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskvault/internal/alert"
	"github.com/sandeepkv93/taskvault/internal/query"
	"github.com/sandeepkv93/taskvault/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadTasksCmd(), m.loadFiltersCmd()}
	if wait := m.waitForAlertCmd(); wait != nil {
		cmds = append(cmds, wait)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.syncBubbleData()

	switch typed := msg.(type) {
	case tea.KeyMsg:
		capturing := m.Capture.Active || m.FilterView.Authoring || m.Annotate.Active
		keyStr := typed.String()

		if !capturing {
			switch keyStr {
			case m.Keys.Tasks:
				m.CurrentView = ViewTasks
				return m, nil
			case m.Keys.Filters:
				m.CurrentView = ViewFilters
				return m, m.loadFiltersCmd()
			case m.Keys.Sync:
				m.CurrentView = ViewSync
				return m, nil
			case m.Keys.Help:
				m.HelpVisible = !m.HelpVisible
				return m, nil
			case "S":
				return m.startSync()
			case "ctrl+c", m.Keys.Quit:
				m.Quitting = true
				return m, tea.Quit
			}
		} else if keyStr == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewTasks:
			return m.handleTasksKey(typed)
		case ViewFilters:
			return m.handleFiltersKey(typed)
		case ViewSync:
			return m.handleSyncKey(typed)
		}
	case spinner.TickMsg:
		if m.Syncing {
			var cmd tea.Cmd
			m.syncSpinner, cmd = m.syncSpinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: userFacingError(typed.Err), IsError: true}
		}
		return m, nil
	case tasksLoadedMsg:
		m.TaskList.Tasks = query.Filtered(typed.tasks, m.Active)
		m.TaskList.Cursor = clampCursor(m.TaskList.Cursor, len(m.TaskList.Tasks))
		m.pruneSelection()
		if m.deps.Alerts != nil {
			for _, t := range typed.tasks {
				_ = m.deps.Alerts.ScheduleTask(t)
			}
		}
		return m, nil
	case taskCreatedMsg:
		m.Status = StatusBar{Text: "captured: " + typed.task.Description}
		return m, m.loadTasksCmd()
	case tasksMutatedMsg:
		count := len(m.TaskList.Selected)
		if count == 0 {
			count = 1
		}
		m.TaskList.Selected = make(map[string]bool)
		m.Status = StatusBar{Text: statusLineForMutation(typed.status, count)}
		return m, m.loadTasksCmd()
	case annotationAddedMsg:
		m.Status = StatusBar{Text: "annotation added"}
		return m, m.loadTasksCmd()
	case filtersLoadedMsg:
		m.FilterView.Saved = typed.saved
		m.FilterView.Cursor = clampCursor(m.FilterView.Cursor, len(typed.saved))
		return m, nil
	case filterAppliedMsg:
		m.Active = typed.filter
		m.Status = StatusBar{Text: "filter selected: " + typed.filter.FullDescription}
		return m, m.loadTasksCmd()
	case alertFiredMsg:
		text := "due now: " + typed.event.Description
		if typed.event.Kind == alert.KindCritical {
			text = "CRITICAL " + text
		}
		m.Status = StatusBar{Text: text, IsError: typed.event.Kind == alert.KindCritical}
		if wait := m.waitForAlertCmd(); wait != nil {
			return m, wait
		}
		return m, nil
	case syncFinishedMsg:
		m.Syncing = false
		if typed.err != nil {
			m.LastError = typed.err
			m.Status = StatusBar{Text: userFacingError(typed.err), IsError: true}
			return m, nil
		}
		if typed.needsSync {
			m.Status = StatusBar{Text: "sync finished, changes still pending"}
		} else {
			m.Status = StatusBar{Text: "sync complete"}
		}
		return m, m.loadTasksCmd()
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderDetailPane() + m.renderHelpIfVisible()
	case ViewFilters:
		leftPane = m.renderFiltersView()
		rightPane = m.renderActiveFilterPane() + m.renderHelpIfVisible()
	case ViewSync:
		leftPane = m.renderSyncView()
		rightPane = m.renderHelpIfVisible()
	}

	notification := ""
	if m.Syncing {
		notification = "sync: " + m.syncSpinner.View() + " running"
	}

	selected := ""
	if task, ok := m.SelectedTask(); ok {
		selected = task.UUID
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("taskvault | view: %s | filter: %s | selected: %s", m.CurrentView, m.Active.FullDescription, selected),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notification,
		Footer:       fmt.Sprintf("keys: %s tasks | %s filters | %s sync | S run sync | %s help | %s quit", m.Keys.Tasks, m.Keys.Filters, m.Keys.Sync, m.Keys.Help, m.Keys.Quit),
	})
}

func (m *Model) pruneSelection() {
	present := make(map[string]bool, len(m.TaskList.Tasks))
	for _, t := range m.TaskList.Tasks {
		present[t.UUID] = true
	}
	for uuid := range m.TaskList.Selected {
		if !present[uuid] {
			delete(m.TaskList.Selected, uuid)
		}
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewFilters, ViewSync:
		return true
	default:
		return false
	}
}
