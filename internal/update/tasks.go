package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/parse"
	"github.com/sandeepkv93/taskvault/internal/suggest"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Annotate.Active {
		return m.handleAnnotateKey(msg)
	}
	if m.Capture.Active {
		return m.handleCaptureKey(msg)
	}

	switch msg.String() {
	case "a", "i":
		m.Capture.Active = true
		m.Capture.Input = ""
		m.Capture.Suggestions = m.suggestionsFor("", suggest.SurfaceCreation)
		m.Capture.SuggestionIndex = 0
		m.captureInput.Focus()
		m.Status = StatusBar{Text: "capture mode"}
	case "up", "k":
		if m.TaskList.Cursor > 0 {
			m.TaskList.Cursor--
		}
	case "down", "j":
		if m.TaskList.Cursor < len(m.TaskList.Tasks)-1 {
			m.TaskList.Cursor++
		}
	case " ":
		if task, ok := m.SelectedTask(); ok {
			if m.TaskList.Selected[task.UUID] {
				delete(m.TaskList.Selected, task.UUID)
			} else {
				m.TaskList.Selected[task.UUID] = true
			}
		}
	case "u":
		m.TaskList.Selected = make(map[string]bool)
	case "enter", "t":
		if task, ok := m.SelectedTask(); ok {
			return m, m.toggleStatusCmd([]string{task.UUID})
		}
	case "c":
		if uuids := m.actionTargets(); len(uuids) > 0 {
			return m, m.setStatusForCmd(uuids, model.StatusCompleted)
		}
	case "d":
		if uuids := m.actionTargets(); len(uuids) > 0 {
			return m, m.setStatusForCmd(uuids, model.StatusDeleted)
		}
	case "n":
		if task, ok := m.SelectedTask(); ok {
			m.Annotate.Active = true
			m.Annotate.UUID = task.UUID
			m.noteArea.Reset()
			m.noteArea.Focus()
			m.Status = StatusBar{Text: "annotating " + task.Description}
		}
	case "r":
		return m, m.loadTasksCmd()
	}
	return m, nil
}

func (m Model) handleCaptureKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Capture = CaptureState{}
		m.captureInput.Blur()
		m.Status = StatusBar{Text: "capture cancelled"}
		return m, nil
	case "tab":
		if len(m.Capture.Suggestions) > 0 {
			chosen := m.Capture.Suggestions[m.Capture.SuggestionIndex]
			m.Capture.Input = suggest.ApplyCompletion(m.Capture.Input, chosen)
			m.refreshCaptureSuggestions()
		}
		return m, nil
	case "ctrl+n", "down":
		if n := len(m.Capture.Suggestions); n > 0 {
			m.Capture.SuggestionIndex = (m.Capture.SuggestionIndex + 1) % n
		}
		return m, nil
	case "ctrl+p", "up":
		if n := len(m.Capture.Suggestions); n > 0 {
			m.Capture.SuggestionIndex = (m.Capture.SuggestionIndex + n - 1) % n
		}
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.Capture.Input)
		if input == "" {
			return m, nil
		}
		task, err := parse.ParseTask(input, m.deps.Now(), m.deps.Resolver, nil)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		if err := parse.ValidateDescription(task); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Capture = CaptureState{Active: true, Suggestions: m.suggestionsFor("", suggest.SurfaceCreation)}
		m.captureInput.SetValue("")
		return m, m.createTaskCmd(task)
	}

	var cmd tea.Cmd
	m.captureInput, cmd = m.captureInput.Update(msg)
	_ = cmd
	m.Capture.Input = m.captureInput.Value()
	m.refreshCaptureSuggestions()
	return m, nil
}

func (m Model) handleAnnotateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Annotate = AnnotateState{}
		m.noteArea.Blur()
		m.Status = StatusBar{Text: "annotation cancelled"}
		return m, nil
	case "ctrl+s":
		text := strings.TrimSpace(m.noteArea.Value())
		uuid := m.Annotate.UUID
		m.Annotate = AnnotateState{}
		m.noteArea.Blur()
		if text == "" || uuid == "" {
			return m, nil
		}
		return m, m.addAnnotationCmd(uuid, text)
	}
	var cmd tea.Cmd
	m.noteArea, cmd = m.noteArea.Update(msg)
	_ = cmd
	return m, nil
}

func (m *Model) refreshCaptureSuggestions() {
	m.Capture.Suggestions = m.suggestionsFor(m.Capture.Input, suggest.SurfaceCreation)
	m.Capture.SuggestionIndex = 0
}

func (m Model) suggestionsFor(input string, surface suggest.Surface) []string {
	if m.deps.Suggest == nil {
		return nil
	}
	out := m.deps.Suggest.Suggestions(input, surface)
	if limit := m.deps.SuggestionLimit; len(out) > limit {
		out = out[:limit]
	}
	return out
}

// actionTargets returns the marked tasks, or the one under the cursor
// when nothing is marked.
func (m Model) actionTargets() []string {
	if len(m.TaskList.Selected) > 0 {
		uuids := make([]string, 0, len(m.TaskList.Selected))
		for _, t := range m.TaskList.Tasks {
			if m.TaskList.Selected[t.UUID] {
				uuids = append(uuids, t.UUID)
			}
		}
		return uuids
	}
	if task, ok := m.SelectedTask(); ok {
		return []string{task.UUID}
	}
	return nil
}

func taskListMeta(t model.Task) string {
	parts := make([]string, 0, 4)
	if t.Priority != model.PriorityNone {
		parts = append(parts, "prio:"+string(t.Priority))
	}
	if t.Project != "" {
		parts = append(parts, "project:"+t.Project)
	}
	if t.Due != nil {
		parts = append(parts, "due:"+t.Due.Format("2006-01-02 15:04"))
	}
	for _, tag := range t.Tags {
		parts = append(parts, "+"+tag.Name)
	}
	if len(parts) == 0 {
		return "(no metadata)"
	}
	return strings.Join(parts, " ")
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func statusLineForMutation(status string, count int) string {
	switch status {
	case "toggled":
		return fmt.Sprintf("toggled %d task(s)", count)
	default:
		return fmt.Sprintf("marked %d task(s) %s", count, status)
	}
}
