package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/parse"
	"github.com/sandeepkv93/taskvault/internal/storage"
	"github.com/sandeepkv93/taskvault/internal/suggest"
)

func (m Model) handleFiltersKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.FilterView.Authoring {
		return m.handleFilterInputKey(msg)
	}

	switch msg.String() {
	case "/", "f":
		m.FilterView.Authoring = true
		m.FilterView.Input = ""
		m.FilterView.Suggestions = m.suggestionsFor("", suggest.SurfaceFilter)
		m.FilterView.SuggestionIndex = 0
		m.filterInput.Focus()
		m.Status = StatusBar{Text: "filter authoring"}
	case "up", "k":
		if m.FilterView.Cursor > 0 {
			m.FilterView.Cursor--
		}
	case "down", "j":
		if m.FilterView.Cursor < len(m.FilterView.Saved)-1 {
			m.FilterView.Cursor++
		}
	case "enter":
		if f, ok := m.savedAtCursor(); ok {
			return m, m.selectFilterCmd(f.ID)
		}
	case "d":
		if f, ok := m.savedAtCursor(); ok {
			return m, m.deleteFilterCmd(f.ID)
		}
	case "w":
		if !m.Active.IsValid() {
			m.Status = StatusBar{Text: "active filter has no predicate to save", IsError: true}
			return m, nil
		}
		return m, m.saveFilterCmd(m.Active)
	case "0":
		// back to the implicit default
		m.Active = model.DefaultFilter()
		m.Status = StatusBar{Text: "filter reset to pending"}
		return m, m.loadTasksCmd()
	}
	return m, nil
}

func (m Model) handleFilterInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.FilterView.Authoring = false
		m.FilterView.Input = ""
		m.FilterView.Suggestions = nil
		m.filterInput.Blur()
		return m, nil
	case "tab":
		if len(m.FilterView.Suggestions) > 0 {
			chosen := m.FilterView.Suggestions[m.FilterView.SuggestionIndex]
			m.FilterView.Input = suggest.ApplyCompletion(m.FilterView.Input, chosen)
			m.refreshFilterSuggestions()
		}
		return m, nil
	case "ctrl+n", "down":
		if n := len(m.FilterView.Suggestions); n > 0 {
			m.FilterView.SuggestionIndex = (m.FilterView.SuggestionIndex + 1) % n
		}
		return m, nil
	case "ctrl+p", "up":
		if n := len(m.FilterView.Suggestions); n > 0 {
			m.FilterView.SuggestionIndex = (m.FilterView.SuggestionIndex + n - 1) % n
		}
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.FilterView.Input)
		if input == "" {
			return m, nil
		}
		f, err := parse.ParseFilter(input, m.deps.Now(), m.deps.Resolver)
		if err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		// A filter with no was-set field matches everything; refuse it
		// before it can become the active predicate.
		if err := parse.ValidateFilter(f); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.Active = f
		m.FilterView.Authoring = false
		m.FilterView.Input = ""
		m.FilterView.Suggestions = nil
		m.filterInput.Blur()
		m.Status = StatusBar{Text: "filter applied: " + f.FullDescription}
		return m, m.loadTasksCmd()
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	_ = cmd
	m.FilterView.Input = m.filterInput.Value()
	m.refreshFilterSuggestions()
	return m, nil
}

func (m *Model) refreshFilterSuggestions() {
	m.FilterView.Suggestions = m.suggestionsFor(m.FilterView.Input, suggest.SurfaceFilter)
	m.FilterView.SuggestionIndex = 0
}

func (m Model) savedAtCursor() (storage.SavedFilter, bool) {
	if m.FilterView.Cursor < 0 || m.FilterView.Cursor >= len(m.FilterView.Saved) {
		return storage.SavedFilter{}, false
	}
	return m.FilterView.Saved[m.FilterView.Cursor], true
}
