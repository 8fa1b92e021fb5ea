package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/taskvault/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return "\n" + m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Tasks, Action: "switch to Tasks"},
		{Key: m.Keys.Filters, Action: "switch to Filters"},
		{Key: m.Keys.Sync, Action: "switch to Sync"},
		{Key: "S", Action: "run sync"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewTasks:
		return []KeyBinding{
			{Key: "a/i", Action: "capture a task"},
			{Key: "j/k", Action: "move cursor"},
			{Key: "space", Action: "mark task"},
			{Key: "u", Action: "clear marks"},
			{Key: "enter/t", Action: "toggle pending/completed"},
			{Key: "c/d", Action: "complete / delete marked tasks"},
			{Key: "n", Action: "annotate (ctrl+s saves)"},
			{Key: "tab", Action: "accept completion"},
			{Key: "ctrl+n/ctrl+p", Action: "cycle completions"},
			{Key: "r", Action: "reload"},
		}
	case ViewFilters:
		return []KeyBinding{
			{Key: "/ or f", Action: "author a filter"},
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "select saved filter"},
			{Key: "d", Action: "delete saved filter"},
			{Key: "w", Action: "save active filter"},
			{Key: "0", Action: "reset to pending"},
		}
	case ViewSync:
		return []KeyBinding{
			{Key: "S/enter", Action: "run sync"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
