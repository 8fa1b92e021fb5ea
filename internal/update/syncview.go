package update

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleSyncKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "S", "enter":
		return m.startSync()
	}
	return m, nil
}

func (m Model) startSync() (Model, tea.Cmd) {
	if m.Syncing {
		return m, nil
	}
	m.Syncing = true
	m.Status = StatusBar{Text: "sync started"}
	return m, tea.Batch(m.syncSpinner.Tick, m.runSyncCmd())
}
