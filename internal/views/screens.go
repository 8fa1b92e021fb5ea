package views

import (
	"fmt"
	"strings"
)

type TaskItemData struct {
	UUID        string
	Description string
	Meta        string
	Marked      bool
}

type TaskPanelData struct {
	ListView        string
	Items           []TaskItemData
	SelectedUUID    string
	CaptureView     string
	AnnotateView    string
	Suggestions     []string
	SuggestionIndex int
}

type TaskDetailData struct {
	UUID        string
	Description string
	Status      string
	Priority    string
	Project     string
	Due         string
	Tags        []string
	NoteView    string
}

type SavedFilterData struct {
	ID    string
	Label string
}

type FilterPanelData struct {
	TableView       string
	Saved           []SavedFilterData
	Cursor          int
	AuthoringView   string
	Suggestions     []string
	SuggestionIndex int
}

type SyncPanelData struct {
	BackendName string
	Running     bool
	NeedsSync   bool
	LastError   string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	if data.CaptureView != "" {
		b.WriteString(data.CaptureView + "\n")
		b.WriteString(renderSuggestions(data.Suggestions, data.SuggestionIndex))
	}
	if data.AnnotateView != "" {
		b.WriteString("annotate (ctrl+s saves, esc cancels):\n")
		b.WriteString(data.AnnotateView + "\n")
	}
	b.WriteString("actions: [a]dd [space]mark [enter]toggle [c]omplete [d]elete [n]ote\n")
	b.WriteString(data.ListView + "\n")
	if len(data.Items) == 0 {
		b.WriteString("(no tasks match the active filter)\n")
	}
	for _, item := range data.Items {
		cursor := " "
		if data.SelectedUUID == item.UUID {
			cursor = ">"
		}
		mark := " "
		if item.Marked {
			mark = "*"
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n", cursor, mark, item.Description, item.Meta))
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskDetail(data TaskDetailData) string {
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString("uuid: " + data.UUID + "\n")
	b.WriteString("description: " + data.Description + "\n")
	b.WriteString("status: " + data.Status + "\n")
	if data.Priority != "" {
		b.WriteString("priority: " + data.Priority + "\n")
	}
	if data.Project != "" {
		b.WriteString("project: " + data.Project + "\n")
	}
	if data.Due != "" {
		b.WriteString("due: " + data.Due + "\n")
	}
	if len(data.Tags) > 0 {
		b.WriteString("tags: " + strings.Join(data.Tags, ",") + "\n")
	}
	if data.NoteView != "" {
		b.WriteString("\nnote:\n" + data.NoteView + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderFilterPanel(data FilterPanelData) string {
	var b strings.Builder
	b.WriteString("filters:\n")
	if data.AuthoringView != "" {
		b.WriteString(data.AuthoringView + "\n")
		b.WriteString(renderSuggestions(data.Suggestions, data.SuggestionIndex))
	}
	b.WriteString("actions: [/]author [enter]select [d]elete [w]save-active [0]reset\n")
	b.WriteString(data.TableView + "\n")
	if len(data.Saved) == 0 {
		b.WriteString("(no saved filters)")
		return strings.TrimSpace(b.String())
	}
	for i, f := range data.Saved {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, f.Label))
	}
	return strings.TrimSpace(b.String())
}

func RenderSyncPanel(data SyncPanelData) string {
	var b strings.Builder
	b.WriteString("sync:\n")
	b.WriteString("backend: " + data.BackendName + "\n")
	state := "idle"
	if data.Running {
		state = "running"
	}
	b.WriteString("state: " + state + "\n")
	if data.NeedsSync {
		b.WriteString("pending: local changes not yet synced\n")
	}
	if data.LastError != "" {
		b.WriteString("last-error: " + data.LastError + "\n")
	}
	b.WriteString("actions: [S/enter]run")
	return b.String()
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func renderSuggestions(suggestions []string, index int) string {
	if len(suggestions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("complete: ")
	for i, s := range suggestions {
		if i == index {
			b.WriteString("[" + s + "] ")
			continue
		}
		b.WriteString(s + " ")
	}
	return strings.TrimRight(b.String(), " ") + "\n"
}
