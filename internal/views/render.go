// Package views renders plain-data panel structs into terminal output.
// Nothing here touches application state; the update package builds the
// data, views turns it into styled text.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// AppData is the full frame: header, two panel columns, a status line,
// an optional notification strip and the key legend.
type AppData struct {
	Header       string
	LeftPane     string
	RightPane    string
	StatusLine   string
	Footer       string
	Notification string
}

// Panel widths are fixed rather than responsive; the filter predicate
// column on the right needs slightly less room than the task list.
const (
	leftPaneWidth  = 60
	rightPaneWidth = 56
)

// frameStyles groups the lipgloss styles for one rendered frame.
type frameStyles struct {
	header lipgloss.Style
	status lipgloss.Style
	fault  lipgloss.Style
	panel  lipgloss.Style
	legend lipgloss.Style
}

var chrome = frameStyles{
	header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	status: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	fault:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	panel:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	legend: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

// RenderApp lays the frame out: the task/filter/sync panel on the left,
// details and help on the right, status and footer below.
func RenderApp(data AppData) string {
	var out strings.Builder

	out.WriteString(chrome.header.Render(data.Header))
	out.WriteByte('\n')

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		chrome.panel.Width(leftPaneWidth).Render(data.LeftPane),
		chrome.panel.Width(rightPaneWidth).Render(data.RightPane),
	)
	out.WriteString(columns)

	if data.StatusLine != "" {
		out.WriteByte('\n')
		out.WriteString(renderStatusLine(data.StatusLine))
	}
	if data.Notification != "" {
		out.WriteByte('\n')
		out.WriteString(chrome.panel.Render(data.Notification))
	}
	if data.Footer != "" {
		out.WriteByte('\n')
		out.WriteString(chrome.legend.Render(data.Footer))
	}
	return out.String()
}

// Error status lines carry the "status: error" prefix set by the update
// loop; everything else renders in the normal status color.
func renderStatusLine(line string) string {
	if strings.HasPrefix(line, "status: error") {
		return chrome.fault.Render(line)
	}
	return chrome.status.Render(line)
}

// RenderMarkdown renders a task note or annotation body for the details
// pane. Rendering failures fall back to the raw markdown.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
