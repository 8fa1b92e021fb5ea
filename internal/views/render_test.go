package views

import (
	"strings"
	"testing"
)

func TestRenderAppIncludesFrameSections(t *testing.T) {
	out := RenderApp(AppData{
		Header:       "taskvault | view: tasks",
		LeftPane:     "left-body",
		RightPane:    "right-body",
		StatusLine:   "status: error: bad filter",
		Footer:       "keys: 1 tasks",
		Notification: "sync: running",
	})

	for _, want := range []string{
		"taskvault | view: tasks",
		"left-body",
		"right-body",
		"status: error: bad filter",
		"keys: 1 tasks",
		"sync: running",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q", want)
		}
	}
}

func TestRenderAppOmitsEmptySections(t *testing.T) {
	out := RenderApp(AppData{Header: "h", LeftPane: "l", RightPane: "r"})
	if strings.Contains(out, "sync:") {
		t.Errorf("unexpected notification strip in %q", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Errorf("trailing newline without footer: %q", out)
	}
}

func TestRenderMarkdownEmptyBody(t *testing.T) {
	if got := RenderMarkdown("   \n"); got != "" {
		t.Errorf("RenderMarkdown(blank) = %q, want empty", got)
	}
}
