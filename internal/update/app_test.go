package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskvault/internal/dates"
	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/storage"
	"github.com/sandeepkv93/taskvault/internal/suggest"
)

type fakeTaskRepo struct {
	tasks    []model.Task
	created  []model.Task
	toggled  [][]string
	statused []model.Status
	annots   map[string][]string
	err      error
}

func (f *fakeTaskRepo) GetPendingTasks(ctx context.Context, sorted bool) ([]model.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

func (f *fakeTaskRepo) GetTask(ctx context.Context, uuid string) (model.Task, error) {
	for _, t := range f.tasks {
		if t.UUID == uuid {
			return t, nil
		}
	}
	return model.Task{}, storage.ErrNotFound
}

func (f *fakeTaskRepo) CreateTask(ctx context.Context, in model.Task) (model.Task, error) {
	if f.err != nil {
		return model.Task{}, f.err
	}
	if in.UUID == "" {
		in.UUID = "fake-uuid"
	}
	f.created = append(f.created, in)
	f.tasks = append(f.tasks, in)
	return in, nil
}

func (f *fakeTaskRepo) UpdateTask(ctx context.Context, in model.Task) error { return f.err }

func (f *fakeTaskRepo) UpdatePendingTasks(ctx context.Context, uuids []string, status model.Status) error {
	if f.err != nil {
		return f.err
	}
	f.statused = append(f.statused, status)
	f.toggled = append(f.toggled, uuids)
	return nil
}

func (f *fakeTaskRepo) TogglePendingTasksStatus(ctx context.Context, uuids []string) error {
	if f.err != nil {
		return f.err
	}
	f.toggled = append(f.toggled, uuids)
	return nil
}

func (f *fakeTaskRepo) AddAnnotation(ctx context.Context, uuid, text string) error {
	if f.err != nil {
		return f.err
	}
	if f.annots == nil {
		f.annots = make(map[string][]string)
	}
	f.annots[uuid] = append(f.annots[uuid], text)
	return nil
}

type fakeFilterRepo struct {
	saved    []storage.SavedFilter
	selected storage.SavedFilter
	nextID   int
}

func (f *fakeFilterRepo) SaveFilter(ctx context.Context, flt model.Filter) (storage.SavedFilter, error) {
	f.nextID++
	sf := storage.SavedFilter{ID: fmt.Sprintf("flt-%d", f.nextID), Filter: flt}
	f.saved = append(f.saved, sf)
	return sf, nil
}

func (f *fakeFilterRepo) ListFilters(ctx context.Context) ([]storage.SavedFilter, error) {
	return f.saved, nil
}

func (f *fakeFilterRepo) DeleteFilter(ctx context.Context, id string) error {
	kept := f.saved[:0]
	for _, sf := range f.saved {
		if sf.ID != id {
			kept = append(kept, sf)
		}
	}
	f.saved = kept
	return nil
}

func (f *fakeFilterRepo) SelectFilter(ctx context.Context, id string) error {
	for _, sf := range f.saved {
		if sf.ID == id {
			f.selected = sf
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeFilterRepo) SelectedFilter(ctx context.Context) (storage.SavedFilter, error) {
	if f.selected.ID == "" {
		return storage.SavedFilter{Filter: model.DefaultFilter()}, nil
	}
	return f.selected, nil
}

type fakeTagRepo struct {
	names []string
}

func (f *fakeTagRepo) EnsureTag(ctx context.Context, name string) (model.Tag, error) {
	for _, n := range f.names {
		if n == name {
			return model.Tag{Name: name}, nil
		}
	}
	f.names = append(f.names, name)
	return model.Tag{Name: name}, nil
}

func (f *fakeTagRepo) GetTag(ctx context.Context, name string) (model.Tag, error) {
	for _, n := range f.names {
		if n == name {
			return model.Tag{Name: name}, nil
		}
	}
	return model.Tag{}, storage.ErrNotFound
}

func (f *fakeTagRepo) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(f.names))
	for _, n := range f.names {
		tags = append(tags, model.Tag{Name: n})
	}
	return tags, nil
}

func newTestModel(t *testing.T, tasks *fakeTaskRepo) Model {
	t.Helper()
	if tasks == nil {
		tasks = &fakeTaskRepo{}
	}
	tags := &fakeTagRepo{names: []string{"errand"}}
	return NewModel(Deps{
		Tasks:    tasks,
		Filters:  &fakeFilterRepo{},
		Tags:     tags,
		Suggest:  suggest.NewEngine(suggest.NewTagCache(tags)),
		Resolver: dates.FixedResolver{},
		Now:      func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
}

func pendingTask(uuid, desc string) model.Task {
	return model.Task{UUID: uuid, Description: desc, Status: model.StatusPending}
}

func drive(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next, cmd
}

func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := drive(t, m, cmd())
	return next
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, nil)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if !m.Active.DidSetStatus || m.Active.Status != model.StatusPending {
		t.Fatalf("expected default pending filter, got %+v", m.Active)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
}

func TestKeySwitchesView(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	if next.CurrentView != ViewFilters {
		t.Fatalf("expected filters view, got %q", next.CurrentView)
	}
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if next.CurrentView != ViewSync {
		t.Fatalf("expected sync view, got %q", next.CurrentView)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, nil)
	next, cmd := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestTasksLoadedAppliesActiveFilter(t *testing.T) {
	m := newTestModel(t, nil)
	done := pendingTask("b", "done already")
	done.Status = model.StatusCompleted
	next, _ := drive(t, m, tasksLoadedMsg{tasks: []model.Task{
		pendingTask("a", "walk dog"),
		done,
	}})
	if len(next.TaskList.Tasks) != 1 || next.TaskList.Tasks[0].UUID != "a" {
		t.Fatalf("expected only the pending task, got %+v", next.TaskList.Tasks)
	}
}

func TestCaptureCreatesTask(t *testing.T) {
	repo := &fakeTaskRepo{}
	m := newTestModel(t, repo)

	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if !next.Capture.Active {
		t.Fatal("expected capture mode after 'a'")
	}
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Buy milk prio:H +errand")})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	next = runCmd(t, next, cmd)

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created task, got %d", len(repo.created))
	}
	got := repo.created[0]
	if got.Description != "Buy milk" {
		t.Fatalf("description = %q", got.Description)
	}
	if got.Priority != model.PriorityHigh {
		t.Fatalf("priority = %q", got.Priority)
	}
	if !got.HasTag("errand") {
		t.Fatalf("missing tag, got %+v", got.Tags)
	}
	if !next.Capture.Active {
		t.Fatal("capture mode should stay active for the next entry")
	}
}

func TestCaptureParseErrorStaysInCapture(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("fix sink +1bad")})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no create command on parse error")
	}
	if !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}
	if !next.Capture.Active {
		t.Fatal("capture mode should survive a parse error")
	}
}

func TestCaptureRejectsDirectiveOnlyInput(t *testing.T) {
	repo := &fakeTaskRepo{}
	m := newTestModel(t, repo)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("prio:H +errand")})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no create command for a directive-only entry")
	}
	if !next.Status.IsError || !strings.Contains(next.Status.Text, "description") {
		t.Fatalf("expected empty-description error status, got %+v", next.Status)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no task should be created, got %+v", repo.created)
	}
	if !next.Capture.Active {
		t.Fatal("capture mode should survive the rejection")
	}
}

func TestCaptureSuggestionsFollowInput(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Buy milk prio:")})
	want := []string{"H", "M", "L"}
	if len(next.Capture.Suggestions) != len(want) {
		t.Fatalf("suggestions = %v, want %v", next.Capture.Suggestions, want)
	}
	for i, s := range want {
		if next.Capture.Suggestions[i] != s {
			t.Fatalf("suggestions = %v, want %v", next.Capture.Suggestions, want)
		}
	}
}

func TestCaptureTabAppliesCompletion(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Buy milk prio:")})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyTab})
	if next.Capture.Input != "Buy milk prio:H" {
		t.Fatalf("input after tab = %q", next.Capture.Input)
	}
}

func TestToggleTaskAtCursor(t *testing.T) {
	repo := &fakeTaskRepo{tasks: []model.Task{pendingTask("a", "walk dog")}}
	m := newTestModel(t, repo)
	next, _ := drive(t, m, tasksLoadedMsg{tasks: repo.tasks})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(t, next, cmd)
	if len(repo.toggled) != 1 || repo.toggled[0][0] != "a" {
		t.Fatalf("toggled = %v", repo.toggled)
	}
}

func TestBulkCompleteMarkedTasks(t *testing.T) {
	repo := &fakeTaskRepo{tasks: []model.Task{
		pendingTask("a", "walk dog"),
		pendingTask("b", "buy milk"),
	}}
	m := newTestModel(t, repo)
	next, _ := drive(t, m, tasksLoadedMsg{tasks: repo.tasks})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	runCmd(t, next, cmd)

	if len(repo.statused) != 1 || repo.statused[0] != model.StatusCompleted {
		t.Fatalf("statused = %v", repo.statused)
	}
	if len(repo.toggled) != 1 || len(repo.toggled[0]) != 2 {
		t.Fatalf("expected both tasks targeted, got %v", repo.toggled)
	}
}

func TestAnnotateSelectedTask(t *testing.T) {
	repo := &fakeTaskRepo{tasks: []model.Task{pendingTask("a", "walk dog")}}
	m := newTestModel(t, repo)
	next, _ := drive(t, m, tasksLoadedMsg{tasks: repo.tasks})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if !next.Annotate.Active || next.Annotate.UUID != "a" {
		t.Fatalf("annotate state = %+v", next.Annotate)
	}
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("call the vet")})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyCtrlS})
	runCmd(t, next, cmd)
	if got := repo.annots["a"]; len(got) != 1 || got[0] != "call the vet" {
		t.Fatalf("annotations = %v", repo.annots)
	}
}

func TestFilterAuthoringAppliesFilter(t *testing.T) {
	repo := &fakeTaskRepo{tasks: []model.Task{
		pendingTask("a", "walk dog"),
	}}
	m := newTestModel(t, repo)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !next.FilterView.Authoring {
		t.Fatal("expected authoring mode")
	}
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("status:completed")})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if next.FilterView.Authoring {
		t.Fatal("authoring should close after apply")
	}
	if next.Active.Status != model.StatusCompleted || !next.Active.DidSetStatus {
		t.Fatalf("active filter = %+v", next.Active)
	}
	if cmd == nil {
		t.Fatal("expected a reload command")
	}
}

func TestFilterAuthoringRejectsEmptyPredicate(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next, _ = drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("just words")})
	next, cmd = drive(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no command for invalid filter")
	}
	if !next.Status.IsError {
		t.Fatalf("expected error status, got %+v", next.Status)
	}
	if !next.Active.DidSetStatus || next.Active.Status != model.StatusPending {
		t.Fatalf("active filter should stay at the pending default, got %+v", next.Active)
	}
	if !next.FilterView.Authoring {
		t.Fatal("authoring should stay open so the input can be corrected")
	}
}

func TestSaveAndSelectFilter(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next, cmd := drive(t, next, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	next = runCmd(t, next, cmd)
	if len(next.FilterView.Saved) != 1 {
		t.Fatalf("saved filters = %+v", next.FilterView.Saved)
	}

	next, cmd = drive(t, next, tea.KeyMsg{Type: tea.KeyEnter})
	next = runCmd(t, next, cmd)
	if next.Active.FullDescription != "status:pending" {
		t.Fatalf("active after select = %+v", next.Active)
	}
}

func TestSyncFailureSurfacesInStatus(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, syncFinishedMsg{err: errors.New("connectivity lost")})
	if !next.Status.IsError || !strings.Contains(next.Status.Text, "connectivity lost") {
		t.Fatalf("status = %+v", next.Status)
	}
	if next.Syncing {
		t.Fatal("sync flag should clear on failure")
	}
}

func TestAppErrorMsgSetsStatus(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := drive(t, m, AppErrorMsg{Err: errors.New("boom")})
	if next.LastError == nil || next.Status.Text != "boom" || !next.Status.IsError {
		t.Fatalf("err=%v status=%+v", next.LastError, next.Status)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := newTestModel(t, nil)
	out := m.View()
	if !strings.Contains(out, "view: Tasks") {
		t.Fatalf("expected view header in output: %q", out)
	}
	if !strings.Contains(out, "filter: status:pending") {
		t.Fatalf("expected active filter in output: %q", out)
	}
}
