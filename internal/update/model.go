package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/taskvault/internal/alert"
	"github.com/sandeepkv93/taskvault/internal/dates"
	"github.com/sandeepkv93/taskvault/internal/model"
	"github.com/sandeepkv93/taskvault/internal/storage"
	"github.com/sandeepkv93/taskvault/internal/suggest"
	synchro "github.com/sandeepkv93/taskvault/internal/sync"
)

type View string

const (
	ViewTasks   View = "Tasks"
	ViewFilters View = "Filters"
	ViewSync    View = "Sync"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks   string
	Filters string
	Sync    string
	Help    string
	Quit    string
}

// Deps are the collaborators the TUI drives. Everything is an interface
// or an injected value so tests can run against fakes.
type Deps struct {
	Tasks           storage.TaskRepository
	Filters         storage.FilterRepository
	Tags            storage.TagRepository
	Suggest         *suggest.Engine
	Resolver        dates.Resolver
	Coordinator     *synchro.Coordinator
	Alerts          *alert.Engine
	Now             func() time.Time
	SuggestionLimit int
}

type TaskListState struct {
	Tasks    []model.Task
	Cursor   int
	Selected map[string]bool
}

type CaptureState struct {
	Active          bool
	Input           string
	Suggestions     []string
	SuggestionIndex int
}

type FilterViewState struct {
	Saved           []storage.SavedFilter
	Cursor          int
	Authoring       bool
	Input           string
	Suggestions     []string
	SuggestionIndex int
}

type AnnotateState struct {
	Active bool
	UUID   string
}

type Model struct {
	CurrentView View
	Active      model.Filter
	TaskList    TaskListState
	Capture     CaptureState
	FilterView  FilterViewState
	Annotate    AnnotateState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error
	Syncing     bool

	deps Deps

	taskList     list.Model
	filtersTable table.Model
	captureInput textinput.Model
	filterInput  textinput.Model
	noteArea     textarea.Model
	syncSpinner  spinner.Model
	helpModel    help.Model
}

type taskItem struct {
	title       string
	description string
}

func (i taskItem) FilterValue() string { return i.title + " " + i.description }
func (i taskItem) Title() string       { return i.title }
func (i taskItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type tasksLoadedMsg struct {
	tasks []model.Task
}

type taskCreatedMsg struct {
	task model.Task
}

type tasksMutatedMsg struct {
	status string
}

type filtersLoadedMsg struct {
	saved    []storage.SavedFilter
	selected storage.SavedFilter
}

type filterAppliedMsg struct {
	filter model.Filter
}

type annotationAddedMsg struct {
	uuid string
}

type syncFinishedMsg struct {
	needsSync bool
	err       error
}

type alertFiredMsg struct {
	event alert.Event
}

func NewModel(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SuggestionLimit <= 0 {
		deps.SuggestionLimit = 8
	}
	m := Model{
		CurrentView: ViewTasks,
		Active:      model.DefaultFilter(),
		TaskList: TaskListState{
			Selected: make(map[string]bool),
		},
		Keys: GlobalKeyMap{
			Tasks:   "1",
			Filters: "2",
			Sync:    "3",
			Help:    "?",
			Quit:    "q",
		},
		deps: deps,
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.taskList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 12)
	m.taskList.Title = "Pending tasks"
	m.taskList.SetShowHelp(false)
	m.taskList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Filter", Width: 36},
		{Title: "Selected", Width: 10},
	}
	m.filtersTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(10))

	m.captureInput = textinput.New()
	m.captureInput.Prompt = "add> "
	m.captureInput.CharLimit = 256
	m.captureInput.Width = 48

	m.filterInput = textinput.New()
	m.filterInput.Prompt = "filter> "
	m.filterInput.CharLimit = 256
	m.filterInput.Width = 48

	m.noteArea = textarea.New()
	m.noteArea.SetWidth(54)
	m.noteArea.SetHeight(6)
	m.noteArea.ShowLineNumbers = false
	m.noteArea.Placeholder = "Annotation (markdown)"

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m *Model) syncBubbleData() {
	items := make([]list.Item, 0, len(m.TaskList.Tasks))
	for _, t := range m.TaskList.Tasks {
		items = append(items, taskItem{title: t.Description, description: taskListMeta(t)})
	}
	m.taskList.SetItems(items)
	if len(items) > 0 && m.TaskList.Cursor < len(items) {
		m.taskList.Select(m.TaskList.Cursor)
	}

	rows := make([]table.Row, 0, len(m.FilterView.Saved))
	for i, f := range m.FilterView.Saved {
		marker := ""
		if i == m.FilterView.Cursor {
			marker = "*"
		}
		rows = append(rows, table.Row{f.Filter.FullDescription, marker})
	}
	m.filtersTable.SetRows(rows)
	if len(rows) > 0 && m.FilterView.Cursor < len(rows) {
		m.filtersTable.SetCursor(m.FilterView.Cursor)
	}

	m.captureInput.SetValue(m.Capture.Input)
	m.filterInput.SetValue(m.FilterView.Input)
	if m.Capture.Active {
		m.captureInput.Focus()
	}
	if m.FilterView.Authoring {
		m.filterInput.Focus()
	}
}

// SelectedTask returns the task under the cursor, if any.
func (m Model) SelectedTask() (model.Task, bool) {
	if m.TaskList.Cursor < 0 || m.TaskList.Cursor >= len(m.TaskList.Tasks) {
		return model.Task{}, false
	}
	return m.TaskList.Tasks[m.TaskList.Cursor], true
}
