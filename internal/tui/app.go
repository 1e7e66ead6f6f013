// Package tui is the terminal presentation layer. It renders the task list
// and drives the onboarding, view/edit, delete and upgrade surfaces as modal
// modes over it; all domain decisions live in the flow and controller
// packages. Remote calls run as tea.Cmd work and report back as messages, so
// the loop stays responsive and a spinner shows while anything is in flight.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chukwudi34/task-manager/internal/api"
	"github.com/chukwudi34/task-manager/internal/config"
	"github.com/chukwudi34/task-manager/internal/model"
	"github.com/chukwudi34/task-manager/internal/onboard"
	"github.com/chukwudi34/task-manager/internal/session"
	"github.com/chukwudi34/task-manager/internal/tasks"
	"github.com/chukwudi34/task-manager/internal/upgrade"
)

// mode is which surface currently owns the keyboard.
type mode int

const (
	modeList mode = iota
	modeOnboard
	modeView
	modeEdit
	modeConfirmDelete
	modeUpgrade
)

// Result messages from async work.
type fetchMsg tasks.FetchResult

type deleteDoneMsg struct {
	id  string
	err error
}

type userCreatedMsg struct {
	identity model.Identity
	err      error
}

type taskCreatedMsg struct{ err error }

type taskLoadedMsg struct {
	task model.Task
	err  error
}

type taskUpdatedMsg struct {
	task model.Task
	err  error
}

type payDoneMsg struct {
	result api.VerifyResult
	err    error
}

type clearNoticeMsg struct{}

// App is the Bubble Tea model for the whole client.
type App struct {
	cfg    config.Config
	sess   *session.Session
	client *api.Client
	ctrl   *tasks.Controller
	logger *slog.Logger

	mode   mode
	spin   spinner.Model
	busy   bool // a modal-owned remote call is in flight
	notice string
	bad    bool // notice is an error

	// list state
	cursor      int
	search      textinput.Model
	dateFilter  textinput.Model
	statusIdx   int // index into statusFilters
	filterFocus int // -1 none, 0 search, 1 date

	// onboarding surface
	flow     *onboard.Flow
	obInputs []textinput.Model
	obFocus  int
	obStatus int // selected status index for the task step
	obErrs   api.FieldErrors

	// view/edit surface
	viewID     string
	viewTask   model.Task
	viewLoaded bool
	editInputs []textinput.Model
	editFocus  int
	editStatus int
	editErrs   api.FieldErrors

	// delete confirmation
	deleteID string

	// upgrade surface
	up       *upgrade.Flow
	upInputs []textinput.Model
	upFocus  int
	upStage  int // 0 details, 1 widget (reference entry)
	upErr    string

	width, height int
}

// statusFilters are the status filter options in cycle order.
var statusFilters = []model.Status{"", model.StatusPending, model.StatusInProgress, model.StatusCompleted}

// New builds the app. The startup identity read decides whether the first
// fetch fires at all: without an identity the controller issues none.
func New(cfg config.Config, sess *session.Session, client *api.Client, logger *slog.Logger) App {
	a := App{
		cfg:         cfg,
		sess:        sess,
		client:      client,
		ctrl:        tasks.NewController(client, sess),
		logger:      logger,
		filterFocus: -1,
	}
	a.spin = spinner.New()
	a.spin.Spinner = spinner.Dot
	a.spin.Style = accentStyle

	a.search = textinput.New()
	a.search.Prompt = "/ "
	a.search.Placeholder = "Search by task name, description"
	a.search.CharLimit = 120

	a.dateFilter = textinput.New()
	a.dateFilter.Prompt = "date: "
	a.dateFilter.Placeholder = "YYYY-MM-DD"
	a.dateFilter.CharLimit = 10
	return a
}

// Run starts the program in the alternate screen.
func Run(cfg config.Config, sess *session.Session, client *api.Client, logger *slog.Logger) error {
	p := tea.NewProgram(New(cfg, sess, client, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spin.Tick}
	if spec, ok := a.ctrl.ResolveIdentity(a.sess); ok {
		cmds = append(cmds, a.fetchCmd(spec))
	}
	return tea.Batch(cmds...)
}

// ------- async work -------

func (a App) fetchCmd(spec tasks.FetchSpec) tea.Cmd {
	ctrl := a.ctrl
	return func() tea.Msg {
		return fetchMsg(ctrl.Fetch(context.Background(), spec))
	}
}

func (a App) deleteCmd(id string) tea.Cmd {
	ctrl := a.ctrl
	return func() tea.Msg {
		return deleteDoneMsg{id: id, err: ctrl.Delete(context.Background(), id)}
	}
}

func (a App) loadTaskCmd(id string) tea.Cmd {
	client := a.client
	return func() tea.Msg {
		t, err := client.GetTask(context.Background(), id)
		return taskLoadedMsg{task: t, err: err}
	}
}

func noticeTimeout() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg { return clearNoticeMsg{} })
}

// ------- update -------

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case fetchMsg:
		// The controller drops stale generations here.
		if a.ctrl.Commit(tasks.FetchResult(msg)) {
			if a.cursor >= len(a.ctrl.Visible()) {
				a.cursor = 0
			}
		}
		return a, nil

	case deleteDoneMsg:
		a.busy = false
		notice, ok := a.ctrl.CommitDelete(msg.id, msg.err)
		a.notice, a.bad = notice, !ok
		return a, noticeTimeout()

	case clearNoticeMsg:
		a.notice = ""
		return a, nil

	case userCreatedMsg:
		return a.onUserCreated(msg)
	case taskCreatedMsg:
		return a.onTaskCreated(msg)
	case taskLoadedMsg:
		return a.onTaskLoaded(msg)
	case taskUpdatedMsg:
		return a.onTaskUpdated(msg)
	case payDoneMsg:
		return a.onPayDone(msg)
	}

	switch a.mode {
	case modeOnboard:
		return a.updateOnboard(msg)
	case modeView, modeEdit:
		return a.updateView(msg)
	case modeConfirmDelete:
		return a.updateConfirm(msg)
	case modeUpgrade:
		return a.updateUpgrade(msg)
	}
	return a.updateList(msg)
}

func (a App) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	// A focused filter input eats keys until enter or esc commits it.
	if a.filterFocus >= 0 {
		switch key.String() {
		case "enter":
			return a.applyFilters()
		case "esc":
			a.blurFilters()
			return a, nil
		}
		var cmd tea.Cmd
		if a.filterFocus == 0 {
			a.search, cmd = a.search.Update(msg)
		} else {
			a.dateFilter, cmd = a.dateFilter.Update(msg)
		}
		return a, cmd
	}

	switch key.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.ctrl.Visible())-1 {
			a.cursor++
		}

	case "/":
		a.filterFocus = 0
		a.search.Focus()
	case "D":
		a.filterFocus = 1
		a.dateFilter.Focus()
	case "s":
		// cycle the status filter and re-fetch
		a.statusIdx = (a.statusIdx + 1) % len(statusFilters)
		return a.applyFilters()

	case "r":
		if spec, ok := a.ctrl.Invalidate("manual refresh"); ok {
			return a, a.fetchCmd(spec)
		}

	case "a":
		if a.ctrl.AddTask() == tasks.AddUpgrade {
			return a.openUpgrade()
		}
		return a.openOnboard()

	case "u":
		if !a.sess.IsUnlimited() && a.ctrl.HasIdentity() {
			return a.openUpgrade()
		}

	case "enter", "v":
		if t, ok := a.selected(); ok {
			return a.openView(t.ID)
		}

	case "d":
		if t, ok := a.selected(); ok {
			a.deleteID = t.ID
			a.mode = modeConfirmDelete
		}
	}
	return a, nil
}

func (a App) selected() (model.Task, bool) {
	visible := a.ctrl.Visible()
	if a.cursor < 0 || a.cursor >= len(visible) {
		return model.Task{}, false
	}
	return visible[a.cursor], true
}

// applyFilters commits the filter inputs to the controller, which issues a
// fresh fetch for them.
func (a App) applyFilters() (tea.Model, tea.Cmd) {
	a.blurFilters()
	f := model.Filter{
		Name:   a.search.Value(),
		Status: statusFilters[a.statusIdx],
	}
	if raw := a.dateFilter.Value(); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			f.Date = d.Format("2006-01-02")
		} else {
			a.notice, a.bad = "Date must be YYYY-MM-DD.", true
			return a, noticeTimeout()
		}
	}
	a.cursor = 0
	spec, ok := a.ctrl.SetFilter(f)
	if !ok {
		return a, nil
	}
	return a, a.fetchCmd(spec)
}

func (a *App) blurFilters() {
	a.filterFocus = -1
	a.search.Blur()
	a.dateFilter.Blur()
}
