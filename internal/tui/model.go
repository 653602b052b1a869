// Package tui is the interactive task view. It hosts the task controller on
// the Bubble Tea event loop: controller effects run as commands and their
// results come back as messages.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"taskman/internal/credential"
	"taskman/internal/logging"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/tasklist"
)

type screen int

const (
	screenList screen = iota
	screenFilter
	screenForm
	screenConfirmDelete
	screenLogin
)

// formField indexes the inputs of the task form.
type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldPriority
	fieldStatus
	fieldCount
)

// resultMsg carries a finished controller effect back to the event loop.
type resultMsg struct {
	result tasklist.Result
}

type loginResultMsg struct {
	token string
	err   error
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    context.Context
	ctrl   *tasklist.Controller
	guard  *session.Guard
	auth   service.Authenticator
	creds  credential.Store
	logger zerolog.Logger

	screen screen
	cursor int
	notice string
	err    error

	keys     keyMap
	formKeys formKeyMap
	help     help.Model
	spinner  spinner.Model

	filterInput textinput.Model

	titleInput textinput.Model
	descInput  textarea.Model
	focus      formField
	priority   service.Priority
	status     service.Status

	userInput  textinput.Model
	passInput  textinput.Model
	loginFocus int
	loggingIn  bool

	pendingDelete service.Task

	// navCmd is the command from the guard's navigation, returned by the
	// next apply.
	navCmd tea.Cmd

	width  int
	height int
}

// New builds the view. Effects run with ctx.
func New(ctx context.Context, tasks service.Service, auth service.Authenticator, creds credential.Store) *Model {
	m := &Model{
		ctx:      ctx,
		auth:     auth,
		creds:    creds,
		logger:   logging.Component("tui"),
		keys:     newKeyMap(),
		formKeys: newFormKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.spinner.Style = titleStyle

	m.guard = session.NewGuard(creds, m.onSessionExpired, logging.Component("session"))
	m.ctrl = tasklist.New(tasks, m.guard, logging.Component("tasklist"))

	m.filterInput = textinput.New()
	m.filterInput.Placeholder = "title contains..."
	m.filterInput.CharLimit = 200
	m.filterInput.Width = 40

	m.titleInput = textinput.New()
	m.titleInput.Placeholder = "What needs doing?"
	m.titleInput.CharLimit = 200
	m.titleInput.Width = 50

	m.descInput = textarea.New()
	m.descInput.Placeholder = "Details (ctrl+j for a new line)"
	m.descInput.ShowLineNumbers = false
	m.descInput.SetWidth(50)
	m.descInput.SetHeight(4)
	m.descInput.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j", "alt+enter"))

	m.userInput = textinput.New()
	m.userInput.Placeholder = "username"
	m.userInput.Width = 30

	m.passInput = textinput.New()
	m.passInput.Placeholder = "password"
	m.passInput.EchoMode = textinput.EchoPassword
	m.passInput.EchoCharacter = '•'
	m.passInput.Width = 30

	return m
}

// Run starts the interactive view and blocks until the user quits.
func Run(ctx context.Context, tasks service.Service, auth service.Authenticator, creds credential.Store) error {
	m := New(ctx, tasks, auth, creds)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

// start shows the login screen when there is no credential and loads the
// first page otherwise.
func (m *Model) start() tea.Cmd {
	if _, ok := m.creds.Get(); !ok {
		return m.showLogin("")
	}
	return m.run(m.ctrl.Refresh())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.descInput.SetWidth(min(60, max(20, msg.Width-18)))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		return m, m.apply(msg.result)

	case loginResultMsg:
		return m, m.finishLogin(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenList:
			return m, m.updateList(msg)
		case screenFilter:
			return m, m.updateFilter(msg)
		case screenForm:
			return m, m.updateForm(msg)
		case screenConfirmDelete:
			return m, m.updateConfirmDelete(msg)
		case screenLogin:
			return m, m.updateLogin(msg)
		}
	}

	return m, m.updateFocusedInput(msg)
}

// run turns a controller effect into a command.
func (m *Model) run(eff tasklist.Effect) tea.Cmd {
	if eff == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{result: eff(ctx)}
	}
}

func (m *Model) apply(r tasklist.Result) tea.Cmd {
	next, err := m.ctrl.Apply(r)
	if err != nil && !service.IsUnauthorized(err) {
		m.logger.Debug().Err(err).Msg("operation failed")
	}
	if m.screen == screenForm && !m.ctrl.State().Form.IsOpen() {
		m.screen = screenList
		m.notice = "saved"
	}
	m.clampCursor()

	cmd := m.run(next)
	if nav := m.navCmd; nav != nil {
		m.navCmd = nil
		return tea.Batch(cmd, nav)
	}
	return cmd
}

// onSessionExpired is the guard's navigation: it switches to the login screen.
// Controller state, including an open form, is left as it was.
func (m *Model) onSessionExpired() {
	m.navCmd = m.showLogin("session expired, please log in again")
}

func (m *Model) showLogin(notice string) tea.Cmd {
	m.screen = screenLogin
	m.notice = notice
	m.err = nil
	m.loginFocus = 0
	m.passInput.SetValue("")
	m.passInput.Blur()
	return m.userInput.Focus()
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	state := m.ctrl.State()

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(state.Tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.prevPage):
		return m.movePage(state.Page - 1)
	case key.Matches(msg, m.keys.nextPage):
		return m.movePage(state.Page + 1)
	case key.Matches(msg, m.keys.filterTitle):
		m.screen = screenFilter
		m.filterInput.SetValue(state.Filter.Title)
		m.filterInput.CursorEnd()
		return m.filterInput.Focus()
	case key.Matches(msg, m.keys.cycleStatus):
		f := state.Filter
		f.Status = nextStatusFilter(f.Status)
		m.cursor = 0
		return m.run(m.ctrl.SetFilter(f))
	case key.Matches(msg, m.keys.reset):
		m.cursor = 0
		return m.run(m.ctrl.ResetFilter())
	case key.Matches(msg, m.keys.refresh):
		return m.run(m.ctrl.Refresh())
	case key.Matches(msg, m.keys.newTask):
		m.ctrl.OpenCreateForm()
		return m.showForm()
	case key.Matches(msg, m.keys.editTask):
		if task, ok := m.selected(); ok {
			m.ctrl.OpenEditForm(task)
			return m.showForm()
		}
	case key.Matches(msg, m.keys.deleteTask):
		if task, ok := m.selected(); ok {
			m.pendingDelete = task
			m.screen = screenConfirmDelete
		}
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) movePage(n int) tea.Cmd {
	eff := m.ctrl.SetPage(n)
	if eff == nil {
		return nil
	}
	m.cursor = 0
	return m.run(eff)
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		f := m.ctrl.State().Filter
		f.Title = strings.TrimSpace(m.filterInput.Value())
		m.filterInput.Blur()
		m.screen = screenList
		m.cursor = 0
		return m.run(m.ctrl.SetFilter(f))
	case tea.KeyEsc:
		m.filterInput.Blur()
		m.screen = screenList
		return nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd
}

// showForm copies the controller's draft into the inputs.
func (m *Model) showForm() tea.Cmd {
	form := m.ctrl.State().Form
	m.screen = screenForm
	m.notice = ""
	m.titleInput.SetValue(form.Draft.Title)
	m.titleInput.CursorEnd()
	m.descInput.SetValue(form.Draft.Description)
	m.priority = form.Draft.Priority
	m.status = form.Draft.Status
	return m.focusField(fieldTitle)
}

func (m *Model) focusField(f formField) tea.Cmd {
	m.focus = f
	m.titleInput.Blur()
	m.descInput.Blur()
	switch f {
	case fieldTitle:
		return m.titleInput.Focus()
	case fieldDescription:
		return m.descInput.Focus()
	}
	return nil
}

// syncDraft pushes the inputs into the controller's draft.
func (m *Model) syncDraft() {
	d := m.ctrl.State().Form.Draft
	d.Title = m.titleInput.Value()
	d.Description = m.descInput.Value()
	d.Priority = m.priority
	d.Status = m.status
	m.ctrl.SetDraft(d)
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.formKeys.cancel):
		m.ctrl.CancelForm()
		m.screen = screenList
		return nil
	case key.Matches(msg, m.formKeys.submit):
		m.syncDraft()
		eff, err := m.ctrl.SubmitForm()
		if err != nil {
			m.logger.Debug().Err(err).Msg("draft rejected")
			return nil
		}
		return m.run(eff)
	case key.Matches(msg, m.formKeys.next):
		return m.focusField((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.formKeys.prev):
		return m.focusField((m.focus + fieldCount - 1) % fieldCount)
	}

	switch m.focus {
	case fieldPriority:
		if key.Matches(msg, m.formKeys.cycle) {
			m.priority = cycle(service.Priorities, m.priority, msg.String() == "left")
		}
		return nil
	case fieldStatus:
		if key.Matches(msg, m.formKeys.cycle) {
			m.status = cycle(service.Statuses, m.status, msg.String() == "left")
		}
		return nil
	}
	return m.updateFocusedInput(msg)
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.screen = screenList
		return m.run(m.ctrl.DeleteTask(m.pendingDelete.ID))
	case "n", "N", "esc", "q":
		m.screen = screenList
	}
	return nil
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.passInput.Blur()
			return m.userInput.Focus()
		}
		m.userInput.Blur()
		return m.passInput.Focus()
	case tea.KeyEsc:
		m.err = nil
		return nil
	case tea.KeyEnter:
		return m.submitLogin()
	}
	return m.updateFocusedInput(msg)
}

func (m *Model) submitLogin() tea.Cmd {
	if m.loggingIn {
		return nil
	}
	username := strings.TrimSpace(m.userInput.Value())
	password := m.passInput.Value()
	if username == "" || password == "" {
		m.err = errors.New("username and password required")
		return nil
	}

	m.loggingIn = true
	m.err = nil
	ctx, auth := m.ctx, m.auth
	return func() tea.Msg {
		token, err := auth.Login(ctx, username, password)
		return loginResultMsg{token: token, err: err}
	}
}

func (m *Model) finishLogin(msg loginResultMsg) tea.Cmd {
	m.loggingIn = false
	if msg.err != nil {
		m.err = msg.err
		m.passInput.SetValue("")
		return nil
	}
	if err := m.creds.Set(msg.token); err != nil {
		m.err = err
		return nil
	}

	m.logger.Info().Str("username", m.userInput.Value()).Msg("logged in")
	m.guard.Reset()
	m.passInput.SetValue("")
	m.passInput.Blur()
	m.userInput.Blur()
	m.notice = ""
	m.err = nil

	if m.ctrl.State().Form.IsOpen() {
		m.screen = screenForm
	} else {
		m.screen = screenList
	}
	return m.run(m.ctrl.Refresh())
}

// updateFocusedInput forwards msg to whichever text input has focus.
func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.screen {
	case screenFilter:
		m.filterInput, cmd = m.filterInput.Update(msg)
	case screenForm:
		switch m.focus {
		case fieldTitle:
			m.titleInput, cmd = m.titleInput.Update(msg)
		case fieldDescription:
			m.descInput, cmd = m.descInput.Update(msg)
		}
	case screenLogin:
		if m.loginFocus == 0 {
			m.userInput, cmd = m.userInput.Update(msg)
		} else {
			m.passInput, cmd = m.passInput.Update(msg)
		}
	}
	return cmd
}

func (m *Model) selected() (service.Task, bool) {
	tasks := m.ctrl.State().Tasks
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.State().Tasks)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// nextStatusFilter cycles any → pending → completed → any.
func nextStatusFilter(s service.Status) service.Status {
	switch s {
	case "":
		return service.StatusPending
	case service.StatusPending:
		return service.StatusCompleted
	default:
		return ""
	}
}

func cycle[T comparable](values []T, current T, backwards bool) T {
	i := 0
	for j, v := range values {
		if v == current {
			i = j
			break
		}
	}
	if backwards {
		i = (i + len(values) - 1) % len(values)
	} else {
		i = (i + 1) % len(values)
	}
	return values[i]
}
