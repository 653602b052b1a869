package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the task list screen.
type keyMap struct {
	up          key.Binding
	down        key.Binding
	prevPage    key.Binding
	nextPage    key.Binding
	filterTitle key.Binding
	cycleStatus key.Binding
	reset       key.Binding
	newTask     key.Binding
	editTask    key.Binding
	deleteTask  key.Binding
	refresh     key.Binding
	toggleHelp  key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		prevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		filterTitle: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter title"),
		),
		cycleStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "filter status"),
		),
		reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset filters"),
		),
		newTask: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		editTask: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		deleteTask: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.filterTitle,
		k.cycleStatus,
		k.prevPage,
		k.nextPage,
		k.newTask,
		k.editTask,
		k.deleteTask,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.prevPage, k.nextPage},
		{k.filterTitle, k.cycleStatus, k.reset, k.refresh},
		{k.newTask, k.editTask, k.deleteTask},
		{k.toggleHelp, k.quit},
	}
}

// formKeyMap holds the bindings shared by the task form and the login screen.
type formKeyMap struct {
	next   key.Binding
	prev   key.Binding
	cycle  key.Binding
	submit key.Binding
	cancel key.Binding
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		cycle: key.NewBinding(
			key.WithKeys("left", "right", " "),
			key.WithHelp("←/→", "change"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.cycle, k.submit, k.cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
