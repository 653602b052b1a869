package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskman/internal/output"
	"taskman/internal/service"
	"taskman/internal/tasklist"
)

func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenForm:
		body = m.viewForm()
	default:
		body = m.viewList()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), body, m.viewStatus(), m.viewHelp())
}

func (m *Model) viewHeader() string {
	header := titleStyle.Render("taskman")
	if m.ctrl.State().Loading {
		header += " " + m.spinner.View()
	}
	return header + "\n"
}

func (m *Model) viewList() string {
	state := m.ctrl.State()
	var b strings.Builder

	b.WriteString(mutedStyle.Render(describeFilter(state.Filter)))
	b.WriteString("\n\n")

	if len(state.Tasks) == 0 {
		if state.Loading {
			b.WriteString(mutedStyle.Render("loading..."))
		} else {
			b.WriteString(mutedStyle.Render("no tasks found"))
		}
		b.WriteString("\n")
	}
	for i, task := range state.Tasks {
		b.WriteString(m.renderTask(i, task))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("page %d of %d", state.Page, state.LastPage())))
	b.WriteString("\n")

	switch m.screen {
	case screenFilter:
		b.WriteString("\n")
		b.WriteString(focusedLabelStyle.Render("Title filter"))
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	case screenConfirmDelete:
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q? (y/n)", output.NormalizeTitle(m.pendingDelete.Title))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderTask(i int, task service.Task) string {
	mark := "[ ]"
	if task.Status == service.StatusCompleted {
		mark = "[x]"
	}
	priority := fmt.Sprintf("%-6s", task.Priority)
	if task.Priority == service.PriorityHigh {
		priority = highStyle.Render(priority)
	}
	title := output.NormalizeTitle(task.Title)
	if task.Status == service.StatusCompleted {
		title = doneStyle.Render(title)
	}

	prefix := "  "
	if i == m.cursor {
		prefix = selectedStyle.Render("> ")
		mark = selectedStyle.Render(mark)
	}
	return fmt.Sprintf("%s%s %s %s", prefix, mark, priority, title)
}

func (m *Model) viewForm() string {
	form := m.ctrl.State().Form
	heading := "New task"
	if form.Mode == tasklist.FormEdit {
		heading = "Edit task " + string(form.EditingID)
	}

	rows := []string{
		titleStyle.Render(heading),
		"",
		m.formRow(fieldTitle, "Title", m.titleInput.View()),
		m.formRow(fieldDescription, "Description", m.descInput.View()),
		m.formRow(fieldPriority, "Priority", choice(service.Priorities, m.priority)),
		m.formRow(fieldStatus, "Status", choice(service.Statuses, m.status)),
	}
	if form.Submitting {
		rows = append(rows, "", mutedStyle.Render("saving..."))
	}
	return panelStyle.Render(strings.Join(rows, "\n")) + "\n"
}

func (m *Model) formRow(f formField, label, value string) string {
	style := labelStyle
	if m.focus == f {
		style = focusedLabelStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, style.Render(label), value)
}

func choice[T ~string](values []T, current T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == current {
			parts[i] = selectedStyle.Render("[" + string(v) + "]")
		} else {
			parts[i] = mutedStyle.Render(" " + string(v) + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) viewLogin() string {
	userLabel, passLabel := labelStyle, labelStyle
	if m.loginFocus == 0 {
		userLabel = focusedLabelStyle
	} else {
		passLabel = focusedLabelStyle
	}

	rows := []string{
		titleStyle.Render("Log in"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, userLabel.Render("Username"), m.userInput.View()),
		lipgloss.JoinHorizontal(lipgloss.Top, passLabel.Render("Password"), m.passInput.View()),
	}
	if m.loggingIn {
		rows = append(rows, "", mutedStyle.Render("logging in..."))
	}
	return panelStyle.Render(strings.Join(rows, "\n")) + "\n"
}

func (m *Model) viewStatus() string {
	err := m.err
	if err == nil && m.screen != screenLogin {
		err = m.ctrl.State().Err
	}
	if err != nil {
		return errorStyle.Render("error: " + describeError(err))
	}
	if m.notice != "" {
		return mutedStyle.Render(m.notice)
	}
	return ""
}

func (m *Model) viewHelp() string {
	switch m.screen {
	case screenForm:
		return m.help.View(m.formKeys)
	case screenLogin:
		return mutedStyle.Render("tab switch field • enter log in • ctrl+c quit")
	case screenFilter:
		return mutedStyle.Render("enter apply • esc cancel")
	default:
		return m.help.View(m.keys)
	}
}

func describeFilter(f service.Filter) string {
	if f.IsZero() {
		return "all tasks"
	}
	var parts []string
	if f.Title != "" {
		parts = append(parts, fmt.Sprintf("title contains %q", f.Title))
	}
	if f.Status != "" {
		parts = append(parts, "status "+string(f.Status))
	}
	return strings.Join(parts, ", ")
}

func describeError(err error) string {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		return "title required"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid username or password"
	}
	return err.Error()
}
