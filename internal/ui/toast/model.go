// Package toast renders a stack of transient alerts in a fixed corner of
// the frame. Toasts auto-dismiss after their duration; a zero duration
// keeps a toast on screen until dismissed manually. There is no cap on
// concurrent toasts.
package toast

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/theme"
)

// DefaultDuration is used when a caller does not specify one.
const DefaultDuration = 5 * time.Second

// expireMsg dismisses the toast with the given id when its timer fires.
type expireMsg struct {
	id int
}

// Toast is a single alert in the stack.
type Toast struct {
	id       int
	Message  string
	Severity model.Severity
}

// Model holds the active toast stack.
type Model struct {
	toasts []Toast
	nextID int
	width  int
}

// New creates an empty toast stack.
func New(width int) Model {
	return Model{width: width}
}

// Push appends a toast and returns the command that schedules its
// dismissal. duration 0 means the toast persists until dismissed via
// DismissNewest.
func (m *Model) Push(
	message string,
	severity model.Severity,
	duration time.Duration,
) tea.Cmd {
	id := m.nextID
	m.nextID++

	m.toasts = append(m.toasts, Toast{
		id:       id,
		Message:  message,
		Severity: severity,
	})

	if duration <= 0 {
		return nil
	}
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return expireMsg{id: id}
	})
}

// Update handles toast expiry timers.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if expire, ok := msg.(expireMsg); ok {
		m.dismiss(expire.id)
	}
	return m, nil
}

// DismissNewest removes the most recently pushed toast, if any.
func (m *Model) DismissNewest() {
	if len(m.toasts) == 0 {
		return
	}
	m.toasts = m.toasts[:len(m.toasts)-1]
}

// dismiss removes the toast with the given id. Timers for toasts that
// were already dismissed manually fire harmlessly.
func (m *Model) dismiss(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Active reports whether any toast is on screen.
func (m Model) Active() bool {
	return len(m.toasts) > 0
}

// Toasts returns the current stack, oldest first.
func (m Model) Toasts() []Toast {
	return m.toasts
}

// View renders the toast stack, oldest on top.
func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}

	maxWidth := m.width / 3
	if maxWidth < 24 {
		maxWidth = 24
	}

	var rendered []string
	for _, t := range m.toasts {
		icon := theme.SeverityStyle(t.Severity).
			Render(theme.SeverityIcon(t.Severity))
		body := lipgloss.NewStyle().
			Width(maxWidth).
			Render(icon + " " + t.Message)
		rendered = append(rendered, theme.ToastStyle(t.Severity).Render(body))
	}

	return strings.Join(rendered, "\n")
}

// SetSize updates the available width for toast rendering.
func (m *Model) SetSize(width int) {
	m.width = width
}
