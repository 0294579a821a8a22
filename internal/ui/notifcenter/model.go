// Package notifcenter renders the notification dropdown: a list of
// server-owned notifications with read/unread state. The list is a
// read-only snapshot; marking read posts to the backend and the app
// re-fetches, so the displayed state is always server-authoritative.
package notifcenter

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/keys"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/theme"
)

// MarkedReadMsg is sent after a mark-read request settles. Link is the
// notification's navigation target, empty when none was supplied.
type MarkedReadMsg struct {
	ID   int64
	Link string
	Err  error
}

// MarkedAllReadMsg is sent after a bulk mark-all-read request settles.
type MarkedAllReadMsg struct {
	Err error
}

// CloseMsg signals the parent to close the notification dropdown.
type CloseMsg struct{}

// requestTimeout bounds a single mark-read call.
const requestTimeout = 10 * time.Second

// Model is the notification dropdown component.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	notifications []model.Notification
	unreadCount   int
	cursor        int

	width  int
	height int
	now    func() time.Time
}

// New creates a notification dropdown backed by the given API client.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	return Model{
		client: client,
		keys:   k,
		width:  width,
		height: height,
		now:    time.Now,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetSnapshot replaces the displayed notifications wholesale with a fresh
// snapshot from the poller. There is no incremental diffing.
func (m *Model) SetSnapshot(unreadCount int, notifications []model.Notification) {
	m.unreadCount = unreadCount
	m.notifications = notifications
	if m.cursor >= len(notifications) {
		m.cursor = 0
	}
}

// UnreadCount returns the unread counter from the latest snapshot.
func (m Model) UnreadCount() int {
	return m.unreadCount
}

// Update handles messages for the dropdown.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.notifications)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Select):
		if m.cursor >= len(m.notifications) {
			return m, nil
		}
		n := m.notifications[m.cursor]
		return m, m.markAsRead(n)

	case key.Matches(keyMsg, m.keys.MarkAllRead):
		return m, m.markAllAsRead()
	}

	return m, nil
}

// markAsRead returns a command that posts the per-notification read
// endpoint. The local copy is never mutated; the app re-fetches on
// success.
func (m Model) markAsRead(n model.Notification) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := client.MarkNotificationRead(ctx, n.ID)
		return MarkedReadMsg{ID: n.ID, Link: n.Link, Err: err}
	}
}

// markAllAsRead returns a command that posts the bulk read endpoint.
func (m Model) markAllAsRead() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return MarkedAllReadMsg{Err: client.MarkAllNotificationsRead(ctx)}
	}
}

// View renders the dropdown panel.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := "Thông báo"
	if m.unreadCount > 0 {
		title += " " + theme.BadgeStyle.Render(theme.BadgeLabel(m.unreadCount))
	}

	var body string
	if len(m.notifications) == 0 {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render("Không có thông báo mới")
	} else {
		body = m.renderList()
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		body,
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// renderList renders the notification entries with the cursor highlight.
func (m Model) renderList() string {
	now := m.now()

	var rows []string
	for i, n := range m.notifications {
		icon := theme.SeverityStyle(n.Type).Render(theme.SeverityIcon(n.Type))

		titleStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
		if !n.IsRead {
			titleStyle = titleStyle.Bold(true)
		}

		line := icon + " " + titleStyle.Render(n.Title)
		if !n.IsRead {
			line += theme.SeverityStyle(model.SeverityInfo).Render(" ●")
		}

		meta := theme.TimestampStyle.Render(FormatRelativeTime(n.CreatedAt, now))
		msg := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Width(m.width - 10).
			Render(n.Message)

		entry := lipgloss.JoinVertical(lipgloss.Left, line, msg, meta)
		if i == m.cursor {
			entry = theme.SelectedItemStyle.Render(entry)
		} else {
			entry = theme.ListItemStyle.Render(entry)
		}
		rows = append(rows, entry)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// SetSize updates the dropdown dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
