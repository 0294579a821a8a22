// Package app wires the chat, widget, notification, and browser
// components into the root Bubble Tea model and routes messages between
// them.
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/keys"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/notify"
	"github.com/nhle/adchat/internal/store"
	"github.com/nhle/adchat/internal/theme"
	"github.com/nhle/adchat/internal/ui"
	chatview "github.com/nhle/adchat/internal/ui/chat"
	"github.com/nhle/adchat/internal/ui/command"
	helpview "github.com/nhle/adchat/internal/ui/help"
	"github.com/nhle/adchat/internal/ui/notifcenter"
	"github.com/nhle/adchat/internal/ui/programs"
	setupview "github.com/nhle/adchat/internal/ui/setup"
	"github.com/nhle/adchat/internal/ui/toast"
	"github.com/nhle/adchat/internal/ui/widget"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChat ViewState = iota
	ViewNotifications
	ViewBrowse
	ViewSetup
	ViewHelp
	ViewCommand
)

// linkOpenedMsg reports the outcome of opening a notification link.
type linkOpenedMsg struct {
	url string
	err error
}

// historyClearedMsg reports the outcome of wiping the local message log.
type historyClearedMsg struct {
	err error
}

// Model is the root Bubble Tea model that manages view routing, the
// widget and toast overlays, and the notification poller lifecycle.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout

	cfg        *model.AppConfig
	configPath string
	client     *api.Client
	store      store.Store
	keys       *keys.KeyMap

	chatView    chatview.Model
	widgetView  widget.Model
	notifView   notifcenter.Model
	browseView  programs.Model
	setupView   setupview.Model
	helpView    helpview.Model
	commandView command.Model
	toasts      toast.Model

	poller      *notify.Poller
	unreadCount int
	ready       bool
}

// New creates the root application model. When no session token is
// configured the app starts on the setup form instead of the chat view.
func New(
	cfg *model.AppConfig,
	configPath string,
	client *api.Client,
	s store.Store,
) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView: ViewChat,
		cfg:         cfg,
		configPath:  configPath,
		client:      client,
		store:       s,
		keys:        k,
		chatView:    chatview.New(client, s, k, cfg.Chat.HistoryLimit, 80, 24),
		widgetView:  widget.New(client, s, cfg.Chat.HistoryLimit, 80, 24),
		notifView:   notifcenter.New(client, k, 80, 24),
		browseView:  programs.New(client, k, 80, 24),
		setupView:   setupview.New(cfg, configPath, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		toasts:      toast.New(80),
	}

	if client.HasSession() {
		m.poller = notify.New(
			client,
			time.Duration(cfg.Notifications.PollIntervalSec)*time.Second,
		)
	} else {
		m.currentView = ViewSetup
	}

	return m
}

// Init starts the sub-views and, when a session exists, the poller.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.chatView.Init(),
		m.widgetView.Init(),
	}

	if m.currentView == ViewSetup {
		cmds = append(cmds, m.setupView.Init())
	}
	if m.poller != nil {
		cmds = append(cmds, m.poller.Start())
	}

	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Toast timers fire regardless of the active view.
	var toastCmd tea.Cmd
	m.toasts, toastCmd = m.toasts.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.chatView.SetSize(w, h)
		m.widgetView.SetSize(w, h)
		m.notifView.SetSize(w, h)
		m.browseView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.toasts.SetSize(w)
		// Forward to the active view so huh forms can lay themselves out.
		newM, cmd := m.updateActiveView(msg)
		return newM, tea.Batch(toastCmd, cmd)

	case notify.SnapshotMsg:
		return m.handleSnapshot(msg, toastCmd)

	// Replies can land while the user is on another view; route them to
	// their owning component directly.
	case chatview.ReplyMsg, chatview.UploadResultMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, tea.Batch(toastCmd, cmd)

	case widget.ReplyMsg:
		var cmd tea.Cmd
		m.widgetView, cmd = m.widgetView.Update(msg)
		return m, tea.Batch(toastCmd, cmd)

	case programs.PageLoadedMsg:
		var cmd tea.Cmd
		m.browseView, cmd = m.browseView.Update(msg)
		return m, tea.Batch(toastCmd, cmd)

	case notifcenter.MarkedReadMsg:
		return m.handleMarkedRead(msg, toastCmd)

	case notifcenter.MarkedAllReadMsg:
		if msg.Err != nil {
			cmd := m.toasts.Push(
				"Không thể đánh dấu thông báo",
				model.SeverityError,
				m.toastDuration(),
			)
			return m, tea.Batch(toastCmd, cmd)
		}
		if m.poller != nil {
			m.poller.Refresh()
		}
		cmd := m.toasts.Push(
			"Đã đánh dấu tất cả thông báo là đã đọc",
			model.SeveritySuccess,
			m.toastDuration(),
		)
		return m, tea.Batch(toastCmd, cmd)

	case linkOpenedMsg:
		if msg.err != nil {
			cmd := m.toasts.Push(
				"Không thể mở liên kết: "+msg.url,
				model.SeverityWarning,
				m.toastDuration(),
			)
			return m, tea.Batch(toastCmd, cmd)
		}
		return m, toastCmd

	case historyClearedMsg:
		if msg.err != nil {
			cmd := m.toasts.Push(
				"Không thể xóa lịch sử trò chuyện",
				model.SeverityError,
				m.toastDuration(),
			)
			return m, tea.Batch(toastCmd, cmd)
		}
		cmd := m.toasts.Push(
			"Đã xóa lịch sử trò chuyện",
			model.SeveritySuccess,
			m.toastDuration(),
		)
		return m, tea.Batch(toastCmd, cmd)

	case notifcenter.CloseMsg, programs.CloseMsg:
		m.currentView = ViewChat
		return m, tea.Batch(toastCmd, m.chatView.Focus())

	case widget.CloseMsg:
		// The widget already closed itself; restore focus to the chat.
		if m.currentView == ViewChat {
			return m, tea.Batch(toastCmd, m.chatView.Focus())
		}
		return m, toastCmd

	case setupview.DoneMsg:
		return m.handleSetupDone(msg, toastCmd)

	case command.CommandMsg:
		m.currentView = m.previousView
		newM, cmd := m.executeCommand(string(msg))
		return newM, tea.Batch(toastCmd, cmd)

	case tea.KeyMsg:
		newM, cmd := m.handleKeyMsg(msg)
		return newM, tea.Batch(toastCmd, cmd)
	}

	newM, cmd := m.updateActiveView(msg)
	return newM, tea.Batch(toastCmd, cmd)
}

// handleSnapshot applies a fresh notification snapshot and re-arms the
// poller subscription.
func (m Model) handleSnapshot(msg notify.SnapshotMsg, toastCmd tea.Cmd) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{toastCmd}
	if m.poller != nil {
		cmds = append(cmds, m.poller.WaitForNextResult())
	}

	if msg.Err != nil {
		return m, tea.Batch(cmds...)
	}

	if m.ready && msg.UnreadCount > m.unreadCount {
		cmds = append(cmds, m.toasts.Push(
			fmt.Sprintf("Bạn có %d thông báo chưa đọc", msg.UnreadCount),
			model.SeverityInfo,
			m.toastDuration(),
		))
	}

	m.unreadCount = msg.UnreadCount
	m.notifView.SetSnapshot(msg.UnreadCount, msg.Notifications)
	return m, tea.Batch(cmds...)
}

// handleMarkedRead refreshes the snapshot and follows the notification
// link when one was supplied.
func (m Model) handleMarkedRead(msg notifcenter.MarkedReadMsg, toastCmd tea.Cmd) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		cmd := m.toasts.Push(
			"Không thể đánh dấu thông báo",
			model.SeverityError,
			m.toastDuration(),
		)
		return m, tea.Batch(toastCmd, cmd)
	}

	if m.poller != nil {
		m.poller.Refresh()
	}

	if msg.Link == "" {
		return m, toastCmd
	}
	return m, tea.Batch(toastCmd, followLink(msg.Link))
}

// followLink opens a notification link in the system browser after a
// short delay so the refreshed snapshot renders first.
func followLink(url string) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(300 * time.Millisecond)
		return linkOpenedMsg{url: url, err: openBrowser(url)}
	}
}

// handleSetupDone rewires the client-backed components after the setup
// form saved a new configuration.
func (m Model) handleSetupDone(msg setupview.DoneMsg, toastCmd tea.Cmd) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		// Aborted. Fall back to the chat when a session already exists,
		// otherwise there is nothing to show.
		if m.client.HasSession() {
			m.currentView = ViewChat
			return m, tea.Batch(toastCmd, m.chatView.Focus())
		}
		if m.poller != nil {
			m.poller.Stop()
		}
		return m, tea.Quit
	}

	m.cfg = msg.Config
	m.client = api.NewClient(
		msg.Config.Server.BaseURL,
		msg.Token,
		time.Duration(msg.Config.Server.TimeoutSec)*time.Second,
	)

	w, h := 80, 24
	if m.ready {
		w, h = m.layout.ContentWidth(), m.layout.ContentHeight()
	}
	m.chatView = chatview.New(m.client, m.store, m.keys, m.cfg.Chat.HistoryLimit, w, h)
	m.widgetView = widget.New(m.client, m.store, m.cfg.Chat.HistoryLimit, w, h)
	m.notifView = notifcenter.New(m.client, m.keys, w, h)
	m.browseView = programs.New(m.client, m.keys, w, h)

	if m.poller != nil {
		m.poller.Stop()
	}
	m.poller = notify.New(
		m.client,
		time.Duration(m.cfg.Notifications.PollIntervalSec)*time.Second,
	)

	m.currentView = ViewChat
	cmd := m.toasts.Push(
		"Đã lưu cấu hình",
		model.SeveritySuccess,
		m.toastDuration(),
	)
	return m, tea.Batch(
		toastCmd,
		cmd,
		m.chatView.Init(),
		m.widgetView.Init(),
		m.poller.Start(),
	)
}

// handleKeyMsg routes key presses: the open widget captures everything
// except the global toggle and quit, then global bindings apply, then the
// active view.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.poller != nil {
			m.poller.Stop()
		}
		return m, tea.Quit

	case "ctrl+w":
		if m.currentView == ViewSetup || m.currentView == ViewCommand {
			break
		}
		cmd := m.widgetView.Toggle()
		return m, cmd

	case "ctrl+x":
		m.toasts.DismissNewest()
		return m, nil
	}

	// An open widget owns the keyboard.
	if m.widgetView.IsOpen() {
		var cmd tea.Cmd
		m.widgetView, cmd = m.widgetView.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+n":
		if m.currentView == ViewSetup {
			break
		}
		if m.currentView == ViewNotifications {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return m, nil

	case "ctrl+b":
		if m.currentView == ViewSetup {
			break
		}
		if m.currentView == ViewBrowse {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewBrowse
		return m, m.browseView.Open()

	case "ctrl+h":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case ":", "ctrl+p":
		// The chat composer owns the bare ":" while typing; ctrl+p opens
		// the palette from anywhere.
		if msg.String() == ":" && (m.currentView == ViewChat || m.currentView == ViewSetup) {
			break
		}
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus()

	case "ctrl+r":
		if m.poller != nil {
			m.poller.Refresh()
		}
		return m, nil
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewBrowse:
		m.browseView, cmd = m.browseView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "refresh":
		if m.poller != nil {
			m.poller.Refresh()
		}
		return m, nil

	case "mark-all-read", "read-all":
		client := m.client
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return notifcenter.MarkedAllReadMsg{Err: client.MarkAllNotificationsRead(ctx)}
		}

	case "clear", "clear-history":
		return m, m.clearHistory()

	case "setup", "config":
		m.previousView = m.currentView
		m.currentView = ViewSetup
		m.setupView = setupview.New(m.cfg, m.configPath, m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())
		return m, m.setupView.Init()

	case "notifications":
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return m, nil

	case "programs", "browse", "news":
		m.previousView = m.currentView
		m.currentView = ViewBrowse
		return m, m.browseView.Open()

	case "chat":
		m.currentView = ViewChat
		return m, m.chatView.Focus()

	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case "quit", "q":
		if m.poller != nil {
			m.poller.Stop()
		}
		return m, tea.Quit
	}

	return m, nil
}

// clearHistory wipes the persisted message log and resets both
// transcripts.
func (m *Model) clearHistory() tea.Cmd {
	m.chatView.Reset()
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return historyClearedMsg{err: s.ClearMessages(ctx)}
	}
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Đang khởi động..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.pollStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	if m.toasts.Active() {
		content = lipgloss.JoinVertical(lipgloss.Left, m.toasts.View(), content)
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerTitle builds the title with the unread and widget badges.
func (m Model) headerTitle() string {
	title := "Tư vấn Tuyển sinh"
	if m.unreadCount > 0 {
		title += fmt.Sprintf(" [%s thông báo]", theme.BadgeLabel(m.unreadCount))
	}
	if badge := m.widgetView.BadgeView(); badge != "" {
		title += " 💬" + badge
	}
	return title
}

// renderContent returns the rendered string for the current active view.
// An open widget is modal and replaces the content area.
func (m Model) renderContent() string {
	if m.widgetView.IsOpen() {
		return m.widgetView.View()
	}

	switch m.currentView {
	case ViewChat:
		return m.chatView.View()
	case ViewNotifications:
		return m.notifView.View()
	case ViewBrowse:
		return m.browseView.View()
	case ViewSetup:
		return m.setupView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// pollStatus returns a short string describing the poller state.
func (m Model) pollStatus() string {
	if m.poller == nil {
		return "chưa kết nối"
	}

	st := m.poller.GetStatus()
	switch st.State {
	case notify.Running:
		return "đang tải..."
	case notify.Error:
		return "⚠ mất kết nối"
	default:
		if st.LastFetch.IsZero() {
			return ""
		}
		return "cập nhật " + st.LastFetch.Format("15:04")
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.widgetView.IsOpen() {
		return "enter gửi | tab gợi ý | esc đóng | ctrl+w ẩn"
	}

	switch m.currentView {
	case ViewNotifications:
		return "enter đọc | a đọc tất cả | ctrl+r làm mới | esc quay lại"
	case ViewBrowse:
		return "m xem thêm | tab chuyển mục | esc quay lại"
	case ViewSetup:
		return "enter tiếp tục | esc hủy"
	case ViewHelp:
		return "ctrl+h đóng"
	case ViewCommand:
		return "enter thực hiện | esc quay lại"
	default:
		return "enter gửi | ctrl+u gửi tệp | ctrl+w trợ lý | ctrl+n thông báo | ctrl+h trợ giúp"
	}
}

// toastDuration returns the configured auto-dismiss delay.
func (m Model) toastDuration() time.Duration {
	return time.Duration(m.cfg.Display.ToastDurationSec) * time.Second
}
