// Package widget implements the floating chat widget: a self-contained
// chat panel with a toggle badge, quick actions, welcome suggestions, and
// local persistence of the message log across runs.
package widget

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/session"
	"github.com/nhle/adchat/internal/store"
	"github.com/nhle/adchat/internal/theme"
)

// QuickAction is a predefined prompt button that submits fixed text.
type QuickAction struct {
	Label   string
	Message string
}

// quickActions are always visible while the widget is open.
var quickActions = []QuickAction{
	{"Điểm chuẩn", "Điểm chuẩn các ngành năm nay là bao nhiêu?"},
	{"Tư vấn ngành", "Tư vấn ngành học phù hợp với điểm của tôi"},
	{"Nộp hồ sơ", "Hướng dẫn nộp hồ sơ tuyển sinh"},
	{"Lịch tuyển sinh", "Lịch tuyển sinh năm 2025"},
	{"Học phí", "Học phí các ngành là bao nhiêu?"},
}

// welcomeSuggestions are shown while the transcript is still empty.
var welcomeSuggestions = []QuickAction{
	{"Tư vấn ngành học phù hợp với điểm số của tôi", "Tôi muốn tư vấn ngành học phù hợp"},
	{"Xem điểm chuẩn các năm trước", "Xem điểm chuẩn các năm trước"},
	{"Hướng dẫn đăng ký xét tuyển online", "Hướng dẫn đăng ký xét tuyển"},
}

// CloseMsg signals the parent to close the widget.
type CloseMsg struct{}

// ReplyMsg carries the settled outcome of one widget submission.
type ReplyMsg struct {
	Seq      uint64
	Response *api.ChatResponse
	Err      error
}

// historyLoadedMsg carries the persisted message log at construction
// time. The log is kept but deliberately not replayed into the visible
// transcript.
type historyLoadedMsg struct {
	messages []model.ChatMessage
}

// focusArea selects which control owns the keyboard while open.
type focusArea int

const (
	focusInput focusArea = iota
	focusActions
)

// Model is the floating chat widget component.
type Model struct {
	client *api.Client
	store  store.Store
	sess   *session.Session

	open         bool
	unread       int
	historyLimit int
	history      []model.ChatMessage

	input        textinput.Model
	viewport     viewport.Model
	focus        focusArea
	actionCursor int

	width  int
	height int
}

// New creates a closed widget backed by the given client and store.
func New(
	client *api.Client,
	s store.Store,
	historyLimit int,
	width, height int,
) Model {
	ti := textinput.New()
	ti.Placeholder = "Nhập câu hỏi của bạn..."
	ti.Prompt = "> "
	ti.CharLimit = 1000
	ti.Width = width - 10

	vpHeight := height - 12
	if vpHeight < 4 {
		vpHeight = 4
	}
	vp := viewport.New(width-8, vpHeight)

	return Model{
		client:       client,
		store:        s,
		sess:         session.New(historyLimit),
		historyLimit: historyLimit,
		input:        ti,
		viewport:     vp,
		width:        width,
		height:       height,
	}
}

// Init loads the persisted message log.
func (m Model) Init() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		messages, err := s.GetMessages(context.Background())
		if err != nil {
			return historyLoadedMsg{}
		}
		return historyLoadedMsg{messages: messages}
	}
}

// IsOpen reports whether the widget panel is visible.
func (m Model) IsOpen() bool {
	return m.open
}

// Open transitions the widget to the open state, clears the unread badge,
// and focuses the input.
func (m *Model) Open() tea.Cmd {
	m.open = true
	m.unread = 0
	m.focus = focusInput
	return m.input.Focus()
}

// Close transitions the widget to the closed state. Closing while already
// closed is a no-op.
func (m *Model) Close() {
	m.open = false
	m.input.Blur()
}

// Toggle flips the open/closed state.
func (m *Model) Toggle() tea.Cmd {
	if m.open {
		m.Close()
		return nil
	}
	return m.Open()
}

// Unread returns the badge counter.
func (m Model) Unread() int {
	return m.unread
}

// BadgeView renders the unread badge: hidden at zero, "9+" above nine.
func (m Model) BadgeView() string {
	if m.unread == 0 {
		return ""
	}
	return theme.BadgeStyle.Render(theme.BadgeLabel(m.unread))
}

// History returns the persisted log loaded at construction plus messages
// appended this run.
func (m Model) History() []model.ChatMessage {
	return append(append([]model.ChatMessage{}, m.history...), m.sess.Messages()...)
}

// Update handles messages for the widget.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.history = msg.messages
		return m, nil

	case ReplyMsg:
		return m.handleReply(msg)

	case tea.KeyMsg:
		if !m.open {
			return m, nil
		}
		return m.handleKeys(msg)
	}

	if m.open {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeys processes keyboard input while the widget is open.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Close()
		return m, func() tea.Msg { return CloseMsg{} }

	case "tab":
		if m.focus == focusInput {
			m.focus = focusActions
			m.actionCursor = 0
			m.input.Blur()
			return m, nil
		}
		m.focus = focusInput
		return m, m.input.Focus()
	}

	if m.focus == focusActions {
		return m.handleActionKeys(msg)
	}

	if msg.String() == "enter" {
		return m.submit(m.input.Value(), true)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleActionKeys navigates the quick-action row.
func (m Model) handleActionKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	actions := m.visibleActions()

	switch msg.String() {
	case "j", "down", "l", "right":
		if m.actionCursor < len(actions)-1 {
			m.actionCursor++
		}
		return m, nil

	case "k", "up", "h", "left":
		if m.actionCursor > 0 {
			m.actionCursor--
		}
		return m, nil

	case "enter":
		if m.actionCursor >= len(actions) {
			return m, nil
		}
		action := actions[m.actionCursor]
		m.focus = focusInput
		var m2 Model
		var submitCmd tea.Cmd
		m2, submitCmd = m.submit(action.Message, false)
		return m2, tea.Batch(m2.input.Focus(), submitCmd)
	}

	return m, nil
}

// visibleActions returns the welcome suggestions until the first exchange,
// then the quick-action row.
func (m Model) visibleActions() []QuickAction {
	if len(m.sess.Messages()) == 0 {
		return welcomeSuggestions
	}
	return quickActions
}

// submit runs the shared submission contract and persists the user entry.
func (m Model) submit(text string, fromInput bool) (Model, tea.Cmd) {
	seq, userMsg, ok := m.sess.Submit(text)
	if !ok {
		return m, nil
	}

	if fromInput {
		m.input.Reset()
	}
	m.refreshViewport()

	return m, tea.Batch(
		m.persist(userMsg),
		m.sendMessage(seq, userMsg.Text),
	)
}

// sendMessage returns a command that posts the message to the backend.
func (m Model) sendMessage(seq uint64, text string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.SendMessage(context.Background(), text)
		return ReplyMsg{Seq: seq, Response: resp, Err: err}
	}
}

// handleReply applies a settled outcome, persists the appended bot
// messages, and bumps the badge when the panel is closed.
func (m Model) handleReply(msg ReplyMsg) (Model, tea.Cmd) {
	out := session.Outcome{Failed: msg.Err != nil}
	if msg.Response != nil {
		out.Reply = msg.Response.Response
	}

	var cmds []tea.Cmd
	for _, applied := range m.sess.Apply(msg.Seq, out) {
		cmds = append(cmds, m.persist(applied.Message))
		if !m.open {
			m.unread++
		}
	}
	m.refreshViewport()

	return m, tea.Batch(cmds...)
}

// persist appends a message to the history store and prunes past the
// configured limit. Persistence failures are swallowed, matching the
// best-effort semantics of the message log.
func (m Model) persist(msg model.ChatMessage) tea.Cmd {
	s := m.store
	limit := m.historyLimit
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.AppendMessage(ctx, msg); err != nil {
			return nil
		}
		_ = s.PruneMessages(ctx, limit)
		return nil
	}
}

// refreshViewport re-renders the transcript and scrolls to bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation builds the visible transcript. Persisted history
// from previous runs is intentionally not replayed here.
func (m Model) renderConversation() string {
	messages := m.sess.Messages()
	if len(messages) == 0 {
		return theme.HelpStyle.Render(
			"Xin chào! Tôi là trợ lý AI tuyển sinh.\nTôi có thể giúp gì cho bạn?",
		)
	}

	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	var sections []string
	for _, msg := range messages {
		var label string
		if msg.Sender == model.SenderUser {
			label = theme.UserLabelStyle.Render("Bạn:")
		} else {
			label = theme.BotLabelStyle.Render("Trợ lý:")
		}
		ts := theme.TimestampStyle.Render(msg.Timestamp.Format("15:04"))

		sections = append(sections, label+" "+ts)
		sections = append(sections, contentStyle.Render(msg.Text))
		sections = append(sections, "")
	}

	if m.sess.Typing() {
		sections = append(sections, theme.HelpStyle.Render("..."))
	}

	return strings.Join(sections, "\n")
}

// renderActions renders the quick-action or welcome-suggestion row.
func (m Model) renderActions() string {
	actions := m.visibleActions()

	var rows []string
	for i, a := range actions {
		style := theme.ListItemStyle
		if m.focus == focusActions && i == m.actionCursor {
			style = theme.SelectedItemStyle
		}
		rows = append(rows, style.Render("• "+a.Label))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// View renders the widget panel. Closed widgets render nothing; the
// parent shows the toggle hint and badge in its own chrome.
func (m Model) View() string {
	if !m.open {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	title := titleStyle.Render("Trợ Lý AI Tuyển Sinh")
	status := theme.HelpStyle.Render("● Đang hoạt động")

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-10, 60)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		status,
		m.renderActions(),
		separator,
		m.viewport.View(),
		separator,
		m.input.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 6).
		Render(content)
}

// Typing reports whether a submission is pending.
func (m Model) Typing() bool {
	return m.sess.Typing()
}

// SetSize updates the widget dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 10

	vpHeight := height - 12
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Width = width - 8
	m.viewport.Height = vpHeight
	m.refreshViewport()
}

// SetNow overrides the session clock for tests.
func (m *Model) SetNow(now func() time.Time) {
	m.sess.SetNow(now)
}
