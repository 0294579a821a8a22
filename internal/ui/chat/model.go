// Package chat implements the main conversation view: transcript,
// typing indicator, source citations, and file upload.
package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/keys"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/session"
	"github.com/nhle/adchat/internal/store"
	"github.com/nhle/adchat/internal/theme"
)

// followUpText is submitted automatically after a successful upload so
// the assistant processes the file.
const followUpText = "Vui lòng xem xét tệp tôi vừa gửi"

// Fixed upload error strings.
const (
	uploadRejectedPrefix = "Không thể tải lên tệp. "
	uploadFailedText     = "Có lỗi xảy ra khi tải lên tệp."
)

// ReplyMsg carries the settled outcome of one chat submission.
type ReplyMsg struct {
	Seq      uint64
	Response *api.ChatResponse
	Err      error
}

// UploadResultMsg carries the result of a file upload.
type UploadResultMsg struct {
	Filename string
	Response *api.UploadResponse
	Err      error
}

// mode selects which input surface owns the keyboard.
type mode int

const (
	modeCompose mode = iota
	modeAttach
	modeSources
)

// entry is one rendered transcript row: a message plus, for bot replies,
// its citations and their expand state.
type entry struct {
	msg      model.ChatMessage
	sources  []model.SourceCitation
	expanded []bool
}

// Model is the main chat view component.
type Model struct {
	client *api.Client
	store  store.Store
	sess   *session.Session
	keys   *keys.KeyMap

	input    textarea.Model
	attach   textinput.Model
	viewport viewport.Model
	entries  []entry
	limit    int

	mode      mode
	srcEntry  int // index into entries of the reply whose sources are focused
	srcCursor int

	width  int
	height int
}

// New creates the main chat view. historyLimit caps the in-memory
// transcript.
func New(
	client *api.Client,
	s store.Store,
	k *keys.KeyMap,
	historyLimit int,
	width, height int,
) Model {
	ta := textarea.New()
	ta.Placeholder = "Nhập câu hỏi của bạn..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	ai := textinput.New()
	ai.Placeholder = "đường dẫn tệp cần gửi..."
	ai.Prompt = "tệp: "
	ai.Width = width - 8

	vpHeight := height - 8
	if vpHeight < 4 {
		vpHeight = 4
	}
	vp := viewport.New(width-4, vpHeight)

	return Model{
		client:   client,
		store:    s,
		sess:     session.New(historyLimit),
		keys:     k,
		input:    ta,
		attach:   ai,
		viewport: vp,
		limit:    historyLimit,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the chat view.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReplyMsg:
		return m.handleReply(msg)

	case UploadResultMsg:
		return m.handleUploadResult(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeAttach:
			return m.handleAttachKeys(msg)
		case modeSources:
			return m.handleSourcesKeys(msg)
		default:
			return m.handleComposeKeys(msg)
		}
	}

	var cmds []tea.Cmd

	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	if taCmd != nil {
		cmds = append(cmds, taCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	if vpCmd != nil {
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// handleComposeKeys processes keyboard input while composing a message.
func (m Model) handleComposeKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit(m.input.Value(), true)

	case "ctrl+u":
		m.mode = modeAttach
		m.attach.Reset()
		m.input.Blur()
		return m, m.attach.Focus()

	case "ctrl+e":
		if idx, ok := m.lastEntryWithSources(); ok {
			m.mode = modeSources
			m.srcEntry = idx
			m.srcCursor = 0
			m.input.Blur()
			m.refreshViewport()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleAttachKeys processes keyboard input while entering a file path.
func (m Model) handleAttachKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeCompose
		m.attach.Blur()
		return m, m.input.Focus()

	case "enter":
		path := strings.TrimSpace(m.attach.Value())
		if path == "" {
			return m, nil
		}
		m.mode = modeCompose
		m.attach.Blur()
		return m, tea.Batch(m.input.Focus(), m.uploadFile(path))
	}

	var cmd tea.Cmd
	m.attach, cmd = m.attach.Update(msg)
	return m, cmd
}

// handleSourcesKeys processes keyboard input while navigating citations.
func (m Model) handleSourcesKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	e := &m.entries[m.srcEntry]

	switch msg.String() {
	case "esc", "ctrl+e":
		m.mode = modeCompose
		m.refreshViewport()
		return m, m.input.Focus()

	case "j", "down":
		if m.srcCursor < len(e.sources)-1 {
			m.srcCursor++
			m.refreshViewport()
		}
		return m, nil

	case "k", "up":
		if m.srcCursor > 0 {
			m.srcCursor--
			m.refreshViewport()
		}
		return m, nil

	case "enter":
		e.expanded[m.srcCursor] = !e.expanded[m.srcCursor]
		m.refreshViewport()
		return m, nil
	}

	return m, nil
}

// Submit sends prepared text (e.g. a quick action) through the normal
// submission path without touching the compose input.
func (m Model) Submit(text string) (Model, tea.Cmd) {
	return m.submit(text, false)
}

// submit runs the shared submission contract: optimistic user entry,
// pending indicator, one POST. Whitespace-only text is dropped silently.
func (m Model) submit(text string, fromInput bool) (Model, tea.Cmd) {
	seq, userMsg, ok := m.sess.Submit(text)
	if !ok {
		return m, nil
	}

	if fromInput {
		m.input.Reset()
	}
	m.entries = append(m.entries, entry{msg: userMsg})
	m.trimEntries()
	m.refreshViewport()

	return m, m.sendMessage(seq, userMsg.Text)
}

// sendMessage returns a command that posts the message to the backend.
func (m Model) sendMessage(seq uint64, text string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.SendMessage(context.Background(), text)
		return ReplyMsg{Seq: seq, Response: resp, Err: err}
	}
}

// handleReply applies a settled outcome in submission order. Outcomes for
// later submissions are buffered by the session until earlier ones land.
func (m Model) handleReply(msg ReplyMsg) (Model, tea.Cmd) {
	out := session.Outcome{Failed: msg.Err != nil}
	if msg.Response != nil {
		out.Reply = msg.Response.Response
		out.Sources = msg.Response.Sources
	}

	for _, applied := range m.sess.Apply(msg.Seq, out) {
		m.entries = append(m.entries, entry{
			msg:      applied.Message,
			sources:  applied.Sources,
			expanded: make([]bool, len(applied.Sources)),
		})
	}
	m.trimEntries()
	m.refreshViewport()

	return m, nil
}

// uploadFile returns a command that uploads the file at path.
func (m Model) uploadFile(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.UploadFile(context.Background(), path)
		return UploadResultMsg{
			Filename: filepath.Base(path),
			Response: resp,
			Err:      err,
		}
	}
}

// handleUploadResult appends the upload outcome to the transcript and,
// on success, submits the canned follow-up through the normal path.
func (m Model) handleUploadResult(msg UploadResultMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.appendLocal(uploadFailedText, model.SenderBot)
		return m, nil
	}

	if !msg.Response.Success {
		m.appendLocal(uploadRejectedPrefix+msg.Response.Error, model.SenderBot)
		return m, nil
	}

	m.appendLocal("Đã tải lên tệp: "+msg.Filename, model.SenderUser)

	s := m.store
	filename := msg.Filename
	recordCmd := func() tea.Msg {
		_ = s.RecordUpload(context.Background(), filename)
		return nil
	}

	var submitCmd tea.Cmd
	m, submitCmd = m.submit(followUpText, false)
	return m, tea.Batch(recordCmd, submitCmd)
}

// appendLocal adds a message to the visible transcript without going
// through the submission pipeline (upload confirmations and errors).
func (m *Model) appendLocal(text string, sender model.Sender) {
	m.entries = append(m.entries, entry{msg: model.ChatMessage{
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}})
	m.trimEntries()
	m.refreshViewport()
}

// trimEntries evicts the oldest rendered entries past the history limit,
// mirroring the session transcript cap. The citation focus index shifts
// with the eviction; focus is abandoned when the focused reply is gone.
func (m *Model) trimEntries() {
	if m.limit <= 0 || len(m.entries) <= m.limit {
		return
	}

	overflow := len(m.entries) - m.limit
	m.entries = append(m.entries[:0:0], m.entries[overflow:]...)

	if m.mode == modeSources {
		m.srcEntry -= overflow
		if m.srcEntry < 0 {
			m.mode = modeCompose
			m.srcCursor = 0
		}
	}
}

// lastEntryWithSources finds the most recent bot reply carrying citations.
func (m Model) lastEntryWithSources() (int, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if len(m.entries[i].sources) > 0 {
			return i, true
		}
	}
	return 0, false
}

// refreshViewport re-renders the conversation and scrolls to bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation builds the transcript display string.
func (m Model) renderConversation() string {
	if len(m.entries) == 0 {
		return theme.HelpStyle.Render(
			"Tôi là trợ lý AI tuyển sinh. Tôi có thể giúp gì cho bạn?",
		)
	}

	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	var sections []string
	for i, e := range m.entries {
		var label string
		if e.msg.Sender == model.SenderUser {
			label = theme.UserLabelStyle.Render("Bạn:")
		} else {
			label = theme.BotLabelStyle.Render("Trợ lý:")
		}
		ts := theme.TimestampStyle.Render(e.msg.Timestamp.Format("15:04"))

		sections = append(sections, label+" "+ts)
		sections = append(sections, contentStyle.Render(e.msg.Text))

		if len(e.sources) > 0 {
			sections = append(sections, m.renderSources(i, e))
		}
		sections = append(sections, "")
	}

	if m.sess.Typing() {
		sections = append(sections, theme.HelpStyle.Render("..."))
	}

	return strings.Join(sections, "\n")
}

// renderSources renders a reply's citation block.
func (m Model) renderSources(entryIdx int, e entry) string {
	header := theme.HelpStyle.Render("Nguồn tham khảo:")

	focused := m.mode == modeSources && m.srcEntry == entryIdx

	var rows []string
	rows = append(rows, header)
	for i, src := range e.sources {
		label := fmt.Sprintf("[%d] %s (score %s)",
			i+1, src.DisplayLabel(), src.ScoreLabel())

		snippet := src.CollapsedSnippet()
		if e.expanded[i] {
			snippet = src.Snippet
		}

		block := lipgloss.JoinVertical(
			lipgloss.Left,
			lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(label),
			lipgloss.NewStyle().
				Foreground(theme.ColorGray).
				Width(m.width-10).
				Render(snippet),
		)

		if focused && i == m.srcCursor {
			block = theme.SelectedItemStyle.Render(block)
		} else {
			block = theme.ListItemStyle.Render(block)
		}
		rows = append(rows, block)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// View renders the chat view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Trợ Lý AI Tuyển Sinh")

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-6, 80)))

	inputView := m.input.View()
	if m.mode == modeAttach {
		inputView = m.attach.View()
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.viewport.View(),
		separator,
		inputView,
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// Typing reports whether a submission is pending.
func (m Model) Typing() bool {
	return m.sess.Typing()
}

// SetSize updates the chat view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.attach.Width = width - 8

	vpHeight := height - 8
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Width = width - 4
	m.viewport.Height = vpHeight
	m.refreshViewport()
}

// Focus gives keyboard focus to the compose input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the conversation.
func (m *Model) Reset() {
	m.entries = nil
	m.mode = modeCompose
	m.input.Reset()
	m.sess.Reset()
	m.refreshViewport()
}
