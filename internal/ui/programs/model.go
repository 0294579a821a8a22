// Package programs implements the paginated browser for admission
// programs and news. Pages are appended as they arrive; the load-more
// action disappears once the backend reports the final page.
package programs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/keys"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/theme"
)

// Target identifies which paginated collection is being browsed.
type Target string

const (
	TargetPrograms Target = "programs"
	TargetNews     Target = "news"
)

// PageLoadedMsg is sent when one page of items has been fetched.
type PageLoadedMsg struct {
	Target  Target
	Page    int
	Items   []list.Item
	HasMore bool
	Err     error
}

// CloseMsg signals the parent to close the browser.
type CloseMsg struct{}

// fetchTimeout bounds a single page fetch.
const fetchTimeout = 15 * time.Second

// Model is the paginated program/news browser component.
type Model struct {
	client *api.Client
	keys   *keys.KeyMap

	list    list.Model
	target  Target
	page    int
	hasMore bool
	loading bool
	loadErr error

	width  int
	height int
}

// New creates a browser opened on the programs collection.
func New(client *api.Client, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-3)
	l.Title = "Ngành đào tạo"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		client:  client,
		keys:    k,
		list:    l,
		target:  TargetPrograms,
		hasMore: true,
		width:   width,
		height:  height,
	}
}

// Init is a no-op; the first fetch happens when the browser is opened.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open starts the first page fetch. Reopening a browser that already has
// items, or one with a fetch in flight, does nothing so pagination never
// advances on its own.
func (m *Model) Open() tea.Cmd {
	if m.loading || len(m.list.Items()) > 0 {
		return nil
	}
	m.loading = true
	m.loadErr = nil
	return m.loadNextPage()
}

// Update handles messages for the browser.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		return m.handlePageLoaded(msg)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes keyboard input.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	}

	switch msg.String() {
	case "tab":
		return m.switchTarget()

	case "m":
		if m.hasMore && !m.loading {
			return m.startLoad()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// switchTarget flips between programs and news, resetting pagination.
func (m Model) switchTarget() (Model, tea.Cmd) {
	if m.target == TargetPrograms {
		m.target = TargetNews
		m.list.Title = "Tin tức tuyển sinh"
	} else {
		m.target = TargetPrograms
		m.list.Title = "Ngành đào tạo"
	}

	m.page = 0
	m.hasMore = true
	m.loadErr = nil
	cmd := m.list.SetItems(nil)

	m2, loadCmd := m.startLoad()
	return m2, tea.Batch(cmd, loadCmd)
}

// startLoad marks the browser loading and fetches the next page.
func (m Model) startLoad() (Model, tea.Cmd) {
	m.loading = true
	m.loadErr = nil
	return m, m.loadNextPage()
}

// loadNextPage fetches the page after the last one appended.
func (m Model) loadNextPage() tea.Cmd {
	client := m.client
	target := m.target
	page := m.page + 1

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		resp, err := client.LoadMore(ctx, string(target), page)
		if err != nil {
			return PageLoadedMsg{Target: target, Page: page, Err: err}
		}

		items, err := decodeItems(target, resp.Items)
		if err != nil {
			return PageLoadedMsg{Target: target, Page: page, Err: err}
		}

		return PageLoadedMsg{
			Target:  target,
			Page:    page,
			Items:   items,
			HasMore: resp.HasMore,
		}
	}
}

// decodeItems decodes a raw page into list items for the given target.
func decodeItems(target Target, raw []json.RawMessage) ([]list.Item, error) {
	items := make([]list.Item, 0, len(raw))

	for _, r := range raw {
		switch target {
		case TargetNews:
			var n model.NewsItem
			if err := json.Unmarshal(r, &n); err != nil {
				return nil, err
			}
			items = append(items, NewsListItem{News: n})

		default:
			var p model.Program
			if err := json.Unmarshal(r, &p); err != nil {
				return nil, err
			}
			items = append(items, ProgramItem{Program: p})
		}
	}

	return items, nil
}

// handlePageLoaded appends a fetched page. Pages for a target the user
// has already switched away from are dropped, as are duplicate or
// out-of-sequence pages.
func (m Model) handlePageLoaded(msg PageLoadedMsg) (Model, tea.Cmd) {
	if msg.Target != m.target || msg.Page != m.page+1 {
		return m, nil
	}

	m.loading = false
	if msg.Err != nil {
		m.loadErr = msg.Err
		return m, nil
	}

	m.page = msg.Page
	m.hasMore = msg.HasMore
	cmd := m.list.SetItems(append(m.list.Items(), msg.Items...))
	return m, cmd
}

// View renders the browser with a footer showing pagination state.
func (m Model) View() string {
	var footer string
	switch {
	case m.loading:
		footer = theme.HelpStyle.Render("Đang tải...")
	case m.loadErr != nil:
		footer = theme.SeverityStyle(model.SeverityError).
			Render("Không thể tải dữ liệu. Nhấn m để thử lại.")
	case m.hasMore:
		footer = theme.HelpStyle.Render("m: xem thêm  •  tab: chuyển mục  •  esc: quay lại")
	default:
		footer = theme.HelpStyle.Render("Đã hiển thị tất cả  •  tab: chuyển mục  •  esc: quay lại")
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), footer)
}

// SetSize updates the browser dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
}
