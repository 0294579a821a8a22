package programs

import (
	"encoding/json"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/keys"
)

func newTestBrowser() Model {
	client := api.NewClient("http://127.0.0.1:1", "test-token", time.Second)
	return New(client, keys.DefaultKeyMap(), 80, 24)
}

func rawPage(items ...string) []json.RawMessage {
	raw := make([]json.RawMessage, len(items))
	for i, it := range items {
		raw[i] = json.RawMessage(it)
	}
	return raw
}

func TestDecodeItemsPerTarget(t *testing.T) {
	items, err := decodeItems(TargetPrograms, rawPage(
		`{"id": 1, "name": "Công nghệ thông tin", "code": "7480201"}`,
	))
	if err != nil {
		t.Fatalf("decodeItems(programs): %v", err)
	}
	p, ok := items[0].(ProgramItem)
	if !ok || p.Program.Name != "Công nghệ thông tin" {
		t.Errorf("program item = %+v", items[0])
	}

	items, err = decodeItems(TargetNews, rawPage(
		`{"id": 2, "title": "Thông báo tuyển sinh", "excerpt": "Chi tiết..."}`,
	))
	if err != nil {
		t.Fatalf("decodeItems(news): %v", err)
	}
	n, ok := items[0].(NewsListItem)
	if !ok || n.News.Title != "Thông báo tuyển sinh" {
		t.Errorf("news item = %+v", items[0])
	}
}

func TestPagesAppendUntilExhausted(t *testing.T) {
	m := newTestBrowser()

	page1, _ := decodeItems(TargetPrograms, rawPage(
		`{"id": 1, "name": "Ngành một"}`,
		`{"id": 2, "name": "Ngành hai"}`,
	))
	m, _ = m.handlePageLoaded(PageLoadedMsg{
		Target: TargetPrograms, Page: 1, Items: page1, HasMore: true,
	})

	if len(m.list.Items()) != 2 {
		t.Fatalf("got %d items after page 1, want 2", len(m.list.Items()))
	}
	if !m.hasMore {
		t.Fatal("hasMore = false after a partial page")
	}

	page2, _ := decodeItems(TargetPrograms, rawPage(`{"id": 3, "name": "Ngành ba"}`))
	m, _ = m.handlePageLoaded(PageLoadedMsg{
		Target: TargetPrograms, Page: 2, Items: page2, HasMore: false,
	})

	if len(m.list.Items()) != 3 {
		t.Errorf("got %d items after page 2, want appended total 3", len(m.list.Items()))
	}
	if m.hasMore {
		t.Error("hasMore = true after the final page")
	}
	if m.page != 2 {
		t.Errorf("page = %d, want 2", m.page)
	}
}

func TestStalePagesForOtherTargetDropped(t *testing.T) {
	m := newTestBrowser()

	newsItems, _ := decodeItems(TargetNews, rawPage(`{"id": 1, "title": "Tin cũ"}`))
	m, _ = m.handlePageLoaded(PageLoadedMsg{
		Target: TargetNews, Page: 1, Items: newsItems, HasMore: true,
	})

	if len(m.list.Items()) != 0 {
		t.Error("page for a switched-away target was appended")
	}
}

func TestOpenFetchesOnlyWhenEmpty(t *testing.T) {
	m := newTestBrowser()

	cmd := m.Open()
	if cmd == nil {
		t.Fatal("first open did not start a fetch")
	}
	if !m.loading {
		t.Error("loading = false with the first fetch in flight")
	}

	// A second open while the fetch is still in flight must not fire
	// another request for the same page.
	if cmd := m.Open(); cmd != nil {
		t.Error("open during an in-flight fetch started another fetch")
	}

	items, _ := decodeItems(TargetPrograms, rawPage(`{"id": 1, "name": "Ngành một"}`))
	m, _ = m.handlePageLoaded(PageLoadedMsg{
		Target: TargetPrograms, Page: 1, Items: items, HasMore: true,
	})

	if cmd := m.Open(); cmd != nil {
		t.Error("reopening with items loaded started another fetch")
	}
	if m.page != 1 {
		t.Errorf("page = %d after reopen, want still 1", m.page)
	}
}

func TestDuplicatePageResponsesNotAppendedTwice(t *testing.T) {
	m := newTestBrowser()

	items, _ := decodeItems(TargetPrograms, rawPage(`{"id": 1, "name": "Ngành một"}`))
	msg := PageLoadedMsg{Target: TargetPrograms, Page: 1, Items: items, HasMore: true}

	m, _ = m.handlePageLoaded(msg)
	m, _ = m.handlePageLoaded(msg)

	if got := len(m.list.Items()); got != 1 {
		t.Errorf("list has %d items after duplicate page-1 responses, want 1", got)
	}
}

func TestLoadMoreIgnoredWhileLoading(t *testing.T) {
	m := newTestBrowser()
	_ = m.Open()

	m, cmd := m.handleKeys(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if cmd != nil {
		t.Error("m key started a fetch while one was already in flight")
	}
	if !m.loading {
		t.Error("loading flag was dropped")
	}
}

func TestSwitchTargetResetsPagination(t *testing.T) {
	m := newTestBrowser()

	items, _ := decodeItems(TargetPrograms, rawPage(`{"id": 1, "name": "Ngành một"}`))
	m, _ = m.handlePageLoaded(PageLoadedMsg{
		Target: TargetPrograms, Page: 1, Items: items, HasMore: false,
	})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.target != TargetNews {
		t.Fatalf("target = %q after tab, want news", m.target)
	}
	if m.page != 0 || !m.hasMore {
		t.Error("pagination state not reset on target switch")
	}
	if len(m.list.Items()) != 0 {
		t.Error("items not cleared on target switch")
	}
}
