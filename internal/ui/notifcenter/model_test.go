package notifcenter

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/keys"
	"github.com/nhle/adchat/internal/model"
)

func newTestCenter() Model {
	client := api.NewClient("http://127.0.0.1:1", "test-token", time.Second)
	m := New(client, keys.DefaultKeyMap(), 80, 24)
	m.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return m
}

func snapshot() []model.Notification {
	created := time.Date(2025, 6, 15, 11, 50, 0, 0, time.UTC)
	return []model.Notification{
		{ID: 1, Title: "Lịch thi", Message: "Cập nhật lịch thi", Type: model.SeverityInfo, CreatedAt: created},
		{ID: 2, Title: "Hồ sơ", Message: "Hồ sơ đã duyệt", Type: model.SeveritySuccess, IsRead: true, CreatedAt: created},
	}
}

func TestSetSnapshotReplacesWholesale(t *testing.T) {
	m := newTestCenter()

	m.SetSnapshot(1, snapshot())
	if m.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", m.UnreadCount())
	}
	if len(m.notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(m.notifications))
	}

	// A smaller snapshot replaces everything and clamps the cursor.
	m.cursor = 1
	m.SetSnapshot(0, snapshot()[:1])
	if len(m.notifications) != 1 {
		t.Errorf("got %d notifications after replace, want 1", len(m.notifications))
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after shrink, want 0", m.cursor)
	}
}

func TestCursorNavigationStaysInBounds(t *testing.T) {
	m := newTestCenter()
	m.SetSnapshot(1, snapshot())

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}

	m, _ = m.Update(down)
	m, _ = m.Update(down)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want clamped at 1", m.cursor)
	}

	m, _ = m.Update(up)
	m, _ = m.Update(up)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped at 0", m.cursor)
	}
}

func TestEscapeEmitsClose(t *testing.T) {
	m := newTestCenter()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("escape returned no command")
	}
	if _, ok := cmd().(CloseMsg); !ok {
		t.Error("escape did not emit CloseMsg")
	}
}

func TestViewShowsEmptyStateAndBadge(t *testing.T) {
	m := newTestCenter()

	if view := m.View(); !strings.Contains(view, "Không có thông báo mới") {
		t.Error("empty view missing placeholder text")
	}

	m.SetSnapshot(12, snapshot())
	view := m.View()
	if !strings.Contains(view, "9+") {
		t.Error("view missing capped unread badge")
	}
	if !strings.Contains(view, "Lịch thi") {
		t.Error("view missing notification title")
	}
	if !strings.Contains(view, "10 phút trước") {
		t.Error("view missing relative timestamp")
	}
}
