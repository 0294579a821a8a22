package chat

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/adchat/internal/api"
	"github.com/nhle/adchat/internal/keys"
	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/session"
	"github.com/nhle/adchat/tests/testutil"
)

func newTestChat(t *testing.T) Model {
	t.Helper()
	client := api.NewClient("http://127.0.0.1:1", "test-token", time.Second)
	return New(client, testutil.NewTestStore(t), keys.DefaultKeyMap(), 200, 80, 24)
}

func TestSubmitAppendsOptimisticEntry(t *testing.T) {
	m := newTestChat(t)

	m, cmd := m.Submit("Điểm chuẩn ngành CNTT?")
	if cmd == nil {
		t.Fatal("Submit returned no send command")
	}
	if len(m.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(m.entries))
	}
	if m.entries[0].msg.Sender != model.SenderUser {
		t.Errorf("entry sender = %q, want user", m.entries[0].msg.Sender)
	}
	if !m.Typing() {
		t.Error("Typing() = false with a pending submission")
	}
}

func TestEntriesEvictedAtHistoryLimit(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:1", "test-token", time.Second)
	m := New(client, testutil.NewTestStore(t), keys.DefaultKeyMap(), 4, 80, 24)

	for i, q := range []string{"một", "hai", "ba"} {
		m, _ = m.Submit(q)
		m, _ = m.handleReply(ReplyMsg{
			Seq:      uint64(i + 1),
			Response: &api.ChatResponse{Response: "trả lời " + q},
		})
	}

	if len(m.entries) != 4 {
		t.Fatalf("got %d entries, want capped at 4", len(m.entries))
	}
	if m.entries[0].msg.Text != "hai" {
		t.Errorf("oldest entry = %q, want %q after eviction", m.entries[0].msg.Text, "hai")
	}
}

func TestSubmitDropsBlankInput(t *testing.T) {
	m := newTestChat(t)

	m, cmd := m.Submit("   ")
	if cmd != nil || len(m.entries) != 0 {
		t.Error("blank submission was not dropped")
	}
}

func TestReplyAppendsBotEntryWithSources(t *testing.T) {
	m := newTestChat(t)
	m, _ = m.Submit("câu hỏi")

	score := 0.9
	m, _ = m.handleReply(ReplyMsg{
		Seq: 1,
		Response: &api.ChatResponse{
			Response: "trả lời",
			Sources: []model.SourceCitation{
				{Meta: model.CitationMeta{Type: "Điểm chuẩn"}, Score: &score, Snippet: "..."},
				{Snippet: "đoạn trích hai"},
			},
		},
	})

	if len(m.entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(m.entries))
	}
	bot := m.entries[1]
	if bot.msg.Text != "trả lời" {
		t.Errorf("bot text = %q", bot.msg.Text)
	}
	if len(bot.sources) != 2 || len(bot.expanded) != 2 {
		t.Errorf("sources = %d, expanded = %d, want 2 each", len(bot.sources), len(bot.expanded))
	}
	if m.Typing() {
		t.Error("Typing() = true after reply applied")
	}
}

func TestReplyErrorShowsApology(t *testing.T) {
	m := newTestChat(t)
	m, _ = m.Submit("câu hỏi")

	m, _ = m.handleReply(ReplyMsg{Seq: 1, Err: errors.New("connection refused")})

	bot := m.entries[1]
	if bot.msg.Text != session.ApologyText {
		t.Errorf("bot text = %q, want apology", bot.msg.Text)
	}
	if bot.sources != nil {
		t.Error("failed reply kept sources")
	}
}

func TestOutOfOrderRepliesRenderInSubmissionOrder(t *testing.T) {
	m := newTestChat(t)
	m, _ = m.Submit("một")
	m, _ = m.Submit("hai")

	m, _ = m.handleReply(ReplyMsg{Seq: 2, Response: &api.ChatResponse{Response: "trả lời hai"}})
	if len(m.entries) != 2 {
		t.Fatalf("out-of-order reply rendered early: %d entries", len(m.entries))
	}

	m, _ = m.handleReply(ReplyMsg{Seq: 1, Response: &api.ChatResponse{Response: "trả lời một"}})
	if len(m.entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(m.entries))
	}
	if m.entries[2].msg.Text != "trả lời một" || m.entries[3].msg.Text != "trả lời hai" {
		t.Errorf("replies out of order: %q, %q", m.entries[2].msg.Text, m.entries[3].msg.Text)
	}
}

func TestUploadTransportFailure(t *testing.T) {
	m := newTestChat(t)

	m, _ = m.handleUploadResult(UploadResultMsg{
		Filename: "hoso.pdf",
		Err:      errors.New("timeout"),
	})

	if len(m.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(m.entries))
	}
	if m.entries[0].msg.Text != uploadFailedText {
		t.Errorf("text = %q, want generic upload failure", m.entries[0].msg.Text)
	}
}

func TestUploadRejectionCarriesServerError(t *testing.T) {
	m := newTestChat(t)

	m, _ = m.handleUploadResult(UploadResultMsg{
		Filename: "lon.bin",
		Response: &api.UploadResponse{Success: false, Error: "Tệp vượt quá 10MB"},
	})

	want := uploadRejectedPrefix + "Tệp vượt quá 10MB"
	if m.entries[0].msg.Text != want {
		t.Errorf("text = %q, want %q", m.entries[0].msg.Text, want)
	}
}

func TestUploadSuccessConfirmsAndSubmitsFollowUp(t *testing.T) {
	m := newTestChat(t)

	m, cmd := m.handleUploadResult(UploadResultMsg{
		Filename: "hoso.pdf",
		Response: &api.UploadResponse{Success: true},
	})
	if cmd == nil {
		t.Fatal("successful upload returned no follow-up commands")
	}

	if len(m.entries) != 2 {
		t.Fatalf("got %d entries, want confirmation plus follow-up", len(m.entries))
	}
	if m.entries[0].msg.Text != "Đã tải lên tệp: hoso.pdf" {
		t.Errorf("confirmation = %q", m.entries[0].msg.Text)
	}
	if m.entries[0].msg.Sender != model.SenderUser {
		t.Errorf("confirmation sender = %q, want user", m.entries[0].msg.Sender)
	}
	if m.entries[1].msg.Text != followUpText {
		t.Errorf("follow-up = %q, want canned prompt", m.entries[1].msg.Text)
	}
	if !m.Typing() {
		t.Error("follow-up submission not pending")
	}
}

func TestSourcesModeToggleAndNavigation(t *testing.T) {
	m := newTestChat(t)
	m, _ = m.Submit("câu hỏi")
	m, _ = m.handleReply(ReplyMsg{
		Seq: 1,
		Response: &api.ChatResponse{
			Response: "trả lời",
			Sources: []model.SourceCitation{
				{Snippet: "một"},
				{Snippet: "hai"},
			},
		},
	})

	// Enter sources mode on the reply.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.mode != modeSources || m.srcEntry != 1 {
		t.Fatalf("mode = %d, srcEntry = %d", m.mode, m.srcEntry)
	}

	// Navigate and toggle expansion.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.srcCursor != 1 {
		t.Errorf("srcCursor = %d, want 1", m.srcCursor)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.entries[1].expanded[1] {
		t.Error("enter did not expand the focused citation")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.entries[1].expanded[1] {
		t.Error("enter did not collapse the citation again")
	}

	// Escape returns to compose mode.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCompose {
		t.Errorf("mode after escape = %d, want compose", m.mode)
	}
}

func TestSourcesModeUnavailableWithoutCitations(t *testing.T) {
	m := newTestChat(t)
	m, _ = m.Submit("câu hỏi")
	m, _ = m.handleReply(ReplyMsg{Seq: 1, Response: &api.ChatResponse{Response: "trả lời"}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.mode != modeCompose {
		t.Error("entered sources mode with no citations available")
	}
}

func TestResetClearsConversation(t *testing.T) {
	m := newTestChat(t)
	m, _ = m.Submit("câu hỏi")

	m.Reset()
	if len(m.entries) != 0 || m.Typing() {
		t.Error("Reset left transcript or pending state behind")
	}
}
