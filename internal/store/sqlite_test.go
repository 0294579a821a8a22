package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/tests/testutil"
)

func TestAppendAndGetMessagesRoundTrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	want := []model.ChatMessage{
		{ID: "m1", Text: "Điểm chuẩn ngành CNTT?", Sender: model.SenderUser, Timestamp: base},
		{ID: "m2", Text: "Năm nay là 26.5 điểm.", Sender: model.SenderBot, Timestamp: base.Add(time.Second)},
	}

	for _, msg := range want {
		if err := s.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage(%s): %v", msg.ID, err)
		}
	}

	got, err := s.GetMessages(ctx)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("message %d: id = %q, want %q", i, got[i].ID, want[i].ID)
		}
		if got[i].Text != want[i].Text {
			t.Errorf("message %d: text = %q, want %q", i, got[i].Text, want[i].Text)
		}
		if got[i].Sender != want[i].Sender {
			t.Errorf("message %d: sender = %q, want %q", i, got[i].Sender, want[i].Sender)
		}
	}
}

func TestAppendMessageGeneratesID(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	msg := model.ChatMessage{Text: "xin chào", Sender: model.SenderUser, Timestamp: time.Now()}
	if err := s.AppendMessage(ctx, msg); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	got, err := s.GetMessages(ctx)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != 1 || got[0].ID == "" {
		t.Error("stored message has no generated ID")
	}
}

func TestPruneMessagesKeepsNewest(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		msg := model.ChatMessage{
			ID:        fmt.Sprintf("m%d", i),
			Text:      fmt.Sprintf("tin nhắn %d", i),
			Sender:    model.SenderUser,
			Timestamp: time.Now(),
		}
		if err := s.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	if err := s.PruneMessages(ctx, 4); err != nil {
		t.Fatalf("PruneMessages: %v", err)
	}

	got, err := s.GetMessages(ctx)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d messages after prune, want 4", len(got))
	}
	// The oldest six are gone; the newest four remain in order.
	for i, msg := range got {
		want := fmt.Sprintf("m%d", i+6)
		if msg.ID != want {
			t.Errorf("message %d: id = %q, want %q", i, msg.ID, want)
		}
	}
}

func TestPruneMessagesNonPositiveLimitIsNoop(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		msg := model.ChatMessage{
			Text:      fmt.Sprintf("tin nhắn %d", i),
			Sender:    model.SenderBot,
			Timestamp: time.Now(),
		}
		if err := s.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	if err := s.PruneMessages(ctx, 0); err != nil {
		t.Fatalf("PruneMessages: %v", err)
	}

	got, err := s.GetMessages(ctx)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d messages, want all 3 kept", len(got))
	}
}

func TestClearMessages(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	msg := model.ChatMessage{Text: "xóa tôi", Sender: model.SenderUser, Timestamp: time.Now()}
	if err := s.AppendMessage(ctx, msg); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	if err := s.ClearMessages(ctx); err != nil {
		t.Fatalf("ClearMessages: %v", err)
	}

	got, err := s.GetMessages(ctx)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d messages after clear, want 0", len(got))
	}
}

func TestRecordUpload(t *testing.T) {
	s := testutil.NewTestStore(t)

	if err := s.RecordUpload(context.Background(), "hoso.pdf"); err != nil {
		t.Fatalf("RecordUpload: %v", err)
	}
}
