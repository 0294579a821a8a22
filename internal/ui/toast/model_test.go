package toast

import (
	"strings"
	"testing"
	"time"

	"github.com/nhle/adchat/internal/model"
)

func TestPushAndExpire(t *testing.T) {
	m := New(80)

	cmd := m.Push("Đã lưu cấu hình", model.SeveritySuccess, 5*time.Millisecond)
	if cmd == nil {
		t.Fatal("Push with a duration returned no expiry command")
	}
	if !m.Active() {
		t.Fatal("Active() = false after push")
	}

	// Run the timer command to obtain the expiry message.
	msg := cmd()
	m, _ = m.Update(msg)
	if m.Active() {
		t.Error("toast still active after its timer fired")
	}
}

func TestPushPersistentToast(t *testing.T) {
	m := New(80)

	if cmd := m.Push("Lỗi kết nối", model.SeverityError, 0); cmd != nil {
		t.Error("Push with zero duration scheduled an expiry")
	}
	if !m.Active() {
		t.Fatal("persistent toast not active")
	}

	m.DismissNewest()
	if m.Active() {
		t.Error("toast still active after manual dismissal")
	}
}

func TestExpireIgnoresAlreadyDismissed(t *testing.T) {
	m := New(80)

	cmd := m.Push("tạm thời", model.SeverityInfo, time.Millisecond)
	m.DismissNewest()

	// The timer fires after the manual dismissal; it must be harmless.
	m, _ = m.Update(cmd())
	if m.Active() {
		t.Error("stale expiry re-activated the stack")
	}
}

func TestStackOrderAndView(t *testing.T) {
	m := New(90)

	m.Push("thứ nhất", model.SeverityInfo, 0)
	m.Push("thứ hai", model.SeverityWarning, 0)

	toasts := m.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("got %d toasts, want 2", len(toasts))
	}
	if toasts[0].Message != "thứ nhất" || toasts[1].Message != "thứ hai" {
		t.Errorf("stack order wrong: %q, %q", toasts[0].Message, toasts[1].Message)
	}

	view := m.View()
	if !strings.Contains(view, "thứ nhất") || !strings.Contains(view, "thứ hai") {
		t.Error("View() missing toast messages")
	}

	// Newest-first dismissal.
	m.DismissNewest()
	if got := m.Toasts(); len(got) != 1 || got[0].Message != "thứ nhất" {
		t.Errorf("DismissNewest removed the wrong toast: %+v", got)
	}
}
