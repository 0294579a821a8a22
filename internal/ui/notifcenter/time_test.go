package notifcenter

import (
	"testing"
	"time"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "Vừa xong"},
		{"under a minute boundary", now.Add(-59 * time.Second), "Vừa xong"},
		{"minutes ago", now.Add(-10 * time.Minute), "10 phút trước"},
		{"one minute", now.Add(-time.Minute), "1 phút trước"},
		{"hours ago", now.Add(-2 * time.Hour), "2 giờ trước"},
		{"days ago", now.Add(-3 * 24 * time.Hour), "3 ngày trước"},
		{"past a week", now.Add(-10 * 24 * time.Hour), "05/06/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(tt.t, now); got != tt.want {
				t.Errorf("FormatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}
