package model

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.TimeoutSec != 30 {
		t.Errorf("timeout_sec = %d, want 30", cfg.Server.TimeoutSec)
	}
	if cfg.Chat.HistoryLimit != 200 {
		t.Errorf("history_limit = %d, want 200", cfg.Chat.HistoryLimit)
	}
	if cfg.Notifications.PollIntervalSec != 30 {
		t.Errorf("poll_interval_sec = %d, want 30", cfg.Notifications.PollIntervalSec)
	}
	if cfg.Display.ToastDurationSec != 5 {
		t.Errorf("toast_duration_sec = %d, want 5", cfg.Display.ToastDurationSec)
	}
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := &AppConfig{
		Server: ServerConfig{
			BaseURL:    "https://tuyensinh.example.edu.vn",
			TimeoutSec: 10,
		},
		Chat:          ChatConfig{HistoryLimit: 50},
		Notifications: NotificationsConfig{PollIntervalSec: 60},
		Display:       DisplayConfig{Theme: "default", ToastDurationSec: 3},
	}

	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Server.BaseURL != original.Server.BaseURL {
		t.Errorf("base_url = %q, want %q", loaded.Server.BaseURL, original.Server.BaseURL)
	}
	if loaded.Server.TimeoutSec != 10 {
		t.Errorf("timeout_sec = %d, want 10", loaded.Server.TimeoutSec)
	}
	if loaded.Chat.HistoryLimit != 50 {
		t.Errorf("history_limit = %d, want 50", loaded.Chat.HistoryLimit)
	}
	if loaded.Notifications.PollIntervalSec != 60 {
		t.Errorf("poll_interval_sec = %d, want 60", loaded.Notifications.PollIntervalSec)
	}
	if loaded.Display.ToastDurationSec != 3 {
		t.Errorf("toast_duration_sec = %d, want 3", loaded.Display.ToastDurationSec)
	}
}
