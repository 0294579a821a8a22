package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the connection settings for the admissions backend.
type ServerConfig struct {
	// BaseURL is the root URL of the admissions site
	// (e.g., https://tuyensinh.example.edu.vn).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ChatConfig holds chat transcript and persistence settings.
type ChatConfig struct {
	// HistoryLimit caps the number of messages kept in memory and in the
	// local history store. Oldest entries are evicted past the limit.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
}

// NotificationsConfig holds notification polling settings.
type NotificationsConfig struct {
	// PollIntervalSec is how often (in seconds) to refresh notifications.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// ToastDurationSec is the auto-dismiss delay for toasts. Zero keeps
	// a toast on screen until dismissed manually.
	ToastDurationSec int `mapstructure:"toast_duration_sec" yaml:"toast_duration_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server        ServerConfig        `mapstructure:"server" yaml:"server"`
	Chat          ChatConfig          `mapstructure:"chat" yaml:"chat"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/adchat/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "adchat", "config.yaml")
}

// DefaultDBPath returns the default path for the local history database,
// located next to the configuration file.
func DefaultDBPath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "history.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			TimeoutSec: 30,
		},
		Chat: ChatConfig{
			HistoryLimit: 200,
		},
		Notifications: NotificationsConfig{
			PollIntervalSec: 30,
		},
		Display: DisplayConfig{
			Theme:            "default",
			ToastDurationSec: 5,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.timeout_sec", 30)
	v.SetDefault("chat.history_limit", 200)
	v.SetDefault("notifications.poll_interval_sec", 30)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.toast_duration_sec", 5)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("chat", cfg.Chat)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
