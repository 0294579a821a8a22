package theme

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps bordered panel content (chat, notifications, widget).
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// UserLabelStyle and BotLabelStyle mark the two sides of a transcript.
var (
	UserLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	BotLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
)

// TimestampStyle renders message and notification times.
var TimestampStyle = lipgloss.NewStyle().Foreground(ColorGray)

// BadgeStyle renders unread counters on the widget toggle and the
// notification bell.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorRed).
	Padding(0, 1)

// BadgeLabel renders an unread count for a badge: exact up to 9, then
// "9+". Zero means the badge is hidden and callers should not render it.
func BadgeLabel(count int) string {
	if count > 9 {
		return "9+"
	}
	return strconv.Itoa(count)
}

// SeverityIcon returns the fixed glyph for a notification or toast severity.
func SeverityIcon(sev model.Severity) string {
	switch sev {
	case model.SeveritySuccess:
		return "✓"
	case model.SeverityError:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

// SeverityStyle returns the fixed color style paired with a severity.
func SeverityStyle(sev model.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch sev {
	case model.SeveritySuccess:
		return base.Foreground(ColorGreen)
	case model.SeverityError:
		return base.Foreground(ColorRed)
	case model.SeverityWarning:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorBlue)
	}
}

// ToastStyle wraps a single toast with a severity-colored left border.
func ToastStyle(sev model.Severity) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(SeverityStyle(sev).GetForeground())
}
