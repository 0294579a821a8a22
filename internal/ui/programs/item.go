package programs

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/adchat/internal/model"
	"github.com/nhle/adchat/internal/theme"
)

// ProgramItem wraps a model.Program so it can be used in a bubbles/list.
type ProgramItem struct {
	Program model.Program
}

// FilterValue returns the string used for fuzzy filtering.
func (i ProgramItem) FilterValue() string { return i.Program.Name }

// NewsListItem wraps a model.NewsItem so it can be used in a bubbles/list.
type NewsListItem struct {
	News model.NewsItem
}

// FilterValue returns the string used for fuzzy filtering.
func (i NewsListItem) FilterValue() string { return i.News.Title }

// ItemDelegate implements list.ItemDelegate for program and news entries.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single entry: a title line and a detail line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	var title, detail string

	switch it := item.(type) {
	case ProgramItem:
		p := it.Program
		title = p.Name
		if p.Code != "" {
			title += " " + theme.TimestampStyle.Render("("+p.Code+")")
		}
		detail = programDetail(p)

	case NewsListItem:
		n := it.News
		title = n.Title
		detail = n.Excerpt
		if n.Date != "" {
			detail = theme.TimestampStyle.Render(n.Date) + "  " + detail
		}

	default:
		return
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	detailStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	entry := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		detailStyle.Render(detail),
	)

	if index == m.Index() {
		entry = theme.SelectedItemStyle.Render(entry)
	} else {
		entry = theme.ListItemStyle.Render(entry)
	}

	fmt.Fprint(w, entry)
}

// programDetail builds the secondary line for a program entry.
func programDetail(p model.Program) string {
	detail := p.Description
	if p.Duration != "" {
		detail += "  •  " + p.Duration
	}
	if p.TuitionFee > 0 {
		detail += "  •  Học phí: " + formatVND(p.TuitionFee) + " VNĐ/năm"
	}
	return detail
}

// formatVND groups the amount in threes with dots, the way the site
// formats currency.
func formatVND(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
