package resultlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whyisdifficult/jiratui-sub000/internal/model"
	"github.com/whyisdifficult/jiratui-sub000/internal/theme"
)

// WorkItemEntry wraps a model.WorkItem so it can be used in a
// bubbles/list.
type WorkItemEntry struct {
	Item model.WorkItem
}

// FilterValue returns the string used for fuzzy filtering.
func (e WorkItemEntry) FilterValue() string {
	return e.Item.Key + " " + e.Item.Summary
}

// ItemDelegate implements list.ItemDelegate for rendering result rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single result row: key, type, status, priority,
// summary, assignee and age.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(WorkItemEntry)
	if !ok {
		return
	}
	wi := entry.Item

	keyBadge := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		Render(wi.Key)

	typeBadge := theme.TypeStyle(wi.IssueType).Render(shortLabel(wi.IssueType))
	statusBadge := theme.StatusStyle(wi.StatusCategory).Render(wi.Status)
	priBadge := theme.PriorityStyle(wi.Priority).Render(shortLabel(wi.Priority))

	assignee := wi.Assignee
	if assignee == "" {
		assignee = "unassigned"
	}
	assigneeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(assignee)

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(wi.UpdatedAt))

	line := fmt.Sprintf(
		"%s %s %s %s %s  %s %s",
		keyBadge, typeBadge, statusBadge, priBadge,
		wi.Summary, assigneeStr, timeStr,
	)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// shortLabel abbreviates a name to a three-letter badge.
func shortLabel(name string) string {
	if name == "" {
		return "---"
	}
	upper := strings.ToUpper(name)
	if len(upper) > 3 {
		return upper[:3]
	}
	return upper
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
