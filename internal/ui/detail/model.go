package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whyisdifficult/jiratui-sub000/internal/keys"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
	"github.com/whyisdifficult/jiratui-sub000/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// ItemLoadedMsg carries the loaded work item detail.
type ItemLoadedMsg struct {
	Item *model.WorkItem
	Err  string
}

// ActionMsg signals the parent to run an action on the current item.
type ActionMsg struct {
	Action string
	Key    string
}

// Model is the work item detail view component.
type Model struct {
	item     *model.WorkItem
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemLoadedMsg:
		m.item = msg.Item
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Comment):
			if m.item != nil {
				return m, m.actionCmd("comment")
			}

		case key.Matches(msg, m.keys.Transition):
			if m.item != nil {
				return m, m.actionCmd("transition")
			}

		case key.Matches(msg, m.keys.Edit):
			if m.item != nil {
				return m, m.actionCmd("edit")
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) actionCmd(action string) tea.Cmd {
	itemKey := m.item.Key
	return func() tea.Msg {
		return ActionMsg{Action: action, Key: itemKey}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading work item...")
	}

	if m.item == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No work item selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.item == nil {
		return ""
	}

	wi := m.item
	var sections []string

	// Title
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(wi.Key+"  "+wi.Summary))

	// Badges line: type + status + priority
	typeBadge := theme.TypeStyle(wi.IssueType).Render(strings.ToUpper(wi.IssueType))
	statusBadge := theme.StatusStyle(wi.StatusCategory).Render(wi.Status)
	priBadge := theme.PriorityStyle(wi.Priority).Render(wi.Priority)

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top, typeBadge, "  ", statusBadge, "  ", priBadge,
	)
	sections = append(sections, badgeLine)
	sections = append(sections, "")

	// Metadata table
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	metaRow := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render(fmt.Sprintf("%-10s", label+":")),
			valStyle.Render(value),
		))
	}

	metaRow("Project", wi.ProjectKey)
	metaRow("Assignee", wi.Assignee)
	metaRow("Reporter", wi.Reporter)
	metaRow("Sprint", wi.Sprint)
	metaRow("Parent", wi.ParentKey)
	metaRow("Resolution", wi.Resolution)
	if len(wi.Labels) > 0 {
		metaRow("Labels", strings.Join(wi.Labels, ", "))
	}
	metaRow("Due", wi.DueDate)
	if !wi.CreatedAt.IsZero() {
		metaRow("Created", wi.CreatedAt.Format("2006-01-02 15:04"))
	}
	if !wi.UpdatedAt.IsZero() {
		metaRow("Updated", wi.UpdatedAt.Format("2006-01-02 15:04"))
	}
	metaRow("Spent", wi.TimeSpent)
	metaRow("Estimate", wi.OriginalEstimate)

	for name, value := range wi.CustomFields {
		metaRow(name, value)
	}

	// Separator
	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "")
	sections = append(sections, separator)
	sections = append(sections, "")

	// Description
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	sections = append(sections, headerStyle.Render("Description"))
	sections = append(sections, "")

	body := wi.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	// Linked work items
	if len(wi.Related) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Linked items (%d)", len(wi.Related)),
		))
		sections = append(sections, "")

		keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		for _, rel := range wi.Related {
			sections = append(sections, fmt.Sprintf(
				"%s %s %s  %s",
				metaStyle.Render(rel.Relation),
				keyStyle.Render(rel.Key),
				theme.StatusStyle("").Render(rel.Status),
				rel.Summary,
			))
		}
	}

	// Attachments
	if len(wi.Attachments) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Attachments (%d)", len(wi.Attachments)),
		))
		sections = append(sections, "")

		for _, a := range wi.Attachments {
			sections = append(sections, fmt.Sprintf(
				"%s  %s",
				valStyle.Render(a.Filename),
				metaStyle.Render(humanSize(a.Size)),
			))
		}
	}

	// Comments
	if len(wi.Comments) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Comments (%d)", len(wi.Comments)),
		))
		sections = append(sections, "")

		authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
		timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

		for _, c := range wi.Comments {
			header := fmt.Sprintf(
				"%s  %s",
				authorStyle.Render(c.Author),
				timeStyle.Render(c.CreatedAt.Format("2006-01-02 15:04")),
			)
			sections = append(sections, header)
			sections = append(sections, c.Body)
			sections = append(sections, "")
		}
	}

	// Worklog
	if len(wi.Worklog) > 0 {
		sections = append(sections, "")
		sections = append(sections, separator)
		sections = append(sections, "")
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Worklog (%d)", len(wi.Worklog)),
		))
		sections = append(sections, "")

		for _, w := range wi.Worklog {
			started := ""
			if !w.StartedAt.IsZero() {
				started = w.StartedAt.Format("2006-01-02 15:04")
			}
			sections = append(sections, fmt.Sprintf(
				"%s  %s  %s",
				valStyle.Render(w.Author),
				metaStyle.Render(w.TimeSpent),
				metaStyle.Render(started),
			))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetItem updates the item being displayed and re-renders the content.
func (m *Model) SetItem(item *model.WorkItem) {
	m.item = item
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Item returns the currently displayed work item, or nil.
func (m Model) Item() *model.WorkItem {
	return m.item
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// humanSize formats a byte count for display.
func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
