package filterpicker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/whyisdifficult/jiratui-sub000/internal/config"
	"github.com/whyisdifficult/jiratui-sub000/internal/keys"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
	"github.com/whyisdifficult/jiratui-sub000/internal/store"
	"github.com/whyisdifficult/jiratui-sub000/internal/theme"
)

// CloseMsg signals the parent to close the filter picker.
type CloseMsg struct{}

// FilterChosenMsg carries the JQL expression the user picked.
type FilterChosenMsg struct {
	Label      string
	Expression string
}

type pickerMode int

const (
	modeList pickerMode = iota
	modeForm
	modeConfirmDelete
)

// entrySource distinguishes where a picker entry came from: saved
// filters can be deleted, the others cannot.
type entrySource int

const (
	sourceConfig entrySource = iota
	sourceSaved
	sourceHistory
)

type entry struct {
	source     entrySource
	id         string
	label      string
	expression string
}

type formBindings struct {
	label      string
	expression string
	confirm    bool
}

type entriesLoadedMsg struct {
	entries []entry
}

type filterSavedMsg struct{ err error }
type filterDeletedMsg struct{ err error }

// Model is the Bubble Tea model for picking and managing JQL filters.
// It merges three sources: expressions from the config file, filters
// saved in the local database and recent ad-hoc searches.
type Model struct {
	mode        pickerMode
	store       store.Store
	cfg         *config.Config
	keys        *keys.KeyMap
	entries     []entry
	selectedIdx int
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new filter picker model.
func New(s store.Store, cfg *config.Config, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		store: s,
		cfg:   cfg,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads the picker entries.
func (m Model) Init() tea.Cmd {
	return m.loadEntries()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.entries = msg.entries
		if m.selectedIdx >= len(m.entries) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.entries) - 1
		}
		return m, nil

	case filterSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Filter saved"
		}
		m.mode = modeList
		return m, m.loadEntries()

	case filterDeletedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = "Filter deleted"
		}
		m.mode = modeList
		return m, m.loadEntries()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.entries) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.entries)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.entries) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.entries) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.selectedIdx >= len(m.entries) {
			return m, nil
		}
		e := m.entries[m.selectedIdx]
		return m, func() tea.Msg {
			return FilterChosenMsg{Label: e.label, Expression: e.expression}
		}

	case msg.String() == "n":
		m.fb.label = ""
		m.fb.expression = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "s":
		// Promote a history entry to a saved filter.
		if m.selectedIdx >= len(m.entries) {
			return m, nil
		}
		e := m.entries[m.selectedIdx]
		if e.source != sourceHistory {
			return m, nil
		}
		m.fb.label = ""
		m.fb.expression = e.expression
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case msg.String() == "d":
		if m.selectedIdx >= len(m.entries) {
			return m, nil
		}
		if m.entries[m.selectedIdx].source != sourceSaved {
			m.statusMsg = "Only saved filters can be deleted"
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Label").
				Placeholder("My open bugs").
				Value(&m.fb.label).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("label is required")
					}
					return nil
				}),
			huh.NewText().
				Title("JQL").
				Placeholder("project = ABC and status != Done").
				Value(&m.fb.expression).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("expression is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	label := ""
	if m.selectedIdx < len(m.entries) {
		label = m.entries[m.selectedIdx].label
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete filter %q?", label)).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.saveFilter()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm {
			e := m.entries[m.selectedIdx]
			return m, m.deleteFilter(e.id)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the filter picker.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Filters"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No filters yet. Press 'n' to create one."))
	} else {
		exprStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
		for i, e := range m.entries {
			label := fmt.Sprintf("%s %s  %s",
				sourceBadge(e.source), e.label, exprStyle.Render(truncate(e.expression, 60)))

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"enter apply | n new | s save from history | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func sourceBadge(s entrySource) string {
	switch s {
	case sourceConfig:
		return "[cfg]"
	case sourceSaved:
		return "[sav]"
	default:
		return "[hst]"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// loadEntries merges config expressions, saved filters and recent
// search history into one list, in that order.
func (m Model) loadEntries() tea.Cmd {
	s := m.store
	cfg := m.cfg
	return func() tea.Msg {
		var entries []entry

		ids := make([]string, 0, len(cfg.JQLExpressions))
		for id := range cfg.JQLExpressions {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			expr := cfg.JQLExpressions[id]
			entries = append(entries, entry{
				source:     sourceConfig,
				id:         id,
				label:      expr.Label,
				expression: expr.Expression,
			})
		}

		if s != nil {
			saved, err := s.Filters(context.Background())
			if err == nil {
				for _, f := range saved {
					entries = append(entries, entry{
						source:     sourceSaved,
						id:         f.ID,
						label:      f.Label,
						expression: f.Expression,
					})
				}
			}

			recent, err := s.RecentSearches(context.Background(), 10)
			if err == nil {
				for _, h := range recent {
					entries = append(entries, entry{
						source:     sourceHistory,
						id:         fmt.Sprintf("history-%d", h.ID),
						label:      "recent search",
						expression: h.Query,
					})
				}
			}
		}

		return entriesLoadedMsg{entries: entries}
	}
}

func (m Model) saveFilter() tea.Cmd {
	s := m.store
	fb := m.fb
	return func() tea.Msg {
		if s == nil {
			return filterSavedMsg{err: fmt.Errorf("no local database")}
		}
		_, err := s.SaveFilter(context.Background(), model.SavedFilter{
			Label:      fb.label,
			Expression: fb.expression,
		})
		return filterSavedMsg{err: err}
	}
}

func (m Model) deleteFilter(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteFilter(context.Background(), id)
		return filterDeletedMsg{err: err}
	}
}
