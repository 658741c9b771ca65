package resultlist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whyisdifficult/jiratui-sub000/internal/controller"
	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/keys"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
	"github.com/whyisdifficult/jiratui-sub000/internal/store"
	"github.com/whyisdifficult/jiratui-sub000/internal/theme"
)

// PageLoadedMsg is sent when a page of search results arrives.
type PageLoadedMsg struct {
	Page model.SearchPage
	// PageNumber is the 1-based page for offset pagination.
	PageNumber int
	Err        string
}

// CountLoadedMsg carries the approximate total match count.
type CountLoadedMsg struct {
	Count int64
}

// SelectedItemMsg is sent when the user opens a work item.
type SelectedItemMsg struct {
	Key string
}

// Model is the search results view: a query input, the result list and
// pagination state for both token and page-number navigation.
type Model struct {
	list        list.Model
	ctrl        *controller.Controller
	store       store.Store
	keys        *keys.KeyMap
	criteria    jira.SearchCriteria
	pageJumps   bool
	searchMode  bool
	searchInput textinput.Model

	// Token pagination state. tokens[i] is the token that loads page
	// i+1; an empty token loads the first page.
	tokens    []string
	pageIndex int
	isLast    bool

	count  int64
	width  int
	height int
}

// New creates the result list view. pageJumps enables numeric page
// navigation (offset-paginated deployments).
func New(ctrl *controller.Controller, s store.Store, k *keys.KeyMap, pageJumps bool, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Work Items"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "JQL, e.g. project = ABC and status = Open"
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		ctrl:        ctrl,
		store:       s,
		keys:        k,
		pageJumps:   pageJumps,
		searchInput: si,
		tokens:      []string{""},
		width:       width,
		height:      height,
	}
}

// SearchActive reports whether the query input has keyboard focus.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// SetCriteria replaces the search criteria and resets pagination.
func (m *Model) SetCriteria(criteria jira.SearchCriteria) {
	m.criteria = criteria
	m.tokens = []string{""}
	m.pageIndex = 0
	m.isLast = false
}

// Init loads the first page and the match count.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadPage(0), m.loadCount())
}

// Update handles messages for the result list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		items := make([]list.Item, len(msg.Page.Items))
		for i, wi := range msg.Page.Items {
			items[i] = WorkItemEntry{Item: wi}
		}
		cmd := m.list.SetItems(items)

		m.isLast = msg.Page.IsLast == nil || *msg.Page.IsLast
		if msg.Page.NextPageToken != "" && m.pageIndex == len(m.tokens)-1 {
			m.tokens = append(m.tokens, msg.Page.NextPageToken)
		}
		if msg.Page.Total > 0 {
			m.count = int64(msg.Page.Total)
		}
		return m, cmd

	case CountLoadedMsg:
		if msg.Count > 0 {
			m.count = msg.Count
		}
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while the query bar is focused.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		m.SetCriteria(jira.SearchCriteria{
			JQL:     query,
			OrderBy: "created desc",
		})
		return m, tea.Batch(
			m.recordSearch(query),
			m.loadPage(0),
			m.loadCount(),
		)

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		entry, ok := m.list.SelectedItem().(WorkItemEntry)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedItemMsg{Key: entry.Item.Key}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.loadPage(m.pageIndex), m.loadCount())

	case key.Matches(msg, m.keys.NextPage):
		if m.isLast {
			return m, nil
		}
		m.pageIndex++
		return m, m.loadPage(m.pageIndex)

	case key.Matches(msg, m.keys.PrevPage):
		if m.pageIndex == 0 {
			return m, nil
		}
		m.pageIndex--
		return m, m.loadPage(m.pageIndex)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the result list with the query bar and count line.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	countLine := theme.HelpStyle.Render(m.paginationLabel())
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), countLine)
}

func (m Model) paginationLabel() string {
	label := fmt.Sprintf(" page %d", m.pageIndex+1)
	if m.count > 0 {
		label += fmt.Sprintf(" · ~%d matching", m.count)
	}
	if m.isLast {
		label += " · last page"
	}
	return label
}

// renderEmptyState shows guidance text when no results are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	return style.Render(
		"No work items found.\n\n" +
			"Press / to search with JQL, or f to pick a saved filter.",
	)
}

// loadPage returns a tea.Cmd that fetches the given page index with the
// current criteria.
func (m Model) loadPage(pageIndex int) tea.Cmd {
	ctrl := m.ctrl
	criteria := m.criteria

	if m.pageJumps {
		pageNumber := pageIndex + 1
		return func() tea.Msg {
			resp := ctrl.SearchWorkItemsByPage(context.Background(), criteria, pageNumber)
			return pageMsg(resp, pageNumber)
		}
	}

	token := ""
	if pageIndex < len(m.tokens) {
		token = m.tokens[pageIndex]
	}
	return func() tea.Msg {
		resp := ctrl.SearchWorkItems(context.Background(), criteria, token)
		return pageMsg(resp, pageIndex+1)
	}
}

func pageMsg(resp controller.Response, pageNumber int) PageLoadedMsg {
	msg := PageLoadedMsg{PageNumber: pageNumber, Err: resp.Error}
	if page, ok := resp.Result.(model.SearchPage); ok {
		msg.Page = page
	}
	return msg
}

// loadCount fetches the approximate match count for the criteria.
func (m Model) loadCount() tea.Cmd {
	ctrl := m.ctrl
	criteria := m.criteria
	return func() tea.Msg {
		resp := ctrl.CountWorkItems(context.Background(), criteria)
		if count, ok := resp.Result.(int64); ok {
			return CountLoadedMsg{Count: count}
		}
		return CountLoadedMsg{}
	}
}

// recordSearch appends the query to the local search history.
func (m Model) recordSearch(query string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if s != nil && query != "" {
			s.RecordSearch(context.Background(), query)
		}
		return nil
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
