package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/whyisdifficult/jiratui-sub000/internal/config"
	"github.com/whyisdifficult/jiratui-sub000/internal/controller"
	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/keys"
	"github.com/whyisdifficult/jiratui-sub000/internal/store"
	"github.com/whyisdifficult/jiratui-sub000/internal/theme"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui/command"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui/detail"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui/filterpicker"
	helpview "github.com/whyisdifficult/jiratui-sub000/internal/ui/help"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui/itemform"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui/resultlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewFilters
	ViewCreate
	ViewEdit
	ViewComment
	ViewTransition
	ViewCommand
)

// commentBindings backs the comment form; heap-allocated so huh's
// pointers survive Bubble Tea model copies.
type commentBindings struct {
	text string
}

// Model is the root Bubble Tea model that manages view routing, layout
// and access to the Jira controller and local store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	cfg          *config.Config
	ctrl         *controller.Controller
	store        store.Store
	keys         *keys.KeyMap

	resultList  resultlist.Model
	detailView  detail.Model
	helpView    helpview.Model
	filterView  filterpicker.Model
	formView    itemform.Model
	commandView command.Model

	commentForm *huh.Form
	cb          *commentBindings

	transitions   []jira.Transition
	transitionIdx int

	// editIssue is the raw issue being edited, held across the form.
	editIssue *jira.Issue

	statusMsg string
	errorMsg  string
	ready     bool
}

// New creates the root application model.
func New(cfg *config.Config, ctrl *controller.Controller, s store.Store, pageJumps bool) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView: ViewList,
		cfg:         cfg,
		ctrl:        ctrl,
		store:       s,
		keys:        k,
		resultList:  resultlist.New(ctrl, s, k, pageJumps, 80, 24),
		detailView:  detail.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		filterView:  filterpicker.New(s, cfg, k, 80, 24),
		formView:    itemform.New(80, 24),
		commandView: command.New(80, 24),
		cb:          &commentBindings{},
	}
	m.resultList.SetCriteria(m.initialCriteria())
	return m
}

// initialCriteria builds the startup search from the configuration: the
// default JQL expression when set, otherwise recent items in the
// default project.
func (m Model) initialCriteria() jira.SearchCriteria {
	if id := m.cfg.DefaultJQLExpressionID; id != "" {
		if expr, ok := m.cfg.JQLExpressions[id]; ok {
			return jira.SearchCriteria{JQL: expr.Expression, OrderBy: "created desc"}
		}
	}
	criteria := jira.SearchCriteria{
		ProjectKey: m.cfg.DefaultProjectKey,
		OrderBy:    "created desc",
	}
	if m.cfg.SearchDaysInterval > 0 {
		criteria.CreatedSince = daysAgo(m.cfg.SearchDaysInterval)
	}
	return criteria
}

// Init loads the first page of results.
func (m Model) Init() tea.Cmd {
	return m.resultList.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.resultList.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.filterView.SetSize(contentWidth, contentHeight)
		m.formView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case resultlist.PageLoadedMsg:
		m.errorMsg = msg.Err
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd

	case resultlist.SelectedItemMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetLoading(true)
		return m, m.loadWorkItem(msg.Key)

	case detail.ItemLoadedMsg:
		m.errorMsg = msg.Err
		var cmd tea.Cmd
		m.detailView, cmd = m.detailView.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		return m.startAction(msg)

	case editIssueLoadedMsg:
		if msg.err != "" {
			m.errorMsg = msg.err
			return m, nil
		}
		m.editIssue = msg.issue
		m.previousView = m.currentView
		m.currentView = ViewEdit
		item := m.detailView.Item()
		if item == nil {
			m.currentView = m.previousView
			return m, nil
		}
		return m, m.formView.StartEdit(item, msg.issue.EditMeta)

	case createOptionsLoadedMsg:
		if msg.err != "" {
			m.errorMsg = msg.err
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCreate
		return m, m.formView.StartCreate(msg.projects, msg.issueTypes, m.cfg.DefaultProjectKey)

	case transitionsLoadedMsg:
		if msg.err != "" {
			m.errorMsg = msg.err
			return m, nil
		}
		if len(msg.transitions) == 0 {
			m.statusMsg = "No transitions available"
			return m, nil
		}
		m.transitions = msg.transitions
		m.transitionIdx = 0
		m.previousView = m.currentView
		m.currentView = ViewTransition
		return m, nil

	case itemform.EditSubmittedMsg:
		m.currentView = ViewDetail
		return m, m.applyEdit(msg)

	case itemform.CreateSubmittedMsg:
		m.currentView = ViewList
		return m, m.createItem(msg)

	case itemform.CancelMsg:
		m.currentView = m.previousView
		m.editIssue = nil
		return m, nil

	case filterpicker.FilterChosenMsg:
		m.currentView = ViewList
		m.resultList.SetCriteria(jira.SearchCriteria{
			JQL:     msg.Expression,
			OrderBy: "created desc",
		})
		m.statusMsg = "Filter: " + msg.Label
		return m, m.resultList.Init()

	case filterpicker.CloseMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case operationDoneMsg:
		if msg.err != "" {
			m.errorMsg = msg.err
		} else {
			m.errorMsg = ""
			m.statusMsg = msg.status
		}
		var cmds []tea.Cmd
		if msg.reloadItem != "" {
			m.detailView.SetLoading(true)
			cmds = append(cmds, m.loadWorkItem(msg.reloadItem))
		}
		if msg.reloadList {
			cmds = append(cmds, m.resultList.Init())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that apply regardless of the focused
// view. Text-entry views keep all their keys.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return true, m, tea.Quit
	}

	// Views with focused text inputs consume everything else.
	switch m.currentView {
	case ViewCreate, ViewEdit, ViewComment, ViewFilters, ViewCommand:
		return false, m, nil
	}
	if m.currentView == ViewList && m.resultList.SearchActive() {
		return false, m, nil
	}

	if msg.String() == ":" {
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return true, m, m.commandView.Focus()
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewList {
			return true, m, tea.Quit
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case key.Matches(msg, m.keys.Filters):
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewFilters
			return true, m, m.filterView.Init()
		}

	case key.Matches(msg, m.keys.Create):
		if m.currentView == ViewList {
			return true, m, m.loadCreateOptions()
		}

	case key.Matches(msg, m.keys.Edit):
		if m.currentView == ViewDetail {
			if item := m.detailView.Item(); item != nil {
				return true, m, m.loadEditIssue(item.Key)
			}
		}
	}

	return false, m, nil
}

// startAction routes detail-view actions to their flows.
func (m Model) startAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case "comment":
		m.cb.text = ""
		m.commentForm = m.buildCommentForm()
		m.previousView = m.currentView
		m.currentView = ViewComment
		return m, m.commentForm.Init()

	case "transition":
		return m, m.loadTransitions(msg.Key)

	case "edit":
		return m, m.loadEditIssue(msg.Key)
	}
	return m, nil
}

func (m Model) buildCommentForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Comment").
				Placeholder("Write a comment...").
				Value(&m.cb.text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("comment text can not be empty")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.resultList, cmd = m.resultList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewFilters:
		m.filterView, cmd = m.filterView.Update(msg)
	case ViewCreate, ViewEdit:
		m.formView, cmd = m.formView.Update(msg)
	case ViewCommand:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.currentView = m.previousView
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewComment:
		return m.updateCommentForm(msg)
	case ViewTransition:
		return m.updateTransitionPicker(msg)
	}

	return m, cmd
}

func (m Model) updateCommentForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.commentForm == nil {
		return m, nil
	}
	mdl, cmd := m.commentForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.commentForm = f
	}
	if m.commentForm.State == huh.StateCompleted {
		m.currentView = ViewDetail
		item := m.detailView.Item()
		if item == nil {
			return m, nil
		}
		return m, m.postComment(item.Key, m.cb.text)
	}
	if m.commentForm.State == huh.StateAborted {
		m.currentView = m.previousView
		return m, nil
	}
	return m, cmd
}

func (m Model) updateTransitionPicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		m.currentView = m.previousView
		return m, nil

	case key.Matches(keyMsg, m.keys.Down):
		if len(m.transitions) > 0 {
			m.transitionIdx = (m.transitionIdx + 1) % len(m.transitions)
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Up):
		if len(m.transitions) > 0 {
			m.transitionIdx--
			if m.transitionIdx < 0 {
				m.transitionIdx = len(m.transitions) - 1
			}
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Select):
		if m.transitionIdx >= len(m.transitions) {
			return m, nil
		}
		item := m.detailView.Item()
		if item == nil {
			m.currentView = ViewList
			return m, nil
		}
		m.currentView = ViewDetail
		return m, m.applyTransition(item.Key, m.transitions[m.transitionIdx].ID)
	}
	return m, nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("jiratui", m.connectionLabel())
	content := m.renderContent()

	var statusBar string
	if m.errorMsg != "" {
		statusBar = m.layout.RenderErrorBar(m.errorMsg)
	} else {
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// connectionLabel describes the configured Jira instance for the header.
func (m Model) connectionLabel() string {
	variant := fmt.Sprintf("cloud v%d", m.cfg.APIVersion)
	if !m.cfg.Cloud {
		variant = "data center v2"
	}
	return fmt.Sprintf("%s (%s)", m.cfg.BaseURL, variant)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.resultList.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewFilters:
		return m.filterView.View()
	case ViewCreate, ViewEdit:
		return m.formView.View()
	case ViewComment:
		if m.commentForm == nil {
			return ""
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(m.commentForm.View())
	case ViewTransition:
		return m.renderTransitionPicker()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	verb, arg, _ := strings.Cut(cmd, " ")

	switch strings.ToLower(verb) {
	case "open", "o":
		itemKey := strings.ToUpper(strings.TrimSpace(arg))
		if itemKey == "" {
			m.errorMsg = "open needs a work item key"
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetLoading(true)
		return m, m.loadWorkItem(itemKey)
	case "refresh", "r":
		m.currentView = ViewList
		return m, m.resultList.Init()
	case "filters", "f":
		m.previousView = ViewList
		m.currentView = ViewFilters
		return m, m.filterView.Init()
	case "new", "create":
		return m, m.loadCreateOptions()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil
	case "quit", "q":
		return m, tea.Quit
	default:
		m.errorMsg = fmt.Sprintf("unknown command: %s", verb)
		return m, nil
	}
}

func (m Model) renderTransitionPicker() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Transition"))
	b.WriteString("\n\n")

	for i, t := range m.transitions {
		label := t.Name
		if t.To != nil {
			label = fmt.Sprintf("%s → %s", t.Name, t.To.Name)
		}
		if i == m.transitionIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("enter apply | esc cancel"))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.layout.ContentWidth()).
		Height(m.layout.ContentHeight()).
		Render(b.String())
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMsg != "" && m.currentView == ViewList {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | c comment | t transition | e edit | j/k scroll"
	case ViewFilters:
		return "enter apply | n new | s save | d delete | esc back"
	case ViewCreate, ViewEdit, ViewComment:
		return "enter submit | esc cancel"
	case ViewTransition:
		return "enter apply | esc cancel"
	case ViewCommand:
		return "enter execute | esc back"
	default:
		return "q quit | ? help | / search | f filters | a new | r refresh | n/p pages"
	}
}

func (m Model) formWidth() int {
	w := m.layout.ContentWidth() - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.layout.ContentHeight() - 4
	if h < 10 {
		h = 10
	}
	return h
}
