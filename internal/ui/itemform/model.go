package itemform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/whyisdifficult/jiratui-sub000/internal/fields"
	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
	"github.com/whyisdifficult/jiratui-sub000/internal/theme"
)

// EditSubmittedMsg is dispatched when the user submits the edit form.
type EditSubmittedMsg struct {
	Key  string
	Edit fields.Edit
}

// CreateSubmittedMsg is dispatched when the user submits the create form.
type CreateSubmittedMsg struct {
	ProjectKey  string
	IssueTypeID string
	Summary     string
	Description string
	Extra       map[string]interface{}
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// customBinding holds the submitted value of one dynamically generated
// field, typed per input kind.
type customBinding struct {
	meta  jira.FieldMeta
	kind  fields.InputKind
	text  string
	pick  string
	multi []string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	summary     string
	description string
	priorityID  string
	assigneeID  string
	dueDate     string
	labels      string

	projectKey  string
	issueTypeID string

	custom map[string]*customBinding
}

// Model is the Bubble Tea model for the work item create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editKey  string
	width    int
	height   int
}

// New creates a new work item form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for creating a new work item.
func (m *Model) StartCreate(projects []jira.Project, issueTypes []jira.IssueType, defaultProjectKey string) tea.Cmd {
	m.editMode = false
	m.editKey = ""
	*m.fb = formBindings{projectKey: defaultProjectKey}
	m.form = m.buildCreateForm(projects, issueTypes)
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing work item,
// prefilled from its current state. The editmeta drives which fields
// appear and how they are rendered.
func (m *Model) StartEdit(item *model.WorkItem, meta *jira.EditMeta) tea.Cmd {
	m.editMode = true
	m.editKey = item.Key
	*m.fb = formBindings{
		summary:     item.Summary,
		description: item.Description,
		priorityID:  item.PriorityID,
		assigneeID:  item.AssigneeID,
		dueDate:     item.DueDate,
		labels:      strings.Join(item.Labels, ", "),
		custom:      map[string]*customBinding{},
	}
	m.form = m.buildEditForm(item, meta)
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Work Item"
	if m.editMode {
		titleText = "Edit " + m.editKey
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildCreateForm(projects []jira.Project, issueTypes []jira.IssueType) *huh.Form {
	projectOpts := make([]huh.Option[string], len(projects))
	for i, p := range projects {
		projectOpts[i] = huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Key), p.Key)
	}

	typeOpts := make([]huh.Option[string], 0, len(issueTypes))
	for _, it := range issueTypes {
		if it.Subtask {
			continue
		}
		typeOpts = append(typeOpts, huh.NewOption(it.Name, it.ID))
	}

	formFields := []huh.Field{
		huh.NewSelect[string]().
			Title("Project").
			Options(projectOpts...).
			Value(&m.fb.projectKey),
		huh.NewSelect[string]().
			Title("Type").
			Options(typeOpts...).
			Value(&m.fb.issueTypeID),
		huh.NewInput().
			Title("Summary").
			Placeholder("One-line summary").
			Value(&m.fb.summary).
			Validate(validateRequired("Summary")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
	}

	return huh.NewForm(
		huh.NewGroup(formFields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildEditForm(item *model.WorkItem, meta *jira.EditMeta) *huh.Form {
	formFields := []huh.Field{
		huh.NewInput().
			Title("Summary").
			Value(&m.fb.summary).
			Validate(validateRequired("Summary")),
		huh.NewText().
			Title("Description").
			Value(&m.fb.description),
	}

	if priorityField := m.priorityField(meta); priorityField != nil {
		formFields = append(formFields, priorityField)
	}

	formFields = append(formFields,
		huh.NewInput().
			Title("Assignee").
			Placeholder("Account id or username, blank to unassign").
			Value(&m.fb.assigneeID),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
		huh.NewInput().
			Title("Labels").
			Placeholder("Comma-separated").
			Value(&m.fb.labels),
	)

	formFields = append(formFields, m.customFields(item, meta)...)

	return huh.NewForm(
		huh.NewGroup(formFields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// priorityField builds the priority selector from editmeta allowed
// values, or nil when the deployment does not expose priority.
func (m *Model) priorityField(meta *jira.EditMeta) huh.Field {
	if meta == nil {
		return nil
	}
	pm, ok := meta.Fields["priority"]
	if !ok || len(pm.AllowedValues) == 0 {
		return nil
	}

	opts := make([]huh.Option[string], len(pm.AllowedValues))
	for i, v := range pm.AllowedValues {
		opts[i] = huh.NewOption(v.Label(), v.ID)
	}
	return huh.NewSelect[string]().
		Title("Priority").
		Options(opts...).
		Value(&m.fb.priorityID)
}

// customFields generates one form field per editable custom field, with
// the widget chosen by the field's schema.
func (m *Model) customFields(item *model.WorkItem, meta *jira.EditMeta) []huh.Field {
	var out []huh.Field

	editable := fields.EditableCustomFields(meta)
	keys := make([]string, 0, len(editable))
	for key := range editable {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fm := editable[key]
		kind := fields.Kind(fm)
		cb := &customBinding{meta: fm, kind: kind, text: item.CustomFields[fm.Name]}
		m.fb.custom[key] = cb

		switch kind {
		case fields.KindSelect:
			opts := make([]huh.Option[string], 0, len(fm.AllowedValues)+1)
			opts = append(opts, huh.NewOption("(unchanged)", ""))
			for _, v := range fm.AllowedValues {
				opts = append(opts, huh.NewOption(v.Label(), v.ID))
			}
			out = append(out, huh.NewSelect[string]().
				Title(fm.Name).
				Options(opts...).
				Value(&cb.pick))

		case fields.KindMultiSelect, fields.KindCheckboxes:
			opts := make([]huh.Option[string], len(fm.AllowedValues))
			for i, v := range fm.AllowedValues {
				opts[i] = huh.NewOption(v.Label(), v.ID)
			}
			out = append(out, huh.NewMultiSelect[string]().
				Title(fm.Name).
				Options(opts...).
				Value(&cb.multi))

		case fields.KindTextArea:
			out = append(out, huh.NewText().
				Title(fm.Name).
				Value(&cb.text))

		case fields.KindNumeric:
			out = append(out, huh.NewInput().
				Title(fm.Name).
				Value(&cb.text).
				Validate(validateOptionalNumber))

		case fields.KindDate:
			out = append(out, huh.NewInput().
				Title(fm.Name).
				Placeholder("YYYY-MM-DD").
				Value(&cb.text).
				Validate(validateOptionalDate))

		default:
			out = append(out, huh.NewInput().
				Title(fm.Name).
				Value(&cb.text))
		}
	}
	return out
}

func (m Model) handleSubmit() tea.Cmd {
	if m.editMode {
		edit := fields.Edit{
			Summary:       m.fb.summary,
			Description:   m.fb.description,
			PriorityID:    m.fb.priorityID,
			AssigneeID:    m.fb.assigneeID,
			DueDate:       m.fb.dueDate,
			Labels:        splitLabels(m.fb.labels),
			ClearAssignee: strings.TrimSpace(m.fb.assigneeID) == "",
			Custom:        customValues(m.fb.custom),
		}
		key := m.editKey
		return func() tea.Msg { return EditSubmittedMsg{Key: key, Edit: edit} }
	}

	msg := CreateSubmittedMsg{
		ProjectKey:  m.fb.projectKey,
		IssueTypeID: m.fb.issueTypeID,
		Summary:     m.fb.summary,
		Description: m.fb.description,
	}
	return func() tea.Msg { return msg }
}

// customValues shapes submitted custom values into update payload form.
// Untouched fields are omitted.
func customValues(bindings map[string]*customBinding) map[string]interface{} {
	out := map[string]interface{}{}
	for key, cb := range bindings {
		switch cb.kind {
		case fields.KindSelect:
			if cb.pick != "" {
				out[key] = map[string]string{"id": cb.pick}
			}
		case fields.KindMultiSelect, fields.KindCheckboxes:
			if len(cb.multi) > 0 {
				values := make([]map[string]string, len(cb.multi))
				for i, id := range cb.multi {
					values[i] = map[string]string{"id": id}
				}
				out[key] = values
			}
		case fields.KindNumeric:
			text := strings.TrimSpace(cb.text)
			if text == "" {
				continue
			}
			if n, err := strconv.ParseFloat(text, 64); err == nil {
				out[key] = n
			}
		case fields.KindLabels:
			if labels := splitLabels(cb.text); labels != nil {
				out[key] = labels
			}
		default:
			if text := strings.TrimSpace(cb.text); text != "" {
				out[key] = text
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func splitLabels(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateOptionalNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}
