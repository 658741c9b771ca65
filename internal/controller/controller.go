package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/whyisdifficult/jiratui-sub000/internal/fields"
	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
)

// Page sizes and caps for aggregating endpoints. The caps bound the
// number of round trips when an instance has pathological amounts of
// data; partial results are still returned.
const (
	projectsPageSize   = 100
	maxProjectPages    = 10
	groupPageSize      = 50
	maxGroupPages      = 20
	assignableUsersMax = 1000
)

// Options configures controller behavior from user settings.
type Options struct {
	// PageSize is the search page size; 0 means the default of 30.
	PageSize int
	// SprintFieldKey is the sprint custom field key
	// (e.g. customfield_10020); empty disables sprint extraction.
	SprintFieldKey string
	// IgnoreUsersWithoutEmail drops group members lacking an email
	// address from user listings.
	IgnoreUsersWithoutEmail bool
}

// Controller wraps a Jira API variant with response normalization,
// pagination aggregation and local validation. All methods return a
// Response envelope and never panic on server garbage.
type Controller struct {
	api    jira.API
	logger *slog.Logger
	opts   Options

	// requiredFields memoizes createmeta lookups per (project, issue
	// type) pair. Unbounded and unlocked: one UI session issues these
	// serially and the pair space is tiny.
	requiredFields map[string][]jira.FieldMeta
}

// New creates a controller over the given API variant.
func New(api jira.API, logger *slog.Logger, opts Options) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 30
	}
	return &Controller{
		api:            api,
		logger:         logger,
		opts:           opts,
		requiredFields: make(map[string][]jira.FieldMeta),
	}
}

func (c *Controller) failure(op string, err error) Response {
	c.logger.Error("operation failed", "op", op, "error", err)
	return fail(userMessage(err))
}

// userMessage extracts the most helpful message for display.
func userMessage(err error) string {
	var reqErr *jira.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message()
	}
	var vErr *jira.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Msg
	}
	return err.Error()
}

// Myself returns the authenticated user.
func (c *Controller) Myself(ctx context.Context) Response {
	me, err := c.api.Myself(ctx)
	if err != nil {
		return c.failure("myself", err)
	}
	return ok(me)
}

// ServerInfo returns deployment information for the configured instance.
func (c *Controller) ServerInfo(ctx context.Context) Response {
	info, err := c.api.ServerInfo(ctx)
	if err != nil {
		return c.failure("server_info", err)
	}
	return ok(info)
}

// SearchProjects aggregates every page of projects matching query. On a
// page failure the projects fetched so far are returned together with
// the error message.
func (c *Controller) SearchProjects(ctx context.Context, query string) Response {
	var projects []jira.Project
	startAt := 0
	for page := 0; page < maxProjectPages; page++ {
		result, err := c.api.SearchProjects(ctx, query, startAt, projectsPageSize)
		if err != nil {
			c.logger.Error("project page fetch failed",
				"op", "search_projects", "start_at", startAt, "error", err)
			return Response{Success: true, Result: projects, Error: userMessage(err)}
		}
		projects = append(projects, result.Values...)
		if result.IsLast || len(result.Values) == 0 {
			break
		}
		startAt += len(result.Values)
	}
	return ok(projects)
}

// GetProject returns a single project by key.
func (c *Controller) GetProject(ctx context.Context, key string) Response {
	project, err := c.api.GetProject(ctx, key)
	if err != nil {
		return c.failure("get_project", err)
	}
	return ok(project)
}

// ProjectStatuses returns the statuses available per issue type in a
// project.
func (c *Controller) ProjectStatuses(ctx context.Context, key string) Response {
	statuses, err := c.api.ProjectStatuses(ctx, key)
	if err != nil {
		return c.failure("project_statuses", err)
	}
	return ok(statuses)
}

// Statuses returns every status defined on the instance.
func (c *Controller) Statuses(ctx context.Context) Response {
	statuses, err := c.api.Statuses(ctx)
	if err != nil {
		return c.failure("statuses", err)
	}
	return ok(statuses)
}

// IssueTypes returns every issue type defined on the instance.
func (c *Controller) IssueTypes(ctx context.Context) Response {
	types, err := c.api.IssueTypes(ctx)
	if err != nil {
		return c.failure("issue_types", err)
	}
	return ok(types)
}

// SearchUsers finds users matching a free-text query.
func (c *Controller) SearchUsers(ctx context.Context, query string) Response {
	users, err := c.api.SearchUsers(ctx, query, groupPageSize)
	if err != nil {
		return c.failure("search_users", err)
	}
	return ok(users)
}

// UsersAssignableToIssue returns users who may be assigned to the
// given work item.
func (c *Controller) UsersAssignableToIssue(ctx context.Context, issueKey, query string) Response {
	users, err := c.api.UsersAssignableToIssue(ctx, issueKey, query, assignableUsersMax)
	if err != nil {
		return c.failure("users_assignable_to_issue", err)
	}
	return ok(users)
}

// UsersAssignableToProjects returns users assignable in any of the
// given projects.
func (c *Controller) UsersAssignableToProjects(ctx context.Context, projectKeys []string) Response {
	users, err := c.api.UsersAssignableToProjects(ctx, projectKeys, assignableUsersMax)
	if err != nil {
		return c.failure("users_assignable_to_projects", err)
	}
	return ok(users)
}

// Groups returns the instance's user groups.
func (c *Controller) Groups(ctx context.Context) Response {
	groups, err := c.api.Groups(ctx)
	if err != nil {
		return c.failure("groups", err)
	}
	return ok(groups.Values)
}

// ListActiveUsersInGroup aggregates every page of a group's members,
// keeping only active users (and, when configured, only those with an
// email address). A page failure returns the users collected so far
// plus the error message.
func (c *Controller) ListActiveUsersInGroup(ctx context.Context, group string) Response {
	var users []jira.User
	startAt := 0
	for page := 0; page < maxGroupPages; page++ {
		result, err := c.api.GroupMembers(ctx, group, startAt, groupPageSize)
		if err != nil {
			c.logger.Error("group member page fetch failed",
				"op", "list_group_users", "group", group,
				"start_at", startAt, "error", err)
			return Response{Success: true, Result: users, Error: userMessage(err)}
		}
		for _, user := range result.Values {
			if !user.Active {
				continue
			}
			if c.opts.IgnoreUsersWithoutEmail && user.EmailAddress == "" {
				continue
			}
			users = append(users, user)
		}
		if result.IsLast || len(result.Values) == 0 {
			break
		}
		startAt += len(result.Values)
	}
	return ok(users)
}

// GetWorkItem fetches one work item, fully normalized, with its edit
// metadata attached.
func (c *Controller) GetWorkItem(ctx context.Context, key string) Response {
	issue, err := c.api.GetIssue(ctx, key)
	if err != nil {
		return c.failure("get_work_item", err)
	}
	return ok(workItemFromIssue(issue, c.opts.SprintFieldKey))
}

// WorkItemForEdit fetches the raw issue backing a work item, including
// its edit metadata. The edit flow needs the unnormalized field values
// to diff against.
func (c *Controller) WorkItemForEdit(ctx context.Context, key string) Response {
	issue, err := c.api.GetIssue(ctx, key)
	if err != nil {
		return c.failure("work_item_for_edit", err)
	}
	return ok(issue)
}

// SearchWorkItems runs a token-paginated JQL search. Pass the token
// from the previous page's result to continue.
func (c *Controller) SearchWorkItems(ctx context.Context, criteria jira.SearchCriteria, pageToken string) Response {
	jql := jira.BuildJQL(criteria)
	result, err := c.api.SearchIssues(ctx, jql, c.opts.PageSize, pageToken, searchFields(c.opts.SprintFieldKey))
	if err != nil {
		return c.failure("search_work_items", err)
	}
	return ok(c.searchPage(result))
}

// SearchWorkItemsByPage jumps to a numbered results page. Only
// supported on deployments with offset pagination (Data Center).
func (c *Controller) SearchWorkItemsByPage(ctx context.Context, criteria jira.SearchCriteria, page int) Response {
	jql := jira.BuildJQL(criteria)
	result, err := c.api.SearchIssuesByPage(ctx, jql, page, c.opts.PageSize, searchFields(c.opts.SprintFieldKey))
	if err != nil {
		return c.failure("search_work_items_by_page", err)
	}
	return ok(c.searchPage(result))
}

func (c *Controller) searchPage(result *jira.SearchResult) model.SearchPage {
	page := model.SearchPage{
		NextPageToken: result.NextPageToken,
		IsLast:        result.IsLast,
		StartAt:       result.StartAt,
		Total:         result.Total,
	}
	page.Items = make([]model.WorkItem, 0, len(result.Issues))
	for i := range result.Issues {
		page.Items = append(page.Items,
			workItemFromIssue(&result.Issues[i], c.opts.SprintFieldKey))
	}
	return page
}

// searchFields lists the fields requested in search responses.
func searchFields(sprintFieldKey string) []string {
	base := []string{
		"summary", "description", "status", "assignee", "reporter",
		"issuetype", "project", "priority", "resolution", "labels",
		"duedate", "created", "updated", "parent",
	}
	if sprintFieldKey != "" {
		base = append(base, sprintFieldKey)
	}
	return base
}

// CountWorkItems returns an approximate match count for the criteria.
// Deployments without the endpoint report zero rather than an error.
func (c *Controller) CountWorkItems(ctx context.Context, criteria jira.SearchCriteria) Response {
	count, err := c.api.ApproximateCount(ctx, jira.BuildJQL(criteria))
	if err != nil {
		if errors.Is(err, jira.ErrNotImplemented) {
			return ok(int64(0))
		}
		return c.failure("count_work_items", err)
	}
	return ok(count)
}

// ListComments returns one page of a work item's comments, rendered.
func (c *Controller) ListComments(ctx context.Context, issueKey string, startAt int) Response {
	page, err := c.api.Comments(ctx, issueKey, startAt, c.opts.PageSize)
	if err != nil {
		return c.failure("list_comments", err)
	}
	return ok(commentViews(page.Comments))
}

// AddComment posts a comment; the adapter shapes the body for its
// variant.
func (c *Controller) AddComment(ctx context.Context, issueKey, text string) Response {
	if strings.TrimSpace(text) == "" {
		return fail("comment text can not be empty")
	}
	comment, err := c.api.AddComment(ctx, issueKey, text)
	if err != nil {
		return c.failure("add_comment", err)
	}
	return ok(commentView(*comment))
}

// DeleteComment removes a comment from a work item.
func (c *Controller) DeleteComment(ctx context.Context, issueKey, commentID string) Response {
	if err := c.api.DeleteComment(ctx, issueKey, commentID); err != nil {
		return c.failure("delete_comment", err)
	}
	return ok(nil)
}

// UpdateWorkItem applies an edit to a work item. Each changed field is
// checked against the item's edit metadata before any network call:
// fields that do not accept the "set" operation are rejected locally.
// An explicitly empty summary is invalid.
func (c *Controller) UpdateWorkItem(ctx context.Context, issue *jira.Issue, edit fields.Edit, notifyUsers bool) Response {
	if issue == nil {
		return fail("no work item selected")
	}
	// The edit form is prefilled, so a blank summary means the user
	// cleared it.
	if strings.TrimSpace(edit.Summary) == "" {
		return fail("the work item summary can not be empty")
	}

	changed := fields.Changes(issue, edit, c.api.RichText)
	if len(changed) == 0 {
		return ok(nil)
	}

	meta := issue.EditMeta
	if meta == nil {
		var err error
		meta, err = c.api.EditMeta(ctx, issue.Key)
		if err != nil {
			return c.failure("update_work_item", err)
		}
	}
	for key := range changed {
		fieldMeta, known := meta.Fields[key]
		if !known || !fieldMeta.SupportsSet() {
			name := fieldMeta.Name
			if name == "" {
				name = key
			}
			return fail(fmt.Sprintf(
				"the field %s can not be updated for the selected work item", name))
		}
	}

	if err := c.api.UpdateIssue(ctx, issue.Key, changed, notifyUsers); err != nil {
		return c.failure("update_work_item", err)
	}
	return ok(nil)
}

// CreateWorkItem creates a work item in a project. Summary is
// mandatory; the description is converted to the variant's rich-text
// shape by the adapter.
func (c *Controller) CreateWorkItem(ctx context.Context, projectKey, issueTypeID, summary, description string, extra map[string]interface{}) Response {
	if strings.TrimSpace(summary) == "" {
		return fail("the work item summary can not be empty")
	}

	payload := map[string]interface{}{
		"project":   map[string]string{"key": projectKey},
		"issuetype": map[string]string{"id": issueTypeID},
		"summary":   summary,
	}
	if description != "" {
		payload["description"] = c.api.RichText(description)
	}
	for key, value := range extra {
		payload[key] = value
	}

	created, err := c.api.CreateIssue(ctx, payload)
	if err != nil {
		return c.failure("create_work_item", err)
	}
	return ok(created)
}

// RequiredFields returns the required createmeta fields for a
// (project, issue type) pair, memoized for the session.
func (c *Controller) RequiredFields(ctx context.Context, projectKey, issueTypeID string) Response {
	cacheKey := projectKey + "/" + issueTypeID
	if cached, hit := c.requiredFields[cacheKey]; hit {
		return ok(cached)
	}

	meta, err := c.api.CreateMeta(ctx, projectKey, issueTypeID)
	if err != nil {
		return c.failure("required_fields", err)
	}
	var required []jira.FieldMeta
	for _, field := range meta.Fields {
		if field.Required {
			required = append(required, field)
		}
	}
	c.requiredFields[cacheKey] = required
	return ok(required)
}

// Transitions lists the workflow transitions available on a work item.
func (c *Controller) Transitions(ctx context.Context, issueKey string) Response {
	transitions, err := c.api.Transitions(ctx, issueKey)
	if err != nil {
		return c.failure("transitions", err)
	}
	return ok(transitions)
}

// ApplyTransition moves a work item through a workflow transition.
func (c *Controller) ApplyTransition(ctx context.Context, issueKey, transitionID string) Response {
	if err := c.api.ApplyTransition(ctx, issueKey, transitionID); err != nil {
		return c.failure("apply_transition", err)
	}
	return ok(nil)
}

// LinkTypes returns the relationship types available for linking.
func (c *Controller) LinkTypes(ctx context.Context) Response {
	types, err := c.api.IssueLinkTypes(ctx)
	if err != nil {
		return c.failure("link_types", err)
	}
	return ok(types)
}

// LinkWorkItems creates a typed link between two work items.
func (c *Controller) LinkWorkItems(ctx context.Context, linkTypeName, inwardKey, outwardKey string) Response {
	if inwardKey == outwardKey {
		return fail("a work item can not be linked to itself")
	}
	if err := c.api.CreateIssueLink(ctx, linkTypeName, inwardKey, outwardKey); err != nil {
		return c.failure("link_work_items", err)
	}
	return ok(nil)
}

// UnlinkWorkItems removes a link between two work items.
func (c *Controller) UnlinkWorkItems(ctx context.Context, linkID string) Response {
	if err := c.api.DeleteIssueLink(ctx, linkID); err != nil {
		return c.failure("unlink_work_items", err)
	}
	return ok(nil)
}

// RemoteLinks lists the web links attached to a work item.
func (c *Controller) RemoteLinks(ctx context.Context, issueKey string) Response {
	links, err := c.api.RemoteLinks(ctx, issueKey)
	if err != nil {
		return c.failure("remote_links", err)
	}
	return ok(links)
}

// AddWebLink attaches a web link to a work item.
func (c *Controller) AddWebLink(ctx context.Context, issueKey, linkURL, title string) Response {
	if linkURL == "" {
		return fail("the link URL can not be empty")
	}
	link, err := c.api.CreateRemoteLink(ctx, issueKey, linkURL, title)
	if err != nil {
		return c.failure("add_web_link", err)
	}
	return ok(link)
}

// DeleteWebLink removes a web link from a work item.
func (c *Controller) DeleteWebLink(ctx context.Context, issueKey string, linkID int64) Response {
	if err := c.api.DeleteRemoteLink(ctx, issueKey, linkID); err != nil {
		return c.failure("delete_web_link", err)
	}
	return ok(nil)
}

// maxAttachmentSize bounds uploads to what Jira accepts by default.
const maxAttachmentSize = 10 << 20

// AddAttachment uploads a file to a work item.
func (c *Controller) AddAttachment(ctx context.Context, issueKey, fileName string, size int64, content io.Reader) Response {
	if size > maxAttachmentSize {
		return fail(fmt.Sprintf(
			"the file %s exceeds the 10MB attachment limit", fileName))
	}
	attachments, err := c.api.AddAttachment(ctx, issueKey, fileName, content)
	if err != nil {
		return c.failure("add_attachment", err)
	}
	views := make([]model.AttachmentView, 0, len(attachments))
	for _, attachment := range attachments {
		views = append(views, attachmentView(attachment))
	}
	return ok(views)
}

// DeleteAttachment removes an attachment.
func (c *Controller) DeleteAttachment(ctx context.Context, attachmentID string) Response {
	if err := c.api.DeleteAttachment(ctx, attachmentID); err != nil {
		return c.failure("delete_attachment", err)
	}
	return ok(nil)
}

// Worklog lists the worklog entries on a work item, rendered.
func (c *Controller) Worklog(ctx context.Context, issueKey string) Response {
	page, err := c.api.Worklog(ctx, issueKey)
	if err != nil {
		return c.failure("worklog", err)
	}
	views := make([]model.WorklogView, 0, len(page.Worklogs))
	for _, entry := range page.Worklogs {
		views = append(views, worklogView(entry))
	}
	return ok(views)
}
