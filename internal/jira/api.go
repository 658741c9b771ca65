package jira

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// API is the operation surface of a Jira deployment. Three
// implementations exist: CloudAPI (Cloud REST v3), CloudAPIv2 (Cloud
// REST v2) and DataCenterAPI (Data Center REST v2). The variant is
// chosen once at construction; there is no runtime renegotiation.
type API interface {
	// Projects and metadata.
	SearchProjects(ctx context.Context, query string, startAt, maxResults int) (*ProjectSearchResult, error)
	GetProject(ctx context.Context, key string) (*Project, error)
	ProjectStatuses(ctx context.Context, key string) ([]ProjectStatuses, error)
	Statuses(ctx context.Context) ([]Status, error)
	IssueTypes(ctx context.Context) ([]IssueType, error)
	CreateMeta(ctx context.Context, projectKey, issueTypeID string) (*CreateMeta, error)

	// Users and groups.
	SearchUsers(ctx context.Context, query string, maxResults int) ([]User, error)
	UsersAssignableToIssue(ctx context.Context, issueKey, query string, maxResults int) ([]User, error)
	UsersAssignableToProjects(ctx context.Context, projectKeys []string, maxResults int) ([]User, error)
	Groups(ctx context.Context) (*GroupList, error)
	GroupMembers(ctx context.Context, group string, startAt, maxResults int) (*GroupMembers, error)

	// Issues and search.
	GetIssue(ctx context.Context, key string) (*Issue, error)
	SearchIssues(ctx context.Context, jql string, maxResults int, pageToken string, fields []string) (*SearchResult, error)
	SearchIssuesByPage(ctx context.Context, jql string, page, pageSize int, fields []string) (*SearchResult, error)
	ApproximateCount(ctx context.Context, jql string) (int64, error)
	CreateIssue(ctx context.Context, fields map[string]interface{}) (*CreatedIssue, error)
	UpdateIssue(ctx context.Context, issueKey string, fields map[string]interface{}, notifyUsers bool) error
	EditMeta(ctx context.Context, issueKey string) (*EditMeta, error)

	// Comments.
	Comments(ctx context.Context, issueKey string, startAt, maxResults int) (*CommentPage, error)
	GetComment(ctx context.Context, issueKey, commentID string) (*Comment, error)
	AddComment(ctx context.Context, issueKey, text string) (*Comment, error)
	DeleteComment(ctx context.Context, issueKey, commentID string) error

	// Transitions.
	Transitions(ctx context.Context, issueKey string) ([]Transition, error)
	ApplyTransition(ctx context.Context, issueKey, transitionID string) error

	// Links.
	IssueLinkTypes(ctx context.Context) ([]IssueLinkType, error)
	CreateIssueLink(ctx context.Context, linkTypeName, inwardKey, outwardKey string) error
	DeleteIssueLink(ctx context.Context, linkID string) error
	RemoteLinks(ctx context.Context, issueKey string) ([]RemoteLink, error)
	CreateRemoteLink(ctx context.Context, issueKey, linkURL, title string) (*RemoteLink, error)
	DeleteRemoteLink(ctx context.Context, issueKey string, linkID int64) error

	// Attachments and worklog.
	AddAttachment(ctx context.Context, issueKey, fileName string, content io.Reader) ([]Attachment, error)
	DeleteAttachment(ctx context.Context, attachmentID string) error
	Worklog(ctx context.Context, issueKey string) (*WorklogPage, error)

	// Instance.
	ServerInfo(ctx context.Context) (*ServerInfo, error)
	Myself(ctx context.Context) (*User, error)

	// RichText converts plain text to the rich-text payload shape this
	// variant expects for descriptions: an ADF document on Cloud v3, a
	// plain string everywhere else.
	RichText(text string) interface{}
}

// NewAPI selects the variant for a deployment: Cloud v3 by default,
// Cloud v2 when apiVersion is 2, Data Center when cloud is false.
func NewAPI(client *Client, cloud bool, apiVersion int) API {
	switch {
	case !cloud:
		return NewDataCenterAPI(client)
	case apiVersion == 2:
		return NewCloudAPIv2(client)
	default:
		return NewCloudAPI(client)
	}
}

// CloudAPI talks to Jira Cloud REST API v3.
type CloudAPI struct {
	client *Client
	prefix string
}

// NewCloudAPI creates a Cloud v3 adapter.
func NewCloudAPI(client *Client) *CloudAPI {
	return &CloudAPI{client: client, prefix: "/rest/api/3"}
}

func (a *CloudAPI) path(parts ...string) string {
	return a.prefix + "/" + strings.Join(parts, "/")
}

// SearchProjects returns one page of projects matching query. An empty
// query lists all browsable projects.
func (a *CloudAPI) SearchProjects(
	ctx context.Context, query string, startAt, maxResults int,
) (*ProjectSearchResult, error) {
	params := url.Values{}
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	if query != "" {
		params.Set("query", query)
	}
	var result ProjectSearchResult
	if err := a.client.Get(ctx, a.path("project", "search"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *CloudAPI) GetProject(ctx context.Context, key string) (*Project, error) {
	var project Project
	if err := a.client.Get(ctx, a.path("project", key), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (a *CloudAPI) ProjectStatuses(ctx context.Context, key string) ([]ProjectStatuses, error) {
	var statuses []ProjectStatuses
	if err := a.client.Get(ctx, a.path("project", key, "statuses"), nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (a *CloudAPI) Statuses(ctx context.Context) ([]Status, error) {
	var statuses []Status
	if err := a.client.Get(ctx, a.path("status"), nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (a *CloudAPI) IssueTypes(ctx context.Context) ([]IssueType, error) {
	var types []IssueType
	if err := a.client.Get(ctx, a.path("issuetype"), nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

// CreateMeta returns the creatable fields for one (project, issue type)
// pair.
func (a *CloudAPI) CreateMeta(
	ctx context.Context, projectKey, issueTypeID string,
) (*CreateMeta, error) {
	var meta CreateMeta
	err := a.client.Get(
		ctx,
		a.path("issue", "createmeta", projectKey, "issuetypes", issueTypeID),
		nil, &meta,
	)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (a *CloudAPI) SearchUsers(
	ctx context.Context, query string, maxResults int,
) ([]User, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	var users []User
	if err := a.client.Get(ctx, a.path("user", "search"), params, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *CloudAPI) UsersAssignableToIssue(
	ctx context.Context, issueKey, query string, maxResults int,
) ([]User, error) {
	params := url.Values{}
	params.Set("issueKey", issueKey)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if query != "" {
		params.Set("query", query)
	}
	var users []User
	if err := a.client.Get(ctx, a.path("user", "assignable", "search"), params, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *CloudAPI) UsersAssignableToProjects(
	ctx context.Context, projectKeys []string, maxResults int,
) ([]User, error) {
	params := url.Values{}
	params.Set("projectKeys", strings.Join(projectKeys, ","))
	params.Set("maxResults", strconv.Itoa(maxResults))
	var users []User
	if err := a.client.Get(ctx, a.path("user", "assignable", "multiProjectSearch"), params, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *CloudAPI) Groups(ctx context.Context) (*GroupList, error) {
	var groups GroupList
	if err := a.client.Get(ctx, a.path("group", "bulk"), nil, &groups); err != nil {
		return nil, err
	}
	return &groups, nil
}

// GroupMembers returns one page of active users in a group. Cloud
// identifies groups by groupId.
func (a *CloudAPI) GroupMembers(
	ctx context.Context, group string, startAt, maxResults int,
) (*GroupMembers, error) {
	params := url.Values{}
	params.Set("groupId", group)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	var members GroupMembers
	if err := a.client.Get(ctx, a.path("group", "member"), params, &members); err != nil {
		return nil, err
	}
	return &members, nil
}

// GetIssue fetches an issue with its edit metadata expanded.
func (a *CloudAPI) GetIssue(ctx context.Context, key string) (*Issue, error) {
	params := url.Values{}
	params.Set("expand", "editmeta")
	var issue Issue
	if err := a.client.Get(ctx, a.path("issue", key), params, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// SearchIssues runs a JQL search using the token-paginated endpoint.
// Pass the NextPageToken from the previous page to continue; tokens
// only move forward.
func (a *CloudAPI) SearchIssues(
	ctx context.Context, jql string, maxResults int, pageToken string, fields []string,
) (*SearchResult, error) {
	body := map[string]interface{}{
		"jql":        jql,
		"maxResults": maxResults,
	}
	if pageToken != "" {
		body["nextPageToken"] = pageToken
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	var result SearchResult
	if err := a.client.Post(ctx, a.path("search", "jql"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchIssuesByPage jumps to a numbered page of results. The token
// endpoint cannot seek, so Cloud does not support this.
func (a *CloudAPI) SearchIssuesByPage(
	ctx context.Context, jql string, page, pageSize int, fields []string,
) (*SearchResult, error) {
	return nil, fmt.Errorf("page-number search: %w", ErrNotImplemented)
}

// ApproximateCount returns a fast, possibly stale match count for a JQL
// expression.
func (a *CloudAPI) ApproximateCount(ctx context.Context, jql string) (int64, error) {
	body := map[string]interface{}{"jql": jql}
	var count ApproximateCount
	if err := a.client.Post(ctx, a.path("search", "approximate-count"), body, &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

func (a *CloudAPI) CreateIssue(
	ctx context.Context, fields map[string]interface{},
) (*CreatedIssue, error) {
	body := map[string]interface{}{"fields": fields}
	var created CreatedIssue
	if err := a.client.Post(ctx, a.path("issue"), body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *CloudAPI) UpdateIssue(
	ctx context.Context, issueKey string, fields map[string]interface{}, notifyUsers bool,
) error {
	params := url.Values{}
	params.Set("notifyUsers", strconv.FormatBool(notifyUsers))
	body := map[string]interface{}{"fields": fields}
	return a.client.Put(ctx, a.path("issue", issueKey), params, body, nil)
}

func (a *CloudAPI) EditMeta(ctx context.Context, issueKey string) (*EditMeta, error) {
	var meta EditMeta
	if err := a.client.Get(ctx, a.path("issue", issueKey, "editmeta"), nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (a *CloudAPI) Comments(
	ctx context.Context, issueKey string, startAt, maxResults int,
) (*CommentPage, error) {
	params := url.Values{}
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("orderBy", "-created")
	var page CommentPage
	if err := a.client.Get(ctx, a.path("issue", issueKey, "comment"), params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *CloudAPI) GetComment(
	ctx context.Context, issueKey, commentID string,
) (*Comment, error) {
	var comment Comment
	if err := a.client.Get(ctx, a.path("issue", issueKey, "comment", commentID), nil, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// AddComment posts a comment. v3 wraps the text in an ADF document.
func (a *CloudAPI) AddComment(
	ctx context.Context, issueKey, text string,
) (*Comment, error) {
	body := map[string]interface{}{"body": BuildADF(text)}
	var comment Comment
	if err := a.client.Post(ctx, a.path("issue", issueKey, "comment"), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (a *CloudAPI) DeleteComment(ctx context.Context, issueKey, commentID string) error {
	return a.client.Delete(ctx, a.path("issue", issueKey, "comment", commentID))
}

func (a *CloudAPI) Transitions(ctx context.Context, issueKey string) ([]Transition, error) {
	var list TransitionList
	if err := a.client.Get(ctx, a.path("issue", issueKey, "transitions"), nil, &list); err != nil {
		return nil, err
	}
	return list.Transitions, nil
}

func (a *CloudAPI) ApplyTransition(ctx context.Context, issueKey, transitionID string) error {
	body := map[string]interface{}{
		"transition": map[string]string{"id": transitionID},
	}
	return a.client.Post(ctx, a.path("issue", issueKey, "transitions"), body, nil)
}

func (a *CloudAPI) IssueLinkTypes(ctx context.Context) ([]IssueLinkType, error) {
	var list IssueLinkTypeList
	if err := a.client.Get(ctx, a.path("issueLinkType"), nil, &list); err != nil {
		return nil, err
	}
	return list.IssueLinkTypes, nil
}

func (a *CloudAPI) CreateIssueLink(
	ctx context.Context, linkTypeName, inwardKey, outwardKey string,
) error {
	body := map[string]interface{}{
		"type":         map[string]string{"name": linkTypeName},
		"inwardIssue":  map[string]string{"key": inwardKey},
		"outwardIssue": map[string]string{"key": outwardKey},
	}
	return a.client.Post(ctx, a.path("issueLink"), body, nil)
}

func (a *CloudAPI) DeleteIssueLink(ctx context.Context, linkID string) error {
	return a.client.Delete(ctx, a.path("issueLink", linkID))
}

func (a *CloudAPI) RemoteLinks(ctx context.Context, issueKey string) ([]RemoteLink, error) {
	var links []RemoteLink
	if err := a.client.Get(ctx, a.path("issue", issueKey, "remotelink"), nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (a *CloudAPI) CreateRemoteLink(
	ctx context.Context, issueKey, linkURL, title string,
) (*RemoteLink, error) {
	body := map[string]interface{}{
		"object": map[string]string{"url": linkURL, "title": title},
	}
	var link RemoteLink
	if err := a.client.Post(ctx, a.path("issue", issueKey, "remotelink"), body, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (a *CloudAPI) DeleteRemoteLink(
	ctx context.Context, issueKey string, linkID int64,
) error {
	return a.client.Delete(
		ctx,
		a.path("issue", issueKey, "remotelink", strconv.FormatInt(linkID, 10)),
	)
}

func (a *CloudAPI) AddAttachment(
	ctx context.Context, issueKey, fileName string, content io.Reader,
) ([]Attachment, error) {
	var attachments []Attachment
	err := a.client.Upload(
		ctx,
		a.path("issue", issueKey, "attachments"),
		"file", fileName, content, &attachments,
	)
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (a *CloudAPI) DeleteAttachment(ctx context.Context, attachmentID string) error {
	return a.client.Delete(ctx, a.path("attachment", attachmentID))
}

func (a *CloudAPI) Worklog(ctx context.Context, issueKey string) (*WorklogPage, error) {
	var page WorklogPage
	if err := a.client.Get(ctx, a.path("issue", issueKey, "worklog"), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *CloudAPI) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := a.client.Get(ctx, a.path("serverInfo"), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (a *CloudAPI) Myself(ctx context.Context) (*User, error) {
	var me User
	if err := a.client.Get(ctx, a.path("myself"), nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// RichText wraps plain text in an ADF document, the description shape
// v3 expects.
func (a *CloudAPI) RichText(text string) interface{} {
	return BuildADF(text)
}
