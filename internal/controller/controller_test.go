package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/whyisdifficult/jiratui-sub000/internal/fields"
	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
)

// fakeAPI implements the parts of jira.API a test exercises via
// function fields; calling anything else panics through the embedded
// nil interface.
type fakeAPI struct {
	jira.API

	searchProjects   func(ctx context.Context, query string, startAt, maxResults int) (*jira.ProjectSearchResult, error)
	groupMembers     func(ctx context.Context, group string, startAt, maxResults int) (*jira.GroupMembers, error)
	approximateCount func(ctx context.Context, jql string) (int64, error)
	updateIssue      func(ctx context.Context, key string, fields map[string]interface{}, notify bool) error
	createIssue      func(ctx context.Context, fields map[string]interface{}) (*jira.CreatedIssue, error)
	createMeta       func(ctx context.Context, projectKey, issueTypeID string) (*jira.CreateMeta, error)
	searchIssues     func(ctx context.Context, jql string, maxResults int, pageToken string, fields []string) (*jira.SearchResult, error)
}

func (f *fakeAPI) SearchProjects(ctx context.Context, query string, startAt, maxResults int) (*jira.ProjectSearchResult, error) {
	return f.searchProjects(ctx, query, startAt, maxResults)
}

func (f *fakeAPI) GroupMembers(ctx context.Context, group string, startAt, maxResults int) (*jira.GroupMembers, error) {
	return f.groupMembers(ctx, group, startAt, maxResults)
}

func (f *fakeAPI) ApproximateCount(ctx context.Context, jql string) (int64, error) {
	return f.approximateCount(ctx, jql)
}

func (f *fakeAPI) UpdateIssue(ctx context.Context, key string, fields map[string]interface{}, notify bool) error {
	return f.updateIssue(ctx, key, fields, notify)
}

func (f *fakeAPI) CreateIssue(ctx context.Context, fields map[string]interface{}) (*jira.CreatedIssue, error) {
	return f.createIssue(ctx, fields)
}

func (f *fakeAPI) CreateMeta(ctx context.Context, projectKey, issueTypeID string) (*jira.CreateMeta, error) {
	return f.createMeta(ctx, projectKey, issueTypeID)
}

func (f *fakeAPI) SearchIssues(ctx context.Context, jql string, maxResults int, pageToken string, fields []string) (*jira.SearchResult, error) {
	return f.searchIssues(ctx, jql, maxResults, pageToken, fields)
}

func (f *fakeAPI) RichText(text string) interface{} { return text }

func newTestController(api jira.API) *Controller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(api, logger, Options{})
}

func TestSearchProjectsAggregatesPages(t *testing.T) {
	api := &fakeAPI{
		searchProjects: func(ctx context.Context, query string, startAt, maxResults int) (*jira.ProjectSearchResult, error) {
			if startAt == 0 {
				return &jira.ProjectSearchResult{
					Values: []jira.Project{{Key: "AAA"}, {Key: "BBB"}},
					IsLast: false,
				}, nil
			}
			return &jira.ProjectSearchResult{
				Values: []jira.Project{{Key: "CCC"}},
				IsLast: true,
			}, nil
		},
	}

	resp := newTestController(api).SearchProjects(context.Background(), "")
	if !resp.Success || resp.Error != "" {
		t.Fatalf("resp = %+v", resp)
	}
	projects := resp.Result.([]jira.Project)
	if len(projects) != 3 || projects[2].Key != "CCC" {
		t.Errorf("projects = %v", projects)
	}
}

func TestSearchProjectsPartialFailure(t *testing.T) {
	api := &fakeAPI{
		searchProjects: func(ctx context.Context, query string, startAt, maxResults int) (*jira.ProjectSearchResult, error) {
			if startAt == 0 {
				return &jira.ProjectSearchResult{
					Values: []jira.Project{{Key: "AAA"}},
					IsLast: false,
				}, nil
			}
			return nil, fmt.Errorf("boom")
		},
	}

	resp := newTestController(api).SearchProjects(context.Background(), "")
	if !resp.Success {
		t.Fatal("partial failure must keep Success true")
	}
	if resp.Error == "" {
		t.Error("partial failure must surface the page error")
	}
	projects := resp.Result.([]jira.Project)
	if len(projects) != 1 || projects[0].Key != "AAA" {
		t.Errorf("partial projects = %v", projects)
	}
}

func TestListActiveUsersInGroupFilters(t *testing.T) {
	api := &fakeAPI{
		groupMembers: func(ctx context.Context, group string, startAt, maxResults int) (*jira.GroupMembers, error) {
			return &jira.GroupMembers{
				Values: []jira.User{
					{DisplayName: "Active", Active: true, EmailAddress: "a@example.com"},
					{DisplayName: "Gone", Active: false},
					{DisplayName: "NoMail", Active: true},
				},
				IsLast: true,
			}, nil
		},
	}

	ctrl := New(api, slog.New(slog.NewTextHandler(io.Discard, nil)),
		Options{IgnoreUsersWithoutEmail: true})
	resp := ctrl.ListActiveUsersInGroup(context.Background(), "dev")
	users := resp.Result.([]jira.User)
	if len(users) != 1 || users[0].DisplayName != "Active" {
		t.Errorf("users = %v", users)
	}
}

func TestCountWorkItemsNotImplementedIsZero(t *testing.T) {
	api := &fakeAPI{
		approximateCount: func(ctx context.Context, jql string) (int64, error) {
			return 0, fmt.Errorf("approximate count: %w", jira.ErrNotImplemented)
		},
	}

	resp := newTestController(api).CountWorkItems(context.Background(), jira.SearchCriteria{ProjectKey: "ABC"})
	if !resp.Success || resp.Error != "" {
		t.Fatalf("resp = %+v", resp)
	}
	if count := resp.Result.(int64); count != 0 {
		t.Errorf("count = %d", count)
	}
}

func TestCountWorkItems(t *testing.T) {
	api := &fakeAPI{
		approximateCount: func(ctx context.Context, jql string) (int64, error) {
			return 42, nil
		},
	}
	resp := newTestController(api).CountWorkItems(context.Background(), jira.SearchCriteria{})
	if count := resp.Result.(int64); count != 42 {
		t.Errorf("count = %d", count)
	}
}

func TestUpdateWorkItemRejectsNonSettableField(t *testing.T) {
	updateCalled := false
	api := &fakeAPI{
		updateIssue: func(ctx context.Context, key string, fields map[string]interface{}, notify bool) error {
			updateCalled = true
			return nil
		},
	}

	issue := &jira.Issue{
		Key: "ABC-1",
		Fields: jira.IssueFields{
			Summary:  "title",
			Priority: &jira.Priority{ID: "3"},
		},
		EditMeta: &jira.EditMeta{Fields: map[string]jira.FieldMeta{
			"summary":  {Name: "Summary", Operations: []string{"set"}},
			"priority": {Name: "Priority", Operations: []string{}},
		}},
	}

	edit := fields.Edit{Summary: "title", PriorityID: "1"}
	resp := newTestController(api).UpdateWorkItem(context.Background(), issue, edit, false)

	if resp.Success {
		t.Fatal("update must fail locally")
	}
	want := "the field Priority can not be updated for the selected work item"
	if resp.Error != want {
		t.Errorf("error = %q, want %q", resp.Error, want)
	}
	if updateCalled {
		t.Error("no network call may happen after a local rejection")
	}
}

func TestUpdateWorkItemEmptySummary(t *testing.T) {
	issue := &jira.Issue{Key: "ABC-1", Fields: jira.IssueFields{Summary: "title"}}
	resp := newTestController(&fakeAPI{}).UpdateWorkItem(
		context.Background(), issue, fields.Edit{Summary: "  "}, false)
	if resp.Success {
		t.Fatal("empty summary must be rejected")
	}
	if !strings.Contains(resp.Error, "summary") {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestUpdateWorkItemSendsOnlyChanges(t *testing.T) {
	var sent map[string]interface{}
	api := &fakeAPI{
		updateIssue: func(ctx context.Context, key string, fields map[string]interface{}, notify bool) error {
			sent = fields
			return nil
		},
	}

	issue := &jira.Issue{
		Key: "ABC-1",
		Fields: jira.IssueFields{
			Summary: "old",
			DueDate: "2025-07-01",
		},
		EditMeta: &jira.EditMeta{Fields: map[string]jira.FieldMeta{
			"summary": {Name: "Summary", Operations: []string{"set"}},
			"duedate": {Name: "Due date", Operations: []string{"set"}},
		}},
	}

	edit := fields.Edit{Summary: "new", DueDate: "2025-07-01"}
	resp := newTestController(api).UpdateWorkItem(context.Background(), issue, edit, false)
	if !resp.Success {
		t.Fatalf("resp = %+v", resp)
	}
	if len(sent) != 1 || sent["summary"] != "new" {
		t.Errorf("sent = %v", sent)
	}
}

func TestCreateWorkItemRequiresSummary(t *testing.T) {
	resp := newTestController(&fakeAPI{}).CreateWorkItem(
		context.Background(), "ABC", "10001", "  ", "", nil)
	if resp.Success {
		t.Fatal("empty summary must be rejected")
	}
}

func TestCreateWorkItemPayload(t *testing.T) {
	var sent map[string]interface{}
	api := &fakeAPI{
		createIssue: func(ctx context.Context, fields map[string]interface{}) (*jira.CreatedIssue, error) {
			sent = fields
			return &jira.CreatedIssue{ID: "1", Key: "ABC-9"}, nil
		},
	}

	resp := newTestController(api).CreateWorkItem(
		context.Background(), "ABC", "10001", "a bug", "details", nil)
	if !resp.Success {
		t.Fatalf("resp = %+v", resp)
	}
	project := sent["project"].(map[string]string)
	if project["key"] != "ABC" {
		t.Errorf("project = %v", sent["project"])
	}
	if sent["summary"] != "a bug" || sent["description"] != "details" {
		t.Errorf("payload = %v", sent)
	}
	if resp.Result.(*jira.CreatedIssue).Key != "ABC-9" {
		t.Errorf("result = %v", resp.Result)
	}
}

func TestRequiredFieldsMemoized(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		createMeta: func(ctx context.Context, projectKey, issueTypeID string) (*jira.CreateMeta, error) {
			calls++
			return &jira.CreateMeta{Fields: []jira.FieldMeta{
				{Key: "summary", Name: "Summary", Required: true},
				{Key: "labels", Name: "Labels", Required: false},
			}}, nil
		},
	}

	ctrl := newTestController(api)
	for i := 0; i < 3; i++ {
		resp := ctrl.RequiredFields(context.Background(), "ABC", "10001")
		required := resp.Result.([]jira.FieldMeta)
		if len(required) != 1 || required[0].Key != "summary" {
			t.Fatalf("required = %v", required)
		}
	}
	if calls != 1 {
		t.Errorf("createmeta calls = %d, want 1 (memoized)", calls)
	}
}

func TestSearchWorkItemsNormalizesPage(t *testing.T) {
	last := false
	api := &fakeAPI{
		searchIssues: func(ctx context.Context, jql string, maxResults int, pageToken string, fieldList []string) (*jira.SearchResult, error) {
			if !strings.Contains(jql, "project = ABC") {
				t.Errorf("jql = %q", jql)
			}
			issue := jira.Issue{}
			raw := `{"id":"1","key":"ABC-1","fields":{"summary":"a","status":{"name":"Open"}}}`
			if err := json.Unmarshal([]byte(raw), &issue); err != nil {
				t.Fatalf("fixture: %v", err)
			}
			return &jira.SearchResult{
				Issues:        []jira.Issue{issue},
				NextPageToken: "tok-2",
				IsLast:        &last,
			}, nil
		},
	}

	resp := newTestController(api).SearchWorkItems(
		context.Background(), jira.SearchCriteria{ProjectKey: "ABC"}, "")
	page := resp.Result.(model.SearchPage)
	if len(page.Items) != 1 || page.Items[0].Key != "ABC-1" || page.Items[0].Status != "Open" {
		t.Errorf("items = %v", page.Items)
	}
	if page.NextPageToken != "tok-2" || page.IsLast == nil || *page.IsLast {
		t.Errorf("pagination = %+v", page)
	}
}

func TestAddCommentRejectsEmpty(t *testing.T) {
	resp := newTestController(&fakeAPI{}).AddComment(context.Background(), "ABC-1", "   ")
	if resp.Success {
		t.Fatal("blank comment must be rejected")
	}
}

func TestLinkWorkItemsRejectsSelfLink(t *testing.T) {
	resp := newTestController(&fakeAPI{}).LinkWorkItems(
		context.Background(), "Blocks", "ABC-1", "ABC-1")
	if resp.Success {
		t.Fatal("self link must be rejected")
	}
}
