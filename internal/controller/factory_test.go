package controller

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
)

func issueFromJSON(t *testing.T, raw string) *jira.Issue {
	t.Helper()
	var issue jira.Issue
	if err := json.Unmarshal([]byte(raw), &issue); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return &issue
}

func TestWorkItemFromIssue(t *testing.T) {
	issue := issueFromJSON(t, `{
	  "id": "10100",
	  "key": "ABC-7",
	  "fields": {
	    "summary": "Fix login flow",
	    "description": {"type":"doc","version":1,"content":[
	      {"type":"paragraph","content":[{"type":"text","text":"Users can not log in."}]}]},
	    "status": {"name":"In Progress","statusCategory":{"key":"indeterminate"}},
	    "issuetype": {"name":"Bug"},
	    "project": {"key":"ABC"},
	    "priority": {"id":"2","name":"High"},
	    "assignee": {"accountId":"acct-1","displayName":"Ada"},
	    "reporter": {"displayName":"Grace"},
	    "labels": ["auth"],
	    "duedate": "2025-07-15",
	    "created": "2025-06-01T10:30:00.000+0200",
	    "parent": {"key":"ABC-1","fields":{"summary":"Auth epic"}},
	    "comment": {"comments":[
	      {"id":"1","author":{"displayName":"Grace"},"body":"ping","created":"2025-06-02T09:00:00.000+0200"}]},
	    "issuelinks": [
	      {"id":"501","type":{"name":"Blocks","inward":"is blocked by","outward":"blocks"},
	       "outwardIssue":{"key":"ABC-9","fields":{"summary":"Deploy","status":{"name":"Open"}}}},
	      {"id":"502","type":{"name":"Blocks","inward":"is blocked by","outward":"blocks"},
	       "inwardIssue":{"key":"ABC-3","fields":{"summary":"Schema","status":{"name":"Done"}}}}
	    ],
	    "customfield_10020": [{"name":"Sprint 12","state":"active"}]
	  }}`)

	item := workItemFromIssue(issue, "customfield_10020")

	if item.Key != "ABC-7" || item.Summary != "Fix login flow" {
		t.Errorf("identity = %q %q", item.Key, item.Summary)
	}
	if item.Description != "Users can not log in." {
		t.Errorf("description = %q", item.Description)
	}
	if item.Status != "In Progress" || item.StatusCategory != "indeterminate" {
		t.Errorf("status = %q/%q", item.Status, item.StatusCategory)
	}
	if item.Assignee != "Ada" || item.AssigneeID != "acct-1" {
		t.Errorf("assignee = %q/%q", item.Assignee, item.AssigneeID)
	}
	if item.ParentKey != "ABC-1" {
		t.Errorf("parent = %q", item.ParentKey)
	}
	if item.Sprint != "Sprint 12" {
		t.Errorf("sprint = %q", item.Sprint)
	}
	if item.CreatedAt.IsZero() || item.CreatedAt.UTC().Hour() != 8 {
		t.Errorf("created = %v", item.CreatedAt)
	}
	if len(item.Comments) != 1 || item.Comments[0].Body != "ping" {
		t.Errorf("comments = %v", item.Comments)
	}

	if len(item.Related) != 2 {
		t.Fatalf("related = %v", item.Related)
	}
	if item.Related[0].Relation != "blocks" || item.Related[0].Key != "ABC-9" {
		t.Errorf("outward link = %+v", item.Related[0])
	}
	if item.Related[1].Relation != "is blocked by" || item.Related[1].Key != "ABC-3" {
		t.Errorf("inward link = %+v", item.Related[1])
	}
}

func TestWorkItemPlainStringDescription(t *testing.T) {
	issue := issueFromJSON(t, `{"id":"1","key":"ABC-1","fields":{
	  "summary":"a","description":"plain body"}}`)
	item := workItemFromIssue(issue, "")
	if item.Description != "plain body" {
		t.Errorf("description = %q", item.Description)
	}
}

func TestSprintNameFallsBackToLast(t *testing.T) {
	raw := json.RawMessage(`[{"name":"Sprint 1","state":"closed"},{"name":"Sprint 2","state":"closed"}]`)
	if got := sprintName(raw); got != "Sprint 2" {
		t.Errorf("sprintName = %q", got)
	}
	if got := sprintName(nil); got != "" {
		t.Errorf("sprintName(nil) = %q", got)
	}
}

func TestParseJiraTime(t *testing.T) {
	cases := []struct {
		in   string
		zero bool
	}{
		{"2025-06-01T10:30:00.000+0200", false},
		{"2025-06-01T10:30:00+0200", false},
		{"2025-06-01T10:30:00Z", false},
		{"2025-06-01", false},
		{"garbage", true},
		{"", true},
	}
	for _, tc := range cases {
		got := parseJiraTime(tc.in)
		if got.IsZero() != tc.zero {
			t.Errorf("parseJiraTime(%q) = %v", tc.in, got)
		}
	}
	want := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	if got := parseJiraTime("2025-06-01T10:30:00.000+0200"); !got.UTC().Equal(want) {
		t.Errorf("parseJiraTime = %v, want %v", got.UTC(), want)
	}
}
