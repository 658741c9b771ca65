package jira

import (
	"testing"
	"time"
)

func TestBuildJQLClauses(t *testing.T) {
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := BuildJQL(SearchCriteria{
		ProjectKey:   "ABC",
		CreatedSince: since,
		OrderBy:      "created desc",
	})
	want := `project = ABC and created >= "2025-06-01" order by created desc`
	if got != want {
		t.Errorf("BuildJQL = %q, want %q", got, want)
	}
}

func TestBuildJQLCombinesUserExpression(t *testing.T) {
	got := BuildJQL(SearchCriteria{
		ProjectKey: "ABC",
		JQL:        "status = Done",
	})
	want := "project = ABC and status = Done"
	if got != want {
		t.Errorf("BuildJQL = %q, want %q", got, want)
	}
}

func TestBuildJQLKeepsUserOrderBy(t *testing.T) {
	got := BuildJQL(SearchCriteria{
		JQL:     "status = Done ORDER BY updated asc",
		OrderBy: "created desc",
	})
	want := "status = Done ORDER BY updated asc"
	if got != want {
		t.Errorf("BuildJQL = %q, want %q", got, want)
	}
}

func TestBuildJQLIssueKeyAndAssignee(t *testing.T) {
	got := BuildJQL(SearchCriteria{
		IssueKey:   "ABC-42",
		AssigneeID: "5b10a2844c20165700ede21g",
	})
	want := `key = ABC-42 and assignee = "5b10a2844c20165700ede21g"`
	if got != want {
		t.Errorf("BuildJQL = %q, want %q", got, want)
	}
}

func TestBuildJQLEmpty(t *testing.T) {
	if got := BuildJQL(SearchCriteria{}); got != "" {
		t.Errorf("BuildJQL = %q, want empty", got)
	}
}

func TestEscapeJQL(t *testing.T) {
	if got := EscapeJQL(`say "hi" \ bye`); got != `say \"hi\" \\ bye` {
		t.Errorf("EscapeJQL = %q", got)
	}
}
