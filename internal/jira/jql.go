package jira

import (
	"fmt"
	"strings"
	"time"
)

// SearchCriteria describes the pieces of an issue search the UI
// collects. BuildJQL assembles them into one JQL expression.
type SearchCriteria struct {
	// JQL is a user-supplied expression, combined verbatim with the
	// structured clauses.
	JQL string
	// IssueKey limits the search to one issue.
	IssueKey string
	// ProjectKey limits the search to one project.
	ProjectKey string
	// CreatedSince bounds issue creation time from below.
	CreatedSince time.Time
	// AssigneeID limits the search to issues assigned to one user.
	AssigneeID string
	// OrderBy is appended as an "order by" suffix unless the
	// user expression already has one.
	OrderBy string
}

// BuildJQL composes the structured criteria and the free-form user
// expression into a single JQL query. Clauses are joined with "and";
// an order-by suffix is only appended when the user expression does
// not already carry one.
func BuildJQL(criteria SearchCriteria) string {
	var clauses []string

	if criteria.IssueKey != "" {
		clauses = append(clauses, fmt.Sprintf("key = %s", criteria.IssueKey))
	}
	if criteria.ProjectKey != "" {
		clauses = append(clauses, fmt.Sprintf("project = %s", criteria.ProjectKey))
	}
	if !criteria.CreatedSince.IsZero() {
		clauses = append(clauses, fmt.Sprintf(
			"created >= %q", criteria.CreatedSince.Format("2006-01-02"),
		))
	}
	if criteria.AssigneeID != "" {
		clauses = append(clauses, fmt.Sprintf(
			"assignee = %q", criteria.AssigneeID,
		))
	}

	userJQL := strings.TrimSpace(criteria.JQL)
	if userJQL != "" {
		clauses = append(clauses, userJQL)
	}

	query := strings.Join(clauses, " and ")

	if criteria.OrderBy != "" && !containsOrderBy(userJQL) {
		query = strings.TrimSpace(query + " order by " + criteria.OrderBy)
	}
	return query
}

func containsOrderBy(jql string) bool {
	return strings.Contains(strings.ToLower(jql), "order by")
}

// EscapeJQL quotes a value for interpolation into a JQL string literal.
func EscapeJQL(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return value
}
