package fields

import (
	"strings"

	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
)

// Edit collects the values a user submitted from the edit form. Empty
// strings mean "unchanged" except where noted.
type Edit struct {
	Summary     string
	Description string
	PriorityID  string
	AssigneeID  string
	ParentKey   string
	DueDate     string
	Labels      []string
	// ClearAssignee unassigns the issue; AssigneeID is ignored.
	ClearAssignee bool
	// Custom holds raw values for custom fields, keyed by field key.
	Custom map[string]interface{}
}

// Changes compares an edit against the issue's current state and
// returns only the fields whose values actually changed, shaped for
// the update endpoint. Rich-text description values are converted by
// the caller's API variant.
func Changes(issue *jira.Issue, edit Edit, richText func(string) interface{}) map[string]interface{} {
	changed := map[string]interface{}{}
	if issue == nil {
		return changed
	}
	current := issue.Fields

	if edit.Summary != "" && edit.Summary != current.Summary {
		changed["summary"] = edit.Summary
	}

	if edit.Description != "" {
		if edit.Description != jira.RenderRichText(current.Description) {
			changed["description"] = richText(edit.Description)
		}
	}

	if edit.PriorityID != "" {
		if current.Priority == nil || current.Priority.ID != edit.PriorityID {
			changed["priority"] = map[string]string{"id": edit.PriorityID}
		}
	}

	switch {
	case edit.ClearAssignee:
		if current.Assignee != nil {
			changed["assignee"] = nil
		}
	case edit.AssigneeID != "":
		if current.Assignee == nil || current.Assignee.Identifier() != edit.AssigneeID {
			changed["assignee"] = assigneeValue(edit.AssigneeID)
		}
	}

	if edit.ParentKey != "" {
		if current.Parent == nil || !strings.EqualFold(current.Parent.Key, edit.ParentKey) {
			changed["parent"] = map[string]string{"key": edit.ParentKey}
		}
	}

	if edit.DueDate != "" && edit.DueDate != current.DueDate {
		changed["duedate"] = edit.DueDate
	}

	if edit.Labels != nil && !sameLabels(edit.Labels, current.Labels) {
		changed["labels"] = edit.Labels
	}

	for key, value := range edit.Custom {
		changed[key] = value
	}
	return changed
}

// assigneeValue shapes the assignee payload. Cloud account ids are long
// opaque strings; short values are Data Center usernames.
func assigneeValue(id string) map[string]string {
	if strings.ContainsAny(id, ":") || len(id) >= 24 {
		return map[string]string{"accountId": id}
	}
	return map[string]string{"name": id}
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]bool{}
	for _, label := range b {
		seen[label] = true
	}
	for _, label := range a {
		if !seen[label] {
			return false
		}
	}
	return true
}
