package model

import "time"

// WorkItem is the normalized view of a Jira issue, independent of the
// API variant that produced it. Rich-text bodies are already rendered
// to plain text and timestamps parsed.
type WorkItem struct {
	// ID is Jira's internal numeric identifier.
	ID string `json:"id"`

	// Key is the human-facing issue key (e.g. ABC-42).
	Key string `json:"key"`

	// Summary is the one-line title.
	Summary string `json:"summary"`

	// Description is the body rendered to plain text.
	Description string `json:"description"`

	// Status is the current workflow status name.
	Status string `json:"status"`

	// StatusCategory is the status bucket key (new/indeterminate/done).
	StatusCategory string `json:"status_category"`

	// IssueType is the issue type name (Task, Bug, ...).
	IssueType string `json:"issue_type"`

	// ProjectKey is the key of the owning project.
	ProjectKey string `json:"project_key"`

	// Priority is the priority name, empty when unset.
	Priority string `json:"priority"`

	// PriorityID identifies the priority for update payloads.
	PriorityID string `json:"priority_id"`

	// Assignee is the assignee's display name, empty when unassigned.
	Assignee string `json:"assignee"`

	// AssigneeID is the assignee's stable identifier.
	AssigneeID string `json:"assignee_id"`

	// Reporter is the reporter's display name.
	Reporter string `json:"reporter"`

	// Labels are the issue labels.
	Labels []string `json:"labels"`

	// ParentKey is the key of the parent issue, empty for top-level items.
	ParentKey string `json:"parent_key"`

	// Sprint is the active sprint name when the sprint custom field is
	// configured.
	Sprint string `json:"sprint"`

	// Resolution is the resolution name, empty while unresolved.
	Resolution string `json:"resolution"`

	// DueDate is the due date in YYYY-MM-DD form, empty when unset.
	DueDate string `json:"due_date"`

	// CreatedAt and UpdatedAt are the source timestamps; zero when the
	// payload omitted or mangled them.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// TimeSpent and OriginalEstimate are Jira duration strings ("3h 20m").
	TimeSpent        string `json:"time_spent"`
	OriginalEstimate string `json:"original_estimate"`

	// Comments are the item's comments, newest first.
	Comments []CommentView `json:"comments"`

	// Related are linked issues, both directions.
	Related []RelatedItem `json:"related"`

	// Attachments are the item's file attachments.
	Attachments []AttachmentView `json:"attachments"`

	// Worklog entries logged against the item.
	Worklog []WorklogView `json:"worklog"`

	// CustomFields maps editable custom field names to display text.
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// CommentView is a comment rendered for display.
type CommentView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// RelatedItem is one end of an issue link, seen from the current item.
type RelatedItem struct {
	// LinkID identifies the link itself, for deletion.
	LinkID string `json:"link_id"`

	// Relation is the directional description ("blocks", "is blocked by").
	Relation string `json:"relation"`

	Key     string `json:"key"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
}

// AttachmentView is an attachment rendered for display.
type AttachmentView struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Author    string    `json:"author"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// WorklogView is one worklog entry rendered for display.
type WorklogView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	TimeSpent string    `json:"time_spent"`
	StartedAt time.Time `json:"started_at"`
}

// SearchPage is one page of search results with normalized pagination
// state. NextPageToken and IsLast come from token-paginated variants;
// StartAt/Total from offset-paginated ones.
type SearchPage struct {
	Items         []WorkItem `json:"items"`
	NextPageToken string     `json:"next_page_token,omitempty"`
	IsLast        *bool      `json:"is_last,omitempty"`
	StartAt       int        `json:"start_at,omitempty"`
	Total         int        `json:"total,omitempty"`
}
