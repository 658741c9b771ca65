package jira

import "encoding/json"

// ErrorResponse is Jira's standard error envelope on non-2xx responses.
type ErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// Project is a Jira project.
type Project struct {
	ID         string     `json:"id"`
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	TypeKey    string     `json:"projectTypeKey"`
	Simplified bool       `json:"simplified"`
	AvatarUrls AvatarUrls `json:"avatarUrls"`
}

// AvatarUrls holds the avatar URL set Jira attaches to users and projects.
type AvatarUrls struct {
	Size48 string `json:"48x48"`
	Size24 string `json:"24x24"`
	Size16 string `json:"16x16"`
	Size32 string `json:"32x32"`
}

// ProjectSearchResult is a page of projects from the paginated project
// search endpoint.
type ProjectSearchResult struct {
	Self       string    `json:"self"`
	MaxResults int       `json:"maxResults"`
	StartAt    int       `json:"startAt"`
	Total      int       `json:"total"`
	IsLast     bool      `json:"isLast"`
	Values     []Project `json:"values"`
}

// Status is a Jira workflow status.
type Status struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	StatusCategory *StatusCategory `json:"statusCategory,omitempty"`
}

// StatusCategory groups statuses into to-do / in-progress / done buckets.
type StatusCategory struct {
	ID   int    `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ProjectStatuses pairs an issue type with the statuses its workflow allows.
type ProjectStatuses struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Subtask  bool     `json:"subtask"`
	Statuses []Status `json:"statuses"`
}

// IssueType is a Jira issue type (Task, Bug, Epic, ...).
type IssueType struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Subtask        bool   `json:"subtask"`
	HierarchyLevel int    `json:"hierarchyLevel"`
	IconURL        string `json:"iconUrl"`
}

// User is a Jira user. Cloud identifies users by accountId; Data Center
// by name/key. Both shapes decode into this struct.
type User struct {
	AccountID    string     `json:"accountId,omitempty"`
	Name         string     `json:"name,omitempty"`
	Key          string     `json:"key,omitempty"`
	DisplayName  string     `json:"displayName"`
	EmailAddress string     `json:"emailAddress,omitempty"`
	Active       bool       `json:"active"`
	AccountType  string     `json:"accountType,omitempty"`
	AvatarUrls   AvatarUrls `json:"avatarUrls"`
}

// Identifier returns the stable identifier for the user: accountId on
// Cloud, name on Data Center.
func (u User) Identifier() string {
	if u.AccountID != "" {
		return u.AccountID
	}
	return u.Name
}

// Group is a Jira user group.
type Group struct {
	GroupID string `json:"groupId,omitempty"`
	Name    string `json:"name"`
}

// GroupList is the response of the bulk group endpoint.
type GroupList struct {
	MaxResults int     `json:"maxResults"`
	StartAt    int     `json:"startAt"`
	Total      int     `json:"total"`
	IsLast     bool    `json:"isLast"`
	Values     []Group `json:"values"`
}

// GroupMembers is a page of users belonging to a group.
type GroupMembers struct {
	MaxResults int    `json:"maxResults"`
	StartAt    int    `json:"startAt"`
	Total      int    `json:"total"`
	IsLast     bool   `json:"isLast"`
	Values     []User `json:"values"`
}

// Priority is a Jira priority.
type Priority struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Resolution is a Jira resolution.
type Resolution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TimeTracking is the time-tracking block on an issue.
type TimeTracking struct {
	OriginalEstimate  string `json:"originalEstimate,omitempty"`
	RemainingEstimate string `json:"remainingEstimate,omitempty"`
	TimeSpent         string `json:"timeSpent,omitempty"`
}

// IssueFields is the typed subset of issue fields the application reads.
// Everything else (custom fields in particular) stays available through
// Issue.RawFields.
type IssueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description,omitempty"`
	Status      *Status         `json:"status,omitempty"`
	Assignee    *User           `json:"assignee,omitempty"`
	Reporter    *User           `json:"reporter,omitempty"`
	Creator     *User           `json:"creator,omitempty"`
	IssueType   *IssueType      `json:"issuetype,omitempty"`
	Project     *Project        `json:"project,omitempty"`
	Priority    *Priority       `json:"priority,omitempty"`
	Resolution  *Resolution     `json:"resolution,omitempty"`
	Labels      []string        `json:"labels,omitempty"`
	DueDate     string          `json:"duedate,omitempty"`
	Created     string          `json:"created,omitempty"`
	Updated     string          `json:"updated,omitempty"`
	Parent      *IssueRef       `json:"parent,omitempty"`
	TimeTrack   *TimeTracking   `json:"timetracking,omitempty"`
	Comment     *CommentPage    `json:"comment,omitempty"`
	IssueLinks  []IssueLink     `json:"issuelinks,omitempty"`
	Attachments []Attachment    `json:"attachment,omitempty"`
	Worklog     *WorklogPage    `json:"worklog,omitempty"`
}

// IssueRef is a lightweight reference to another issue (parents, links).
type IssueRef struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary   string     `json:"summary"`
		Status    *Status    `json:"status,omitempty"`
		IssueType *IssueType `json:"issuetype,omitempty"`
		Priority  *Priority  `json:"priority,omitempty"`
	} `json:"fields"`
}

// Issue is a Jira issue. Decoding keeps both the typed fields and the
// raw field map, so custom fields identified at runtime (via editmeta)
// remain reachable.
type Issue struct {
	ID        string
	Key       string
	Fields    IssueFields
	RawFields map[string]json.RawMessage
	EditMeta  *EditMeta
}

// UnmarshalJSON decodes the issue twice: once into the typed field
// struct and once into the raw map.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID       string                     `json:"id"`
		Key      string                     `json:"key"`
		Fields   json.RawMessage            `json:"fields"`
		EditMeta *EditMeta                  `json:"editmeta,omitempty"`
		Raw      map[string]json.RawMessage `json:"-"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	i.ID = wire.ID
	i.Key = wire.Key
	i.EditMeta = wire.EditMeta
	if len(wire.Fields) > 0 {
		if err := json.Unmarshal(wire.Fields, &i.Fields); err != nil {
			return err
		}
		if err := json.Unmarshal(wire.Fields, &i.RawFields); err != nil {
			return err
		}
	}
	return nil
}

// EditMeta describes which fields may be edited on an issue and how.
type EditMeta struct {
	Fields map[string]FieldMeta `json:"fields"`
}

// FieldMeta is the per-field entry of an editmeta or createmeta response.
type FieldMeta struct {
	Required        bool            `json:"required"`
	Name            string          `json:"name"`
	Key             string          `json:"key"`
	Operations      []string        `json:"operations"`
	AllowedValues   []AllowedValue  `json:"allowedValues,omitempty"`
	Schema          FieldSchema     `json:"schema"`
	HasDefaultValue bool            `json:"hasDefaultValue"`
	DefaultValue    json.RawMessage `json:"defaultValue,omitempty"`
}

// SupportsSet reports whether the field accepts the "set" operation.
func (m FieldMeta) SupportsSet() bool {
	for _, op := range m.Operations {
		if op == "set" {
			return true
		}
	}
	return false
}

// FieldSchema identifies the value type of a field. Custom fields carry
// the plugin identifier in Custom.
type FieldSchema struct {
	Type     string `json:"type"`
	Items    string `json:"items,omitempty"`
	System   string `json:"system,omitempty"`
	Custom   string `json:"custom,omitempty"`
	CustomID int64  `json:"customId,omitempty"`
}

// AllowedValue is one permitted value for a constrained field. Jira
// labels these inconsistently (name vs value), so both are kept.
type AllowedValue struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
	Key   string `json:"key,omitempty"`
}

// Label returns the human-readable text for the value.
func (v AllowedValue) Label() string {
	if v.Value != "" {
		return v.Value
	}
	return v.Name
}

// CreateMeta is the response of the per-project, per-issue-type
// createmeta endpoint.
type CreateMeta struct {
	MaxResults int         `json:"maxResults"`
	StartAt    int         `json:"startAt"`
	Total      int         `json:"total"`
	Fields     []FieldMeta `json:"fields"`
}

// Comment is an issue comment. The body is kept raw: an ADF document on
// Cloud v3, a plain string on v2 and Data Center.
type Comment struct {
	ID      string          `json:"id"`
	Author  *User           `json:"author,omitempty"`
	Body    json.RawMessage `json:"body"`
	Created string          `json:"created"`
	Updated string          `json:"updated,omitempty"`
}

// CommentPage is a page of comments.
type CommentPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Comments   []Comment `json:"comments"`
}

// Transition is a workflow transition available on an issue.
type Transition struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	To        *Status `json:"to,omitempty"`
	HasScreen bool    `json:"hasScreen,omitempty"`
}

// TransitionList is the response of the transitions endpoint.
type TransitionList struct {
	Transitions []Transition `json:"transitions"`
}

// IssueLink connects two issues with a typed relationship. Exactly one
// of InwardIssue/OutwardIssue is set per direction.
type IssueLink struct {
	ID           string        `json:"id,omitempty"`
	Type         IssueLinkType `json:"type"`
	InwardIssue  *IssueRef     `json:"inwardIssue,omitempty"`
	OutwardIssue *IssueRef     `json:"outwardIssue,omitempty"`
}

// IssueLinkType names both directions of a link relationship.
type IssueLinkType struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Inward  string `json:"inward,omitempty"`
	Outward string `json:"outward,omitempty"`
}

// IssueLinkTypeList is the response of the link-types endpoint.
type IssueLinkTypeList struct {
	IssueLinkTypes []IssueLinkType `json:"issueLinkTypes"`
}

// RemoteLink is a web link attached to an issue.
type RemoteLink struct {
	ID     int64            `json:"id,omitempty"`
	Object RemoteLinkObject `json:"object"`
}

// RemoteLinkObject is the target of a remote link.
type RemoteLinkObject struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Attachment is a file attached to an issue.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Author   *User  `json:"author,omitempty"`
	Created  string `json:"created"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

// Worklog is a single worklog entry on an issue.
type Worklog struct {
	ID               string `json:"id"`
	Author           *User  `json:"author,omitempty"`
	Started          string `json:"started"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
}

// WorklogPage is a page of worklog entries.
type WorklogPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Worklogs   []Worklog `json:"worklogs"`
}

// ServerInfo describes the Jira deployment behind the base URL.
type ServerInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType"`
	ServerTitle    string `json:"serverTitle"`
}

// SearchResult normalizes the three search response shapes. The v3
// token endpoint fills NextPageToken/IsLast; the legacy v2 endpoint and
// Data Center fill StartAt/MaxResults/Total.
type SearchResult struct {
	Issues        []Issue `json:"issues"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
	IsLast        *bool   `json:"isLast,omitempty"`
	StartAt       int     `json:"startAt,omitempty"`
	MaxResults    int     `json:"maxResults,omitempty"`
	Total         int     `json:"total,omitempty"`
}

// Last reports whether this page is known to be the final one.
func (r SearchResult) Last() bool {
	if r.IsLast != nil {
		return *r.IsLast
	}
	if r.NextPageToken != "" {
		return false
	}
	if r.Total > 0 {
		return r.StartAt+len(r.Issues) >= r.Total
	}
	return true
}

// ApproximateCount is the response of the approximate-count endpoint.
type ApproximateCount struct {
	Count int64 `json:"count"`
}

// CreatedIssue is the response of a successful issue creation.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}
