package controller

import (
	"encoding/json"
	"time"

	"github.com/whyisdifficult/jiratui-sub000/internal/fields"
	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
)

// workItemFromIssue normalizes a raw issue into the display model,
// independent of which API variant produced it. sprintFieldKey is the
// configured sprint custom field ("" disables sprint extraction).
func workItemFromIssue(issue *jira.Issue, sprintFieldKey string) model.WorkItem {
	f := issue.Fields

	item := model.WorkItem{
		ID:          issue.ID,
		Key:         issue.Key,
		Summary:     f.Summary,
		Description: jira.RenderRichText(f.Description),
		Labels:      f.Labels,
		DueDate:     f.DueDate,
		CreatedAt:   parseJiraTime(f.Created),
		UpdatedAt:   parseJiraTime(f.Updated),
	}

	if f.Status != nil {
		item.Status = f.Status.Name
		if f.Status.StatusCategory != nil {
			item.StatusCategory = f.Status.StatusCategory.Key
		}
	}
	if f.IssueType != nil {
		item.IssueType = f.IssueType.Name
	}
	if f.Project != nil {
		item.ProjectKey = f.Project.Key
	}
	if f.Priority != nil {
		item.Priority = f.Priority.Name
		item.PriorityID = f.Priority.ID
	}
	if f.Assignee != nil {
		item.Assignee = f.Assignee.DisplayName
		item.AssigneeID = f.Assignee.Identifier()
	}
	if f.Reporter != nil {
		item.Reporter = f.Reporter.DisplayName
	}
	if f.Resolution != nil {
		item.Resolution = f.Resolution.Name
	}
	if f.Parent != nil {
		item.ParentKey = f.Parent.Key
	}
	if f.TimeTrack != nil {
		item.TimeSpent = f.TimeTrack.TimeSpent
		item.OriginalEstimate = f.TimeTrack.OriginalEstimate
	}

	if f.Comment != nil {
		item.Comments = commentViews(f.Comment.Comments)
	}
	item.Related = relatedItems(f.IssueLinks)
	for _, attachment := range f.Attachments {
		item.Attachments = append(item.Attachments, attachmentView(attachment))
	}
	if f.Worklog != nil {
		for _, entry := range f.Worklog.Worklogs {
			item.Worklog = append(item.Worklog, worklogView(entry))
		}
	}

	if sprintFieldKey != "" {
		item.Sprint = sprintName(issue.RawFields[sprintFieldKey])
	}
	item.CustomFields = fields.CustomFieldValues(issue)

	return item
}

func commentViews(comments []jira.Comment) []model.CommentView {
	views := make([]model.CommentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, commentView(comment))
	}
	return views
}

func commentView(comment jira.Comment) model.CommentView {
	view := model.CommentView{
		ID:        comment.ID,
		Body:      jira.RenderRichText(comment.Body),
		CreatedAt: parseJiraTime(comment.Created),
	}
	if comment.Author != nil {
		view.Author = comment.Author.DisplayName
	}
	return view
}

// relatedItems flattens issue links into directional entries: the
// relation text depends on which end the current issue occupies.
func relatedItems(links []jira.IssueLink) []model.RelatedItem {
	var related []model.RelatedItem
	for _, link := range links {
		target := link.OutwardIssue
		relation := link.Type.Outward
		if target == nil {
			target = link.InwardIssue
			relation = link.Type.Inward
		}
		if target == nil {
			continue
		}
		item := model.RelatedItem{
			LinkID:   link.ID,
			Relation: relation,
			Key:      target.Key,
			Summary:  target.Fields.Summary,
		}
		if target.Fields.Status != nil {
			item.Status = target.Fields.Status.Name
		}
		related = append(related, item)
	}
	return related
}

func attachmentView(attachment jira.Attachment) model.AttachmentView {
	view := model.AttachmentView{
		ID:        attachment.ID,
		Filename:  attachment.Filename,
		Size:      attachment.Size,
		CreatedAt: parseJiraTime(attachment.Created),
	}
	if attachment.Author != nil {
		view.Author = attachment.Author.DisplayName
	}
	return view
}

func worklogView(entry jira.Worklog) model.WorklogView {
	view := model.WorklogView{
		ID:        entry.ID,
		TimeSpent: entry.TimeSpent,
		StartedAt: parseJiraTime(entry.Started),
	}
	if entry.Author != nil {
		view.Author = entry.Author.DisplayName
	}
	return view
}

// sprintName digs the active (else last) sprint name out of the sprint
// custom field, which Jira serializes as a list of sprint objects.
func sprintName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var sprints []struct {
		Name  string `json:"name"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(raw, &sprints); err != nil || len(sprints) == 0 {
		return ""
	}
	for _, sprint := range sprints {
		if sprint.State == "active" {
			return sprint.Name
		}
	}
	return sprints[len(sprints)-1].Name
}

// parseJiraTime parses Jira's timestamp variants, returning the zero
// time when none match.
func parseJiraTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
		time.RFC3339,
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
