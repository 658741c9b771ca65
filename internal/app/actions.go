package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/model"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui/detail"
	"github.com/whyisdifficult/jiratui-sub000/internal/ui/itemform"
)

// editIssueLoadedMsg carries the raw issue fetched for the edit form.
type editIssueLoadedMsg struct {
	issue *jira.Issue
	err   string
}

// createOptionsLoadedMsg carries the selectors for the create form.
type createOptionsLoadedMsg struct {
	projects   []jira.Project
	issueTypes []jira.IssueType
	err        string
}

// transitionsLoadedMsg carries the available workflow transitions.
type transitionsLoadedMsg struct {
	transitions []jira.Transition
	err         string
}

// operationDoneMsg reports the outcome of a write operation and which
// views need reloading.
type operationDoneMsg struct {
	status     string
	err        string
	reloadItem string
	reloadList bool
}

// loadWorkItem fetches a work item for the detail view.
func (m Model) loadWorkItem(key string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.GetWorkItem(context.Background(), key)
		if !resp.Success {
			return detail.ItemLoadedMsg{Err: resp.Error}
		}
		item, ok := resp.Result.(model.WorkItem)
		if !ok {
			return detail.ItemLoadedMsg{Err: "unexpected result shape"}
		}
		return detail.ItemLoadedMsg{Item: &item}
	}
}

// loadEditIssue fetches the raw issue with editmeta for the edit form.
func (m Model) loadEditIssue(key string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.WorkItemForEdit(context.Background(), key)
		if !resp.Success {
			return editIssueLoadedMsg{err: resp.Error}
		}
		issue, ok := resp.Result.(*jira.Issue)
		if !ok {
			return editIssueLoadedMsg{err: "unexpected result shape"}
		}
		return editIssueLoadedMsg{issue: issue}
	}
}

// loadCreateOptions fetches projects and issue types for the create
// form selectors.
func (m Model) loadCreateOptions() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.SearchProjects(context.Background(), "")
		if !resp.Success {
			return createOptionsLoadedMsg{err: resp.Error}
		}
		projects, _ := resp.Result.([]jira.Project)

		resp = ctrl.IssueTypes(context.Background())
		if !resp.Success {
			return createOptionsLoadedMsg{err: resp.Error}
		}
		issueTypes, _ := resp.Result.([]jira.IssueType)

		return createOptionsLoadedMsg{projects: projects, issueTypes: issueTypes}
	}
}

// loadTransitions fetches the transitions available on a work item.
func (m Model) loadTransitions(key string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.Transitions(context.Background(), key)
		if !resp.Success {
			return transitionsLoadedMsg{err: resp.Error}
		}
		transitions, _ := resp.Result.([]jira.Transition)
		return transitionsLoadedMsg{transitions: transitions}
	}
}

// applyEdit submits an edit form result to the controller.
func (m Model) applyEdit(msg itemform.EditSubmittedMsg) tea.Cmd {
	ctrl := m.ctrl
	issue := m.editIssue
	return func() tea.Msg {
		resp := ctrl.UpdateWorkItem(context.Background(), issue, msg.Edit, true)
		if !resp.Success {
			return operationDoneMsg{err: resp.Error}
		}
		return operationDoneMsg{
			status:     "Updated " + msg.Key,
			reloadItem: msg.Key,
			reloadList: true,
		}
	}
}

// createItem submits the create form result to the controller.
func (m Model) createItem(msg itemform.CreateSubmittedMsg) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.CreateWorkItem(
			context.Background(),
			msg.ProjectKey, msg.IssueTypeID,
			msg.Summary, msg.Description, msg.Extra,
		)
		if !resp.Success {
			return operationDoneMsg{err: resp.Error}
		}
		status := "Created"
		if created, ok := resp.Result.(*jira.CreatedIssue); ok {
			status = "Created " + created.Key
		}
		return operationDoneMsg{status: status, reloadList: true}
	}
}

// postComment adds a comment to a work item.
func (m Model) postComment(key, text string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.AddComment(context.Background(), key, text)
		if !resp.Success {
			return operationDoneMsg{err: resp.Error}
		}
		return operationDoneMsg{status: "Comment added", reloadItem: key}
	}
}

// applyTransition moves a work item through a workflow transition.
func (m Model) applyTransition(key, transitionID string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.ApplyTransition(context.Background(), key, transitionID)
		if !resp.Success {
			return operationDoneMsg{err: resp.Error}
		}
		return operationDoneMsg{
			status:     fmt.Sprintf("Transitioned %s", key),
			reloadItem: key,
			reloadList: true,
		}
	}
}

// daysAgo returns midnight-agnostic "now minus n days".
func daysAgo(n int) time.Time {
	return time.Now().AddDate(0, 0, -n)
}
