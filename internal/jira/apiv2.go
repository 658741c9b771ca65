package jira

import (
	"context"
	"strconv"
)

// CloudAPIv2 talks to Jira Cloud REST API v2. It shares almost every
// endpoint with v3 via the embedded CloudAPI (with the /rest/api/2
// prefix), overriding only the operations whose payload shapes differ:
// rich text is a plain string, and search is the legacy offset
// endpoint.
type CloudAPIv2 struct {
	*CloudAPI
}

// NewCloudAPIv2 creates a Cloud v2 adapter.
func NewCloudAPIv2(client *Client) *CloudAPIv2 {
	return &CloudAPIv2{
		CloudAPI: &CloudAPI{client: client, prefix: "/rest/api/2"},
	}
}

// AddComment posts a comment with a plain-string body.
func (a *CloudAPIv2) AddComment(
	ctx context.Context, issueKey, text string,
) (*Comment, error) {
	body := map[string]interface{}{"body": text}
	var comment Comment
	if err := a.client.Post(ctx, a.path("issue", issueKey, "comment"), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// SearchIssues runs a JQL search against the legacy offset-paginated
// endpoint. The page token is a decimal startAt offset; the returned
// result carries the next offset as its token so callers page the same
// way on every variant.
func (a *CloudAPIv2) SearchIssues(
	ctx context.Context, jql string, maxResults int, pageToken string, fields []string,
) (*SearchResult, error) {
	startAt := 0
	if pageToken != "" {
		offset, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, &ValidationError{
				Msg: "invalid page token " + strconv.Quote(pageToken),
			}
		}
		startAt = offset
	}
	return a.searchAt(ctx, jql, startAt, maxResults, fields)
}

// searchAt runs one legacy search page starting at the given offset and
// normalizes the response into the token-shaped SearchResult.
func (a *CloudAPIv2) searchAt(
	ctx context.Context, jql string, startAt, maxResults int, fields []string,
) (*SearchResult, error) {
	body := map[string]interface{}{
		"jql":        jql,
		"startAt":    startAt,
		"maxResults": maxResults,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	var result SearchResult
	if err := a.client.Post(ctx, a.path("search"), body, &result); err != nil {
		return nil, err
	}

	last := result.StartAt+len(result.Issues) >= result.Total
	result.IsLast = &last
	if !last {
		result.NextPageToken = strconv.Itoa(result.StartAt + len(result.Issues))
	}
	return &result, nil
}

// RichText returns the text unchanged; v2 descriptions are plain
// strings.
func (a *CloudAPIv2) RichText(text string) interface{} {
	return text
}
