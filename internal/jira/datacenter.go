package jira

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// DataCenterAPI talks to a self-hosted Jira Data Center instance over
// REST API v2. It behaves like Cloud v2 except where Data Center
// diverges: page-number search jumps are supported, the approximate
// count endpoint does not exist, and group endpoints identify groups by
// name rather than id.
type DataCenterAPI struct {
	*CloudAPIv2
}

// NewDataCenterAPI creates a Data Center adapter.
func NewDataCenterAPI(client *Client) *DataCenterAPI {
	return &DataCenterAPI{CloudAPIv2: NewCloudAPIv2(client)}
}

// SearchIssuesByPage jumps straight to a numbered page (1-based) by
// computing the offset from the page size.
func (a *DataCenterAPI) SearchIssuesByPage(
	ctx context.Context, jql string, page, pageSize int, fields []string,
) (*SearchResult, error) {
	if page < 1 {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("page number must be >= 1, got %d", page),
		}
	}
	startAt := (page - 1) * pageSize
	return a.searchAt(ctx, jql, startAt, pageSize, fields)
}

// ApproximateCount has no Data Center equivalent.
func (a *DataCenterAPI) ApproximateCount(ctx context.Context, jql string) (int64, error) {
	return 0, fmt.Errorf("approximate count: %w", ErrNotImplemented)
}

// GroupMembers returns one page of users in a group. Data Center
// identifies groups by groupname.
func (a *DataCenterAPI) GroupMembers(
	ctx context.Context, group string, startAt, maxResults int,
) (*GroupMembers, error) {
	params := url.Values{}
	params.Set("groupname", group)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	var members GroupMembers
	if err := a.client.Get(ctx, a.path("group", "member"), params, &members); err != nil {
		return nil, err
	}
	return &members, nil
}
