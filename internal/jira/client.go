package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a thin HTTP client for the Jira REST API. It handles Basic
// (username + token) or Bearer authentication, JSON marshaling, and
// automatic retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	username   string
	token      string
	bearerAuth bool
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new Jira HTTP client. The baseURL should be the
// root URL of the Jira instance (e.g. https://example.atlassian.net).
// When bearerAuth is false the username and token are sent as HTTP
// Basic credentials; otherwise the token is sent as a Bearer token.
func NewClient(baseURL, username, token string, bearerAuth bool) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		token:      strings.TrimSpace(token),
		bearerAuth: bearerAuth,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	params url.Values,
	result interface{},
) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Put performs an HTTP PUT request with a JSON body and unmarshals the
// JSON response.
func (c *Client) Put(
	ctx context.Context,
	path string,
	params url.Values,
	body interface{},
	result interface{},
) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request. Jira returns 204 on success
// for every delete endpoint this client talks to.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Upload posts a file as multipart/form-data. Jira requires the
// X-Atlassian-Token header to bypass XSRF checks on attachment uploads.
func (c *Client) Upload(
	ctx context.Context,
	path string,
	fieldName string,
	fileName string,
	content io.Reader,
	result interface{},
) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return fmt.Errorf("creating multipart form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("writing multipart content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, &buf,
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrServiceUnavailable, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return c.handleResponse(http.MethodPost, path, resp, respBody, result)
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	fullURL := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(
			ctx, method, fullURL, bodyReader,
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		c.setAuth(req)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf(
				"%w: %s %s: %v", ErrServiceUnavailable, method, path, err,
			)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf(
				"rate limited (429) on %s %s", method, path,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		return c.handleResponse(method, path, resp, respBody, result)
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// handleResponse maps a completed HTTP exchange to a typed error or
// decodes the body into result.
func (c *Client) handleResponse(
	method string,
	path string,
	resp *http.Response,
	respBody []byte,
	result interface{},
) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
		}
		var envelope ErrorResponse
		if json.Unmarshal(respBody, &envelope) == nil {
			reqErr.ErrorMessages = envelope.ErrorMessages
			reqErr.Errors = envelope.Errors
		}
		return reqErr
	}

	// No content to parse (e.g. 204 from deletes and transitions).
	if result == nil || resp.StatusCode == http.StatusNoContent ||
		len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &InvalidResponseError{Method: method, Path: path, Err: err}
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.bearerAuth {
		req.Header.Set("Authorization", "Bearer "+c.token)
		return
	}
	req.SetBasicAuth(c.username, c.token)
}

// IsUnauthorized reports whether err is a 401 response from Jira.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) &&
		reqErr.StatusCode == http.StatusUnauthorized
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
