package jira

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotImplemented is returned by adapter operations that the selected
// API variant does not support (e.g. approximate counts on Data Center).
var ErrNotImplemented = errors.New("operation not supported by this Jira API variant")

// ErrServiceUnavailable indicates a transport-level failure: the request
// never produced an HTTP response (connection refused, timeout, DNS).
var ErrServiceUnavailable = errors.New("jira service unavailable")

// RequestError is a non-2xx response from the Jira API, carrying the
// status code and any structured error payload Jira provided.
type RequestError struct {
	StatusCode    int
	Method        string
	Path          string
	ErrorMessages []string
	Errors        map[string]string
}

func (e *RequestError) Error() string {
	if len(e.ErrorMessages) > 0 {
		return fmt.Sprintf(
			"jira API error (%d) on %s %s: %s",
			e.StatusCode, e.Method, e.Path,
			strings.Join(e.ErrorMessages, "; "),
		)
	}
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for field, msg := range e.Errors {
			parts = append(parts, field+": "+msg)
		}
		return fmt.Sprintf(
			"jira API error (%d) on %s %s: %s",
			e.StatusCode, e.Method, e.Path,
			strings.Join(parts, "; "),
		)
	}
	return fmt.Sprintf(
		"unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path,
	)
}

// Message returns the first human-readable message Jira reported, or the
// full error string when the response carried no structured payload.
func (e *RequestError) Message() string {
	if len(e.ErrorMessages) > 0 {
		return e.ErrorMessages[0]
	}
	return e.Error()
}

// InvalidResponseError indicates a 2xx response whose body could not be
// decoded into the expected shape.
type InvalidResponseError struct {
	Method string
	Path   string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf(
		"invalid response from %s %s: %v", e.Method, e.Path, e.Err,
	)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// ValidationError is a locally-detected input problem, raised before any
// network call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
