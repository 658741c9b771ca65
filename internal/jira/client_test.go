package jira

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientExtractsErrorMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["The issue no longer exists."],"errors":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "token", false)
	err := client.Get(context.Background(), "/rest/api/3/issue/ABC-1", nil, &struct{}{})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", reqErr.StatusCode)
	}
	if got := reqErr.Message(); got != "The issue no longer exists." {
		t.Errorf("Message() = %q", got)
	}
}

func TestClientFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":[],"errors":{"summary":"You must specify a summary of the issue."}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "token", false)
	err := client.Put(context.Background(), "/rest/api/3/issue/ABC-1", nil, map[string]string{}, nil)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.Errors["summary"] == "" {
		t.Errorf("field errors not extracted: %+v", reqErr.Errors)
	}
}

func TestClientUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "bad-token", false)
	err := client.Get(context.Background(), "/rest/api/3/myself", nil, &struct{}{})
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized = false for %v", err)
	}
}

func TestClientInvalidResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unterminated`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "token", false)
	err := client.Get(context.Background(), "/rest/api/3/myself", nil, &struct{}{})

	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidResponseError, got %v", err)
	}
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"displayName":"Ada"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user", "token", false)
	var me User
	if err := client.Get(context.Background(), "/rest/api/3/myself", nil, &me); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if me.DisplayName != "Ada" {
		t.Errorf("displayName = %q", me.DisplayName)
	}
}

func TestClientBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ada@example.com" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "ada@example.com", "secret", false)
	if err := client.Get(context.Background(), "/rest/api/3/myself", nil, &struct{}{}); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestClientBearerAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer pat-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "pat-token", true)
	if err := client.Get(context.Background(), "/rest/api/2/myself", nil, &struct{}{}); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestClientTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "user", "token", false)
	err := client.Get(context.Background(), "/rest/api/3/myself", nil, &struct{}{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}
