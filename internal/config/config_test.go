package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Cloud || cfg.APIVersion != 3 {
		t.Errorf("variant defaults = cloud=%v version=%d", cfg.Cloud, cfg.APIVersion)
	}
	if cfg.SearchPageSize != 30 || cfg.SearchDaysInterval != 15 {
		t.Errorf("search defaults = %d/%d", cfg.SearchPageSize, cfg.SearchDaysInterval)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
base_url: https://jira.internal.example.com
username: ada
cloud: false
api_version: 2
bearer_auth: true
search_page_size: 50
jql_expressions:
  mine:
    label: My open items
    expression: assignee = currentUser() and resolution is empty
default_jql_expression_id: mine
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cloud || cfg.APIVersion != 2 || !cfg.BearerAuth {
		t.Errorf("variant = %+v", cfg)
	}
	if cfg.SearchPageSize != 50 {
		t.Errorf("page size = %d", cfg.SearchPageSize)
	}
	expr, ok := cfg.JQLExpressions["mine"]
	if !ok || expr.Label != "My open items" {
		t.Errorf("expressions = %v", cfg.JQLExpressions)
	}
	if cfg.DefaultJQLExpressionID != "mine" {
		t.Errorf("default expression = %q", cfg.DefaultJQLExpressionID)
	}
}

func TestLoadRejectsUnknownAPIVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_version: 7\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("api_version 7 must be rejected")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.BaseURL = "https://example.atlassian.net"
	cfg.Username = "ada@example.com"
	cfg.SprintFieldKey = "customfield_10020"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.BaseURL != cfg.BaseURL || loaded.SprintFieldKey != cfg.SprintFieldKey {
		t.Errorf("round trip = %+v", loaded)
	}
}
