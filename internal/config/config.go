// Package config loads and persists the application's YAML
// configuration from ~/.config/jiratui/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// JQLExpression is a pre-defined JQL query the user can pick from the
// filter list.
type JQLExpression struct {
	// Label is the display name shown in the picker.
	Label string `mapstructure:"label" yaml:"label"`

	// Expression is the JQL query text.
	Expression string `mapstructure:"expression" yaml:"expression"`
}

// Config is the top-level application configuration.
type Config struct {
	// BaseURL is the root URL of the Jira instance.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Username is the account email (Cloud) or username (Data Center).
	Username string `mapstructure:"username" yaml:"username"`

	// Cloud selects Jira Cloud endpoints; false means Data Center.
	Cloud bool `mapstructure:"cloud" yaml:"cloud"`

	// APIVersion selects the Cloud REST API version (2 or 3).
	APIVersion int `mapstructure:"api_version" yaml:"api_version"`

	// BearerAuth sends the token as a Bearer header instead of HTTP
	// Basic credentials (personal access tokens on Data Center).
	BearerAuth bool `mapstructure:"bearer_auth" yaml:"bearer_auth"`

	// DefaultProjectKey scopes searches when no project is chosen.
	DefaultProjectKey string `mapstructure:"default_project_key" yaml:"default_project_key"`

	// SearchPageSize is the number of results per search page.
	SearchPageSize int `mapstructure:"search_page_size" yaml:"search_page_size"`

	// SearchDaysInterval bounds default searches to recently created
	// items (in days).
	SearchDaysInterval int `mapstructure:"search_days_interval" yaml:"search_days_interval"`

	// SprintFieldKey is the custom field holding sprint data
	// (e.g. customfield_10020); empty disables sprint display.
	SprintFieldKey string `mapstructure:"sprint_field_key" yaml:"sprint_field_key"`

	// JQLExpressions are saved queries keyed by a short id.
	JQLExpressions map[string]JQLExpression `mapstructure:"jql_expressions" yaml:"jql_expressions"`

	// DefaultJQLExpressionID selects the expression applied at startup.
	DefaultJQLExpressionID string `mapstructure:"default_jql_expression_id" yaml:"default_jql_expression_id"`

	// UserGroup scopes assignee pickers to one group (groupId on
	// Cloud, group name on Data Center).
	UserGroup string `mapstructure:"user_group" yaml:"user_group"`

	// IgnoreUsersWithoutEmail hides group members lacking an email.
	IgnoreUsersWithoutEmail bool `mapstructure:"ignore_users_without_email" yaml:"ignore_users_without_email"`

	// LogFile is where structured logs are written; empty disables
	// file logging.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// DefaultConfigPath returns ~/.config/jiratui/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "jiratui", "config.yaml")
}

// DefaultDataDir returns the directory for local state (database,
// logs).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "jiratui")
}

func defaultConfig() *Config {
	return &Config{
		Cloud:              true,
		APIVersion:         3,
		SearchPageSize:     30,
		SearchDaysInterval: 15,
		LogLevel:           "info",
	}
}

// Load reads configuration from the given YAML file path. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("cloud", true)
	v.SetDefault("api_version", 3)
	v.SetDefault("search_page_size", 30)
	v.SetDefault("search_days_interval", 15)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.APIVersion != 2 && cfg.APIVersion != 3 {
		return nil, fmt.Errorf(
			"unsupported api_version %d in %s (want 2 or 3)",
			cfg.APIVersion, path,
		)
	}
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = 30
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("base_url", cfg.BaseURL)
	v.Set("username", cfg.Username)
	v.Set("cloud", cfg.Cloud)
	v.Set("api_version", cfg.APIVersion)
	v.Set("bearer_auth", cfg.BearerAuth)
	v.Set("default_project_key", cfg.DefaultProjectKey)
	v.Set("search_page_size", cfg.SearchPageSize)
	v.Set("search_days_interval", cfg.SearchDaysInterval)
	v.Set("sprint_field_key", cfg.SprintFieldKey)
	v.Set("jql_expressions", cfg.JQLExpressions)
	v.Set("default_jql_expression_id", cfg.DefaultJQLExpressionID)
	v.Set("user_group", cfg.UserGroup)
	v.Set("ignore_users_without_email", cfg.IgnoreUsersWithoutEmail)
	v.Set("log_file", cfg.LogFile)
	v.Set("log_level", cfg.LogLevel)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
