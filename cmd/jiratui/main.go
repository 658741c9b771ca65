// Command jiratui is a terminal client for Jira work items. It speaks
// the Cloud v3, Cloud v2 and Data Center v2 REST APIs behind a single
// normalized interface.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/whyisdifficult/jiratui-sub000/internal/app"
	"github.com/whyisdifficult/jiratui-sub000/internal/config"
	"github.com/whyisdifficult/jiratui-sub000/internal/controller"
	"github.com/whyisdifficult/jiratui-sub000/internal/credential"
	"github.com/whyisdifficult/jiratui-sub000/internal/jira"
	"github.com/whyisdifficult/jiratui-sub000/internal/store"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to the YAML config file")
	setToken := flag.Bool("set-token", false, "store the Jira API token in the system keyring and exit")
	flag.Parse()

	if *setToken {
		if err := storeToken(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Token stored.")
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("no base_url configured; edit %s", configPath)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	token, err := credential.APIToken()
	if err != nil {
		return fmt.Errorf(
			"no API token found; set %s or run jiratui -set-token: %w",
			"JIRA_API_TOKEN", err,
		)
	}

	client := jira.NewClient(cfg.BaseURL, cfg.Username, token, cfg.BearerAuth)
	api := jira.NewAPI(client, cfg.Cloud, cfg.APIVersion)

	ctrl := controller.New(api, logger, controller.Options{
		PageSize:                cfg.SearchPageSize,
		SprintFieldKey:          cfg.SprintFieldKey,
		IgnoreUsersWithoutEmail: cfg.IgnoreUsersWithoutEmail,
	})

	// The local database holds saved filters and search history. The
	// app degrades gracefully without it.
	var s store.Store
	dbPath := filepath.Join(config.DefaultDataDir(), "jiratui.db")
	sqliteStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn("local database unavailable", "path", dbPath, "error", err)
	} else {
		s = sqliteStore
		defer sqliteStore.Close()
	}

	// Offset page jumps only work on Data Center's legacy search.
	pageJumps := !cfg.Cloud

	program := tea.NewProgram(
		app.New(cfg, ctrl, s, pageJumps),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// newLogger builds the slog logger from config. Logs go to the
// configured file, or are discarded: stderr belongs to the TUI.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.LogLevel)

	if cfg.LogFile == "" {
		handler := slog.NewTextHandler(io.Discard, nil)
		return slog.New(handler), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), func() { f.Close() }, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// storeToken reads a token from stdin and saves it to the keyring.
func storeToken() error {
	fmt.Print("Jira API token: ")
	var token string
	if _, err := fmt.Scanln(&token); err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	return credential.SetAPIToken(strings.TrimSpace(token))
}
