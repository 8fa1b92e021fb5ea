package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskvault/internal/alert"
	"github.com/sandeepkv93/taskvault/internal/config"
	"github.com/sandeepkv93/taskvault/internal/dates"
	"github.com/sandeepkv93/taskvault/internal/storage"
	"github.com/sandeepkv93/taskvault/internal/suggest"
	"github.com/sandeepkv93/taskvault/internal/sync"
	"github.com/sandeepkv93/taskvault/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskvault failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	settings, err := config.LoadSyncSettings(cfg.SyncSettingsPath)
	if err != nil {
		return err
	}
	backend, err := settings.Backend()
	if err != nil {
		return err
	}
	// No replica transport is linked in this build; the coordinator still
	// tracks the configured backend and surfaces availability errors.
	coordinator := sync.NewCoordinator(backend, nil)
	repo.SetCommitHook(coordinator.MarkDirty)

	engine := suggest.NewEngine(suggest.NewTagCache(repo))

	alerts := alert.NewEngine(64)
	alerts.Start()
	defer alerts.Stop()

	deps := update.Deps{
		Tasks:           repo,
		Filters:         repo,
		Tags:            repo,
		Suggest:         engine,
		Resolver:        dates.NewNaturalResolver(),
		Coordinator:     coordinator,
		Alerts:          alerts,
		SuggestionLimit: cfg.SuggestionLimit,
	}

	program := tea.NewProgram(update.NewModel(deps))
	_, err = program.Run()
	return err
}
