package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/iishyfishyy/trigramdb/internal/config"
	"github.com/iishyfishyy/trigramdb/internal/entrystore"
	"github.com/iishyfishyy/trigramdb/internal/history"
	"github.com/iishyfishyy/trigramdb/internal/logger"
	"github.com/iishyfishyy/trigramdb/internal/persist"
)

// app bundles the loaded configuration, the storage backend and the store
// restored from it.
type app struct {
	cfg     *config.Config
	backend persist.Backend
	store   *entrystore.Store
	logger  *log.Logger
}

// resolveConfigPath returns the --config value or the default location
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return config.ExpandHome(configPath)
	}
	return config.GetConfigPath()
}

// loadConfig reads the active configuration, falling back to defaults
func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, path, nil
}

// openApp loads the configuration, opens the backend and restores the store
func openApp(ctx context.Context) (*app, error) {
	l := logger.New("trigramdb")

	cfg, path, err := loadConfig()
	if err != nil {
		return nil, err
	}
	l.Debug("config loaded", "path", path, "backend", cfg.Storage.Backend)

	kind := cfg.Storage.Backend
	storeFile, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		if storeFile, err = config.ExpandHome(storePath); err != nil {
			return nil, err
		}
		kind = persist.KindForPath(storeFile)
	}

	backend, err := persist.Open(kind, storeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	snap, err := backend.Load(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	store := entrystore.New(
		entrystore.WithIterations(cfg.Search.Iterations),
		entrystore.WithWeights(cfg.Search.Weights),
	)
	if err := snap.Restore(store); err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to restore store: %w", err)
	}

	if snap.Iterations != 0 && (snap.Iterations != cfg.Search.Iterations || !slices.Equal(snap.Weights, cfg.Search.Weights)) {
		l.Debug("store was saved with different search settings",
			"saved_iterations", snap.Iterations, "iterations", cfg.Search.Iterations)
	}
	l.Debug("store restored", "path", storeFile, "kind", kind, "entries", store.Len())

	return &app{
		cfg:     cfg,
		backend: backend,
		store:   store,
		logger:  l,
	}, nil
}

// save writes the store back through the backend
func (a *app) save(ctx context.Context) error {
	if err := a.backend.Save(ctx, persist.Capture(a.store)); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

func (a *app) close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("failed to close store", "err", err)
	}
}

// texts maps every live id to its raw text
func (a *app) texts() map[string]string {
	out := make(map[string]string, a.store.Len())
	for id, entry := range a.store.Entries() {
		out[id] = entry.RawText
	}
	return out
}

// recordSearch appends a search to the history file. Failures are logged,
// never returned.
func (a *app) recordSearch(entry history.Entry) {
	if !a.cfg.History.Enabled {
		return
	}

	path, err := config.GetHistoryPath()
	if err != nil {
		a.logger.Warn("failed to locate history", "err", err)
		return
	}

	hist, err := history.Load(path)
	if err != nil {
		a.logger.Warn("failed to load history", "err", err)
		return
	}

	hist.AddEntry(entry, a.cfg.History.MaxEntries)
	if err := hist.Save(); err != nil {
		a.logger.Warn("failed to save history", "err", err)
	}
}
