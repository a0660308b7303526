package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-talk/internal/cli"
	"github.com/Veraticus/spice-talk/internal/common"
	"github.com/Veraticus/spice-talk/internal/config"
	"github.com/Veraticus/spice-talk/internal/engine"
	"github.com/Veraticus/spice-talk/internal/learning"
	"github.com/Veraticus/spice-talk/internal/modelstore"
	"github.com/Veraticus/spice-talk/internal/storage"
)

// app bundles everything a command needs to parse utterances.
type app struct {
	settings config.Settings
	store    *storage.SQLiteStorage
	models   *modelstore.Store
	learner  *learning.Learner
	engine   *engine.Engine
}

func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// openStorage opens the database without migrating it.
func openStorage(dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := openStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func newApp(ctx context.Context, settings config.Settings) (*app, error) {
	store, err := initStorage(ctx, settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	models := modelstore.New(store)
	learner := learning.NewLearner(store, store, models, settings)
	eng, err := engine.New(models, store, learner, settings)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return &app{
		settings: settings,
		store:    store,
		models:   models,
		learner:  learner,
		engine:   eng,
	}, nil
}

// openApp loads the settings and opens the app.
func openApp(ctx context.Context) (*app, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, settings)
}

// Close waits for background retrains before closing the database.
func (a *app) Close() {
	a.learner.Wait()
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// ensureModels loads or trains every model, drawing progress bars on w
// while anything trains.
func (a *app) ensureModels(ctx context.Context, w io.Writer) error {
	progress := cli.NewTrainingProgress(w)
	a.engine.SetProgress(progress.Report)

	err := a.engine.Ensure(ctx)
	for _, l := range progress.Finish() {
		common.LogInfo("Model trained", common.Fields{"model": l.Name, "loss": l.Loss})
	}
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}
	return nil
}
