// Package internal provides the App struct that wires all components of tl
// together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/tasklists/internal/cli"
	"github.com/valter-silva-au/tasklists/internal/core"
	"github.com/valter-silva-au/tasklists/internal/observability"
	"github.com/valter-silva-au/tasklists/internal/storage"
	"github.com/valter-silva-au/tasklists/pkg/models"
)

// App holds all service dependencies for tl.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Storage layer
	KV      storage.KVStore
	Persist storage.StateStore

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory holding
// the config file, the storage file and the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.KV = storage.NewFileKVStore(core.StoragePath(basePath, cfg))
	app.Persist = storage.NewStateStore(app.KV, cfg.Storage.Key)

	// --- Observability ---
	if cfg.Events.Enabled {
		eventLogPath := filepath.Join(basePath, ".tl_events.jsonl")
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: run without an event log.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Persist = app.Persist
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	if app.EventLog != nil {
		cli.Events = &eventLogAdapter{log: app.EventLog}
	}

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the tl data directory: $TL_HOME if set,
// otherwise ~/.tl, otherwise .tl in the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TL_HOME"); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".tl")
	}
	return ".tl"
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   observability.LevelFor(eventType),
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
