// Package internal provides the App struct that wires all components of
// kbdesk together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kbdesk/kbdesk/internal/cli"
	"github.com/kbdesk/kbdesk/internal/core"
	"github.com/kbdesk/kbdesk/internal/observability"
	"github.com/kbdesk/kbdesk/internal/storage"
)

// App holds all service dependencies for kbdesk.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *core.EngineConfig

	// Storage layer
	KnowledgeStore storage.KnowledgeStoreManager
	SessionStore   storage.SessionStore

	// Core services
	Engine *core.Engine

	// Observability
	Logger      *zap.Logger
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of kbdesk. basePath is the root
// directory where knowledge data is stored (typically the directory
// containing .kbdeskconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	app.Config = cfg

	// --- Logging ---
	app.Logger, err = newLogger()
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".kbdesk_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: discard events if the log can't be created.
		app.Logger.Warn("event log unavailable", zap.Error(err))
		app.EventLog = observability.NopEventLog()
	}
	app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)

	// --- Storage layer ---
	app.KnowledgeStore = storage.NewKnowledgeStoreManager(basePath)
	app.SessionStore = storage.NewSessionStore()

	// --- Core services ---
	app.Engine = core.NewEngine(*cfg, app.KnowledgeStore, app.SessionStore, app.Logger, app.EventLog)

	// --- Wire CLI package-level variables ---
	cli.Engine = app.Engine
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle.
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// newLogger builds the process logger. KBDESK_DEBUG enables development
// output with debug level.
func newLogger() (*zap.Logger, error) {
	if os.Getenv("KBDESK_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// ResolveBasePath determines the base path for the kbdesk data directory.
// It checks the KBDESK_HOME env var, then walks up from the current
// directory looking for .kbdeskconfig, then falls back to cwd.
func ResolveBasePath() string {
	if home := os.Getenv("KBDESK_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".kbdeskconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
