package app

import (
	"fmt"
	"io"
	"os"

	"github.com/dori/notetags/internal/config"
	"github.com/dori/notetags/internal/db"
	"github.com/dori/notetags/internal/logging"
	"github.com/dori/notetags/internal/settings"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// App holds the application state and dependencies
type App struct {
	DB       *db.DB
	Settings *settings.Store
	Config   *config.Config
	Log      zerolog.Logger

	lockFile  *flock.Flock
	logCloser io.Closer
}

// New creates an application instance that owns the data directory. Only one
// such instance can run at a time.
func New(cfg *config.Config) (*App, error) {
	return open(cfg, true)
}

// OpenShared creates an application instance without taking the
// single-instance lock, for short commands that only read
func OpenShared(cfg *config.Config) (*App, error) {
	return open(cfg, false)
}

func open(cfg *config.Config, lock bool) (*App, error) {
	if cfg == nil {
		cfg = config.Default("")
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{Config: cfg}
	if err := app.openLog(); err != nil {
		return nil, err
	}

	if lock {
		if err := app.acquireLock(); err != nil {
			app.closeLog()
			return nil, err
		}
	}

	store, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Settings = store

	database, err := db.Open(cfg.DBPath, db.WithLogger(app.Log))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	app.Log.Debug().
		Str("db", cfg.DBPath).
		Str("note_folder", cfg.NoteFolder).
		Bool("locked", lock).
		Msg("app opened")

	return app, nil
}

func (a *App) openLog() error {
	path := a.Config.LogPath()
	if path == "" {
		a.Log = logging.NewConsole(a.Config.Log.Level)
		return nil
	}

	l, closer, err := logging.OpenFile(a.Config.Log.Level, path)
	if err != nil {
		return err
	}
	a.Log = l
	a.logCloser = closer
	return nil
}

func (a *App) closeLog() {
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of notetags is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()
	a.closeLog()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
