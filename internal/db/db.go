package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the SQL database connection of a note folder
type DB struct {
	*sqlx.DB
	log zerolog.Logger
}

// Option configures a DB at open time
type Option func(*DB)

// WithLogger sets the logger used for query diagnostics
func WithLogger(l zerolog.Logger) Option {
	return func(db *DB) {
		db.log = l.With().Str("component", "db").Logger()
	}
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notetags"
	}
	return filepath.Join(home, ".local", "share", "notetags")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "notetags.db")
}

// Open opens a database connection and runs migrations
func Open(dbPath string, opts ...Option) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", dbPath)
	sqlDB, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer. Rows must be closed before issuing
	// a nested query or the pool deadlocks.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(db)
	}

	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Links written by older clients may use '\' in subfolder paths, which
	// the normalized link queries never match
	n, err := db.ConvertDirSeparator()
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to convert link paths: %w", err)
	}
	if n > 0 {
		db.log.Info().Int64("rows", n).Msg("converted link subfolder separators")
	}

	return db, nil
}

// migrate runs database migrations using embedded SQL files
func (db *DB) migrate() error {
	// Silence goose logging (it corrupts TUI output)
	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db.DB.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes a function within a transaction
func (db *DB) Transaction(fn func(*sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// warn logs a failed operation and passes the error through
func (db *DB) warn(op string, err error) error {
	if err != nil && err != sql.ErrNoRows {
		db.log.Warn().Err(err).Str("op", op).Msg("query failed")
	}
	return err
}
