// Package database stores the saved locations of the luach API.
//
// Only observance settings live here. Zmanim, readings and holidays are
// always recomputed from these rows and the static calendar tables.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/mattn/go-sqlite3"
)

// memoryPath opens a private in-memory database, used by tests.
const memoryPath = ":memory:"

// DB wraps the standard sql.DB with location queries.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config holds database configuration options.
type Config struct {
	Path            string        // SQLite file, or ":memory:"
	MaxOpenConns    int           // SQLite has a single writer; keep at 1
	MaxIdleConns    int           // Idle connections kept open
	ConnMaxLifetime time.Duration // Recycle connections after this long
}

// DefaultConfig returns SQLite defaults: a single connection since SQLite
// allows one writer, WAL for concurrent readers and a 5s busy timeout.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}
}

// dsn appends the pragmas every connection needs. An in-memory database
// has no journal to put in WAL mode.
func (c Config) dsn() string {
	if c.Path == memoryPath {
		return c.Path + "?_foreign_keys=ON"
	}
	return c.Path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
}

// Open connects to the database at cfg.Path, creating its directory if
// needed. Callers run Migrate before querying and Close when done.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Path != memoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connected",
		slog.String("path", cfg.Path),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return &DB{DB: sqlDB, logger: logger}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// ErrSchemaOutdated is returned by Health when migrations are pending.
var ErrSchemaOutdated = errors.New("database schema outdated")

// Health pings the database and checks that every migration is applied,
// so a server started against an old file reports unhealthy.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if latest := LatestSchemaVersion(); version < latest {
		return fmt.Errorf("%w: at version %d, want %d", ErrSchemaOutdated, version, latest)
	}
	return nil
}

// =============================================================================
// Migrations
// =============================================================================

// LatestSchemaVersion is the version Migrate brings a database to.
func LatestSchemaVersion() int {
	return slices.Max(slices.Collect(maps.Keys(migrationsSQL)))
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh
// database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrError {
			// No schema_migrations table yet.
			return 0, nil
		}
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies pending migrations in version order inside a single
// transaction and returns how many ran. Migrations are forward-only.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	var count int
	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				applied_at TEXT NOT NULL DEFAULT (datetime('now'))
			)
		`)
		if err != nil {
			return fmt.Errorf("create schema_migrations table: %w", err)
		}

		applied, err := tx.appliedVersions(ctx)
		if err != nil {
			return err
		}

		for _, version := range slices.Sorted(maps.Keys(migrationsSQL)) {
			if applied[version] {
				continue
			}
			db.logger.Info("applying migration", slog.Int("version", version))

			if _, err := tx.ExecContext(ctx, migrationsSQL[version]); err != nil {
				return fmt.Errorf("execute migration %d: %w", version, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
				return fmt.Errorf("record migration %d: %w", version, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info("migrations complete",
		slog.Int("applied", count),
		slog.Int("latest", LatestSchemaVersion()),
	)
	return count, nil
}

func (tx *Tx) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// =============================================================================
// Transactions
// =============================================================================

// Tx is a transaction carrying the location write helpers.
type Tx struct {
	*sql.Tx
}

// WithTx runs fn in a transaction, committing if it returns nil and
// rolling back otherwise. A panic in fn rolls back before propagating.
//
//	err := db.WithTx(ctx, func(tx *database.Tx) error {
//	    _, err := tx.UpsertLocation(ctx, &loc)
//	    return err
//	})
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tx := &Tx{sqlTx}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// Errors
// =============================================================================

// ErrNotFound is returned when a location does not exist.
var ErrNotFound = errors.New("location not found")

// ErrDuplicate is returned when a location name is already taken.
var ErrDuplicate = errors.New("duplicate location name")

// IsNotFound reports whether err means the row is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// translate maps driver errors onto the package sentinels and adds
// context.
func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	}
	msg := fmt.Sprintf(format, args...)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", msg, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
