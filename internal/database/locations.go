package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns the zero time if no known format matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// querier is satisfied by *DB and *Tx so the same statements run inside
// and outside transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const locationColumns = `
	id, name, latitude, longitude, timezone, elevation, diaspora,
	candle_minutes, havdalah_minutes, created_at, updated_at`

func scanLocation(row rowScanner) (*Location, error) {
	var l Location
	var createdAt, updatedAt string
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Latitude,
		&l.Longitude,
		&l.Timezone,
		&l.Elevation,
		&l.Diaspora,
		&l.CandleMinutes,
		&l.HavdalahMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = parseTimestamp(createdAt)
	l.UpdatedAt = parseTimestamp(updatedAt)
	return &l, nil
}

func prepare(l *Location) error {
	if l.Timezone == "" {
		l.Timezone = "UTC"
	}
	return l.Validate()
}

// =============================================================================
// Location Queries
// =============================================================================

// CreateLocation inserts l and fills in its ID and timestamps.
// Returns ErrDuplicate if the name is taken.
func (db *DB) CreateLocation(ctx context.Context, l *Location) error {
	return createLocation(ctx, db, l)
}

func createLocation(ctx context.Context, q querier, l *Location) error {
	if err := prepare(l); err != nil {
		return err
	}

	row := q.QueryRowContext(ctx, `
		INSERT INTO locations (
			name, latitude, longitude, timezone, elevation, diaspora,
			candle_minutes, havdalah_minutes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+locationColumns,
		l.Name, l.Latitude, l.Longitude, l.Timezone, l.Elevation, l.Diaspora,
		l.CandleMinutes, l.HavdalahMinutes,
	)
	created, err := scanLocation(row)
	if err != nil {
		return translate(err, "insert location %q", l.Name)
	}
	*l = *created
	return nil
}

// GetLocation returns the location with id, or ErrNotFound.
func (db *DB) GetLocation(ctx context.Context, id int64) (*Location, error) {
	row := db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
	l, err := scanLocation(row)
	if err != nil {
		return nil, translate(err, "get location %d", id)
	}
	return l, nil
}

// GetLocationByName returns the location named name, or ErrNotFound.
// The match is case-insensitive.
func (db *DB) GetLocationByName(ctx context.Context, name string) (*Location, error) {
	row := db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM locations WHERE name = ? COLLATE NOCASE`, name)
	l, err := scanLocation(row)
	if err != nil {
		return nil, translate(err, "get location %q", name)
	}
	return l, nil
}

// ListLocations returns all locations ordered by name.
// Returns an empty slice when none are saved.
func (db *DB) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		locations = append(locations, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locations, nil
}

// UpdateLocation overwrites every field of the location with l.ID.
func (db *DB) UpdateLocation(ctx context.Context, l *Location) error {
	if err := prepare(l); err != nil {
		return err
	}

	row := db.QueryRowContext(ctx, `
		UPDATE locations SET
			name = ?, latitude = ?, longitude = ?, timezone = ?, elevation = ?,
			diaspora = ?, candle_minutes = ?, havdalah_minutes = ?,
			updated_at = datetime('now')
		WHERE id = ?
		RETURNING `+locationColumns,
		l.Name, l.Latitude, l.Longitude, l.Timezone, l.Elevation,
		l.Diaspora, l.CandleMinutes, l.HavdalahMinutes,
		l.ID,
	)
	updated, err := scanLocation(row)
	if err != nil {
		return translate(err, "update location %d", l.ID)
	}
	*l = *updated
	return nil
}

// DeleteLocation removes the location with id, or returns ErrNotFound.
func (db *DB) DeleteLocation(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete location %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertLocation inserts l or, when the name exists, updates it in place.
// It reports whether a new row was created.
func (tx *Tx) UpsertLocation(ctx context.Context, l *Location) (bool, error) {
	if err := prepare(l); err != nil {
		return false, err
	}

	var existing int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM locations WHERE name = ? COLLATE NOCASE`, l.Name).Scan(&existing)
	if err != nil && !IsNotFound(err) {
		return false, fmt.Errorf("look up location %q: %w", l.Name, err)
	}
	if IsNotFound(err) {
		return true, createLocation(ctx, tx, l)
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE locations SET
			latitude = ?, longitude = ?, timezone = ?, elevation = ?,
			diaspora = ?, candle_minutes = ?, havdalah_minutes = ?,
			updated_at = datetime('now')
		WHERE id = ?
		RETURNING `+locationColumns,
		l.Latitude, l.Longitude, l.Timezone, l.Elevation,
		l.Diaspora, l.CandleMinutes, l.HavdalahMinutes,
		existing,
	)
	updated, err := scanLocation(row)
	if err != nil {
		return false, translate(err, "update location %q", l.Name)
	}
	*l = *updated
	return false, nil
}
