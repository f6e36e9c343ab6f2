package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1Locations,
	2: migrationV2LocationIndexes,
}

// migrationV1Locations creates the saved locations table.
//
// Only inputs are stored. Zmanim and events are recomputed on every
// request from these rows and the static calendar tables.
const migrationV1Locations = `
-- Migration 001: saved locations

CREATE TABLE IF NOT EXISTS locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Unique display name, also the upsert key for imports
    name TEXT NOT NULL UNIQUE,

    -- Decimal degrees, north and east positive
    latitude REAL NOT NULL CHECK (latitude BETWEEN -90 AND 90),
    longitude REAL NOT NULL CHECK (longitude BETWEEN -180 AND 180),

    -- IANA zone used to render times, e.g. 'Asia/Jerusalem'
    timezone TEXT NOT NULL DEFAULT 'UTC',

    -- Metres above sea level; widens the day slightly
    elevation REAL NOT NULL DEFAULT 0 CHECK (elevation >= 0),

    -- 1 for diaspora observance (second festival days), 0 for Israel
    diaspora INTEGER NOT NULL DEFAULT 1 CHECK (diaspora IN (0, 1)),

    -- Community offsets in minutes
    candle_minutes INTEGER NOT NULL DEFAULT 18 CHECK (candle_minutes BETWEEN 0 AND 120),
    havdalah_minutes INTEGER NOT NULL DEFAULT 50 CHECK (havdalah_minutes BETWEEN 0 AND 120),

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// migrationV2LocationIndexes adds the lookup used by the cache warmer,
// which walks locations in name order.
const migrationV2LocationIndexes = `
-- Migration 002: location indexes

CREATE INDEX IF NOT EXISTS idx_locations_name
    ON locations(name COLLATE NOCASE);
`
