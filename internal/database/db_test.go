package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"github.com/zapponejosh/luach-api/internal/solar"
)

// testDB creates a temporary in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func jerusalem() *Location {
	return &Location{
		Name:            "Jerusalem",
		Latitude:        31.7683,
		Longitude:       35.2137,
		Timezone:        "Asia/Jerusalem",
		Elevation:       754,
		Diaspora:        false,
		CandleMinutes:   40,
		HavdalahMinutes: 50,
	}
}

func newYork() *Location {
	return &Location{
		Name:            "New York",
		Latitude:        40.7128,
		Longitude:       -74.0060,
		Timezone:        "America/New_York",
		Diaspora:        true,
		CandleMinutes:   18,
		HavdalahMinutes: 50,
	}
}

// -----------------------------------------------------------------
// DB tests
// -----------------------------------------------------------------

func TestOpen(t *testing.T) {
	db := testDB(t)

	ctx := context.Background()
	if err := db.Health(ctx); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Running again should be a no-op
	count, err := db.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Migrate() count = %d, want 0 (already applied)", count)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("SchemaVersion() = %d, want %d", version, LatestSchemaVersion())
	}
}

func TestHealth_PendingMigrations(t *testing.T) {
	db, err := Open(DefaultConfig(":memory:"), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("SchemaVersion() = %d, want 0 before Migrate", version)
	}
	if err := db.Health(ctx); !errors.Is(err, ErrSchemaOutdated) {
		t.Errorf("Health() error = %v, want ErrSchemaOutdated", err)
	}
}

// -----------------------------------------------------------------
// Location tests
// -----------------------------------------------------------------

func TestCreateLocation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	loc := jerusalem()
	if err := db.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}

	if loc.ID == 0 {
		t.Error("CreateLocation() did not set ID")
	}
	if loc.CreatedAt.IsZero() {
		t.Error("CreateLocation() did not set CreatedAt")
	}
	if loc.Diaspora {
		t.Error("CreateLocation() Diaspora = true, want false")
	}
}

func TestCreateLocation_DefaultsTimezone(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	loc := newYork()
	loc.Timezone = ""
	if err := db.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}
	if loc.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", loc.Timezone)
	}
}

func TestCreateLocation_Duplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.CreateLocation(ctx, jerusalem()); err != nil {
		t.Fatalf("first CreateLocation() error = %v", err)
	}

	err := db.CreateLocation(ctx, jerusalem())
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateLocation() duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestCreateLocation_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(l *Location)
	}{
		{"empty name", func(l *Location) { l.Name = "  " }},
		{"latitude out of range", func(l *Location) { l.Latitude = 95 }},
		{"unknown timezone", func(l *Location) { l.Timezone = "Mars/Olympus" }},
		{"negative elevation", func(l *Location) { l.Elevation = -1 }},
		{"elevation above limit", func(l *Location) { l.Elevation = 10000 }},
		{"elevation NaN", func(l *Location) { l.Elevation = math.NaN() }},
		{"negative candle offset", func(l *Location) { l.CandleMinutes = -18 }},
		{"havdalah too late", func(l *Location) { l.HavdalahMinutes = 200 }},
	}

	db := testDB(t)
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := jerusalem()
			tt.modify(loc)
			err := db.CreateLocation(ctx, loc)
			if !errors.Is(err, ErrInvalidLocation) {
				t.Errorf("CreateLocation() error = %v, want ErrInvalidLocation", err)
			}
		})
	}
}

func TestCreateLocation_ElevationBounds(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, elevation := range []float64{0, solar.MaxElevation} {
		loc := jerusalem()
		loc.Name = fmt.Sprintf("Summit %v", elevation)
		loc.Elevation = elevation
		if err := db.CreateLocation(ctx, loc); err != nil {
			t.Errorf("CreateLocation(elevation=%v) error = %v", elevation, err)
		}
	}
}

func TestGetLocation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	loc := jerusalem()
	if err := db.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}

	got, err := db.GetLocation(ctx, loc.ID)
	if err != nil {
		t.Fatalf("GetLocation() error = %v", err)
	}
	if got.Name != "Jerusalem" || got.Timezone != "Asia/Jerusalem" || got.Elevation != 754 {
		t.Errorf("GetLocation() = %+v", got)
	}
	if got.CandleMinutes != 40 || got.HavdalahMinutes != 50 {
		t.Errorf("GetLocation() offsets = %d/%d, want 40/50", got.CandleMinutes, got.HavdalahMinutes)
	}

	byName, err := db.GetLocationByName(ctx, "jerusalem")
	if err != nil {
		t.Fatalf("GetLocationByName() error = %v", err)
	}
	if byName.ID != loc.ID {
		t.Errorf("GetLocationByName() ID = %d, want %d", byName.ID, loc.ID)
	}
}

func TestGetLocation_NotFound(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.GetLocation(ctx, 999)
	if !IsNotFound(err) {
		t.Errorf("GetLocation() error = %v, want ErrNotFound", err)
	}

	_, err = db.GetLocationByName(ctx, "Atlantis")
	if !IsNotFound(err) {
		t.Errorf("GetLocationByName() error = %v, want ErrNotFound", err)
	}
}

func TestListLocations(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	empty, err := db.ListLocations(ctx)
	if err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListLocations() = %v, want empty non-nil slice", empty)
	}

	for _, loc := range []*Location{newYork(), jerusalem()} {
		if err := db.CreateLocation(ctx, loc); err != nil {
			t.Fatalf("CreateLocation() error = %v", err)
		}
	}

	locations, err := db.ListLocations(ctx)
	if err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("ListLocations() returned %d, want 2", len(locations))
	}
	if locations[0].Name != "Jerusalem" || locations[1].Name != "New York" {
		t.Errorf("ListLocations() order = %q, %q", locations[0].Name, locations[1].Name)
	}
}

func TestUpdateLocation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	loc := newYork()
	if err := db.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}

	loc.CandleMinutes = 20
	loc.Elevation = 10
	if err := db.UpdateLocation(ctx, loc); err != nil {
		t.Fatalf("UpdateLocation() error = %v", err)
	}

	got, err := db.GetLocation(ctx, loc.ID)
	if err != nil {
		t.Fatalf("GetLocation() error = %v", err)
	}
	if got.CandleMinutes != 20 || got.Elevation != 10 {
		t.Errorf("UpdateLocation() not persisted: %+v", got)
	}

	missing := newYork()
	missing.ID = 999
	if err := db.UpdateLocation(ctx, missing); !IsNotFound(err) {
		t.Errorf("UpdateLocation() missing error = %v, want ErrNotFound", err)
	}
}

func TestUpdateLocation_DuplicateName(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	ny, jlm := newYork(), jerusalem()
	for _, loc := range []*Location{ny, jlm} {
		if err := db.CreateLocation(ctx, loc); err != nil {
			t.Fatalf("CreateLocation() error = %v", err)
		}
	}

	ny.Name = "Jerusalem"
	if err := db.UpdateLocation(ctx, ny); !errors.Is(err, ErrDuplicate) {
		t.Errorf("UpdateLocation() error = %v, want ErrDuplicate", err)
	}
}

func TestDeleteLocation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	loc := jerusalem()
	if err := db.CreateLocation(ctx, loc); err != nil {
		t.Fatalf("CreateLocation() error = %v", err)
	}

	if err := db.DeleteLocation(ctx, loc.ID); err != nil {
		t.Fatalf("DeleteLocation() error = %v", err)
	}
	if _, err := db.GetLocation(ctx, loc.ID); !IsNotFound(err) {
		t.Errorf("GetLocation() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteLocation(ctx, loc.ID); !IsNotFound(err) {
		t.Errorf("DeleteLocation() twice error = %v, want ErrNotFound", err)
	}
}

func TestUpsertLocation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var created []bool
	err := db.WithTx(ctx, func(tx *Tx) error {
		first, err := tx.UpsertLocation(ctx, jerusalem())
		if err != nil {
			return err
		}
		changed := jerusalem()
		changed.Name = "JERUSALEM"
		changed.CandleMinutes = 30
		second, err := tx.UpsertLocation(ctx, changed)
		if err != nil {
			return err
		}
		created = append(created, first, second)
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	if !created[0] || created[1] {
		t.Errorf("UpsertLocation() created = %v, want [true false]", created)
	}

	locations, err := db.ListLocations(ctx)
	if err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("ListLocations() returned %d, want 1", len(locations))
	}
	if locations[0].Name != "Jerusalem" || locations[0].CandleMinutes != 30 {
		t.Errorf("upserted location = %+v, want original name with updated offset", locations[0])
	}
}

func TestWithTx_RollsBack(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.UpsertLocation(ctx, jerusalem()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	locations, err := db.ListLocations(ctx)
	if err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}
	if len(locations) != 0 {
		t.Errorf("ListLocations() after rollback = %d rows, want 0", len(locations))
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("WithTx() swallowed the panic")
			}
		}()
		_ = db.WithTx(ctx, func(tx *Tx) error {
			if _, err := tx.UpsertLocation(ctx, jerusalem()); err != nil {
				t.Fatalf("UpsertLocation() error = %v", err)
			}
			panic("boom")
		})
	}()

	// With a single connection, a leaked transaction would block this read.
	if _, err := db.GetLocationByName(ctx, "Jerusalem"); !IsNotFound(err) {
		t.Errorf("GetLocationByName() error = %v, want not found", err)
	}
}

func TestLocation_Conversions(t *testing.T) {
	loc := jerusalem()

	if c := loc.Coordinate(); c.Latitude != 31.7683 || c.Longitude != 35.2137 {
		t.Errorf("Coordinate() = %v", c)
	}
	if o := loc.Options(); o.CandleLightingMinutes != 40 || o.HavdalahMinutes != 50 {
		t.Errorf("Options() = %+v", o)
	}
	if tz := loc.TimeZone(); tz.String() != "Asia/Jerusalem" {
		t.Errorf("TimeZone() = %v", tz)
	}

	loc.Timezone = "Nowhere/Land"
	if tz := loc.TimeZone(); tz != time.UTC {
		t.Errorf("TimeZone() fallback = %v, want UTC", tz)
	}
}
