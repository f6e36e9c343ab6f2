// Command import loads saved locations from a YAML file into the SQLite
// database.
//
// Usage:
//
//	go run ./cmd/import -yaml data/locations.yaml -db data/luach.db
//
// This tool:
// 1. Parses the YAML file
// 2. Creates/opens the SQLite database and runs migrations
// 3. Upserts every location by name in a single transaction
//
// The import is idempotent: running it twice updates the same rows.
//
// File format:
//
//	defaults:
//	  diaspora: true
//	  candle_minutes: 18
//	  havdalah_minutes: 50
//	locations:
//	  - name: Jerusalem
//	    latitude: 31.7683
//	    longitude: 35.2137
//	    timezone: Asia/Jerusalem
//	    elevation: 754
//	    diaspora: false
//	    candle_minutes: 40
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/luach-api/internal/database"
)

func main() {
	// Parse command line flags
	yamlPath := flag.String("yaml", "data/locations.yaml", "Path to locations YAML file")
	dbPath := flag.String("db", "data/luach.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Run import
	if err := run(*yamlPath, *dbPath, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

// LocationFile is the YAML document. Entries inherit any observance field
// they leave out from Defaults.
type LocationFile struct {
	Defaults  Defaults        `yaml:"defaults"`
	Locations []LocationEntry `yaml:"locations"`
}

// Defaults apply to every entry that omits the field.
type Defaults struct {
	Timezone        string `yaml:"timezone"`
	Diaspora        *bool  `yaml:"diaspora"`
	CandleMinutes   *int   `yaml:"candle_minutes"`
	HavdalahMinutes *int   `yaml:"havdalah_minutes"`
}

// LocationEntry is one location in the file.
type LocationEntry struct {
	Name            string  `yaml:"name"`
	Latitude        float64 `yaml:"latitude"`
	Longitude       float64 `yaml:"longitude"`
	Timezone        string  `yaml:"timezone"`
	Elevation       float64 `yaml:"elevation"`
	Diaspora        *bool   `yaml:"diaspora"`
	CandleMinutes   *int    `yaml:"candle_minutes"`
	HavdalahMinutes *int    `yaml:"havdalah_minutes"`
}

// parseFile decodes data and resolves each entry against the defaults.
// Unknown keys are rejected so a typo does not silently drop a setting.
func parseFile(data []byte) ([]database.Location, error) {
	var file LocationFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if len(file.Locations) == 0 {
		return nil, errors.New("no locations in file")
	}

	seen := make(map[string]int, len(file.Locations))
	out := make([]database.Location, 0, len(file.Locations))
	for i, e := range file.Locations {
		key := strings.ToLower(e.Name)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("location %d: name %q already used by location %d", i+1, e.Name, prev)
		}
		seen[key] = i + 1

		l := database.Location{
			Name:            e.Name,
			Latitude:        e.Latitude,
			Longitude:       e.Longitude,
			Timezone:        firstNonEmpty(e.Timezone, file.Defaults.Timezone, "UTC"),
			Elevation:       e.Elevation,
			Diaspora:        pick(e.Diaspora, file.Defaults.Diaspora, true),
			CandleMinutes:   pick(e.CandleMinutes, file.Defaults.CandleMinutes, 18),
			HavdalahMinutes: pick(e.HavdalahMinutes, file.Defaults.HavdalahMinutes, 50),
		}
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("location %d (%s): %w", i+1, e.Name, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func run(yamlPath, dbPath string, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and parse YAML
	// =========================================================================
	logger.Info("reading YAML file", slog.String("path", yamlPath))

	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("read YAML file: %w", err)
	}

	locations, err := parseFile(data)
	if err != nil {
		return err
	}
	logger.Info("parsed YAML", slog.Int("locations", len(locations)))

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Upsert in a transaction
	// =========================================================================
	var stats ImportStats
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		return importLocations(ctx, tx, locations, logger, &stats)
	})
	if err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	stored, err := db.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}

	elapsed := time.Since(startTime)
	logger.Info("import verified",
		slog.Int("stored", len(stored)),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Locations created:   %d\n", stats.Created)
	fmt.Printf("Locations updated:   %d\n", stats.Updated)
	fmt.Printf("Locations stored:    %d\n", len(stored))
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// ImportStats tracks import statistics.
type ImportStats struct {
	Created int
	Updated int
}

// importLocations upserts every location by name.
func importLocations(ctx context.Context, tx *database.Tx, locations []database.Location, logger *slog.Logger, stats *ImportStats) error {
	for i := range locations {
		l := &locations[i]
		created, err := tx.UpsertLocation(ctx, l)
		if err != nil {
			return fmt.Errorf("upsert location %d (%s): %w", i+1, l.Name, err)
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
		logger.Debug("location imported",
			slog.String("name", l.Name),
			slog.Int64("id", l.ID),
			slog.Bool("created", created),
		)
	}
	return nil
}

func pick[T any](v, def *T, fallback T) T {
	switch {
	case v != nil:
		return *v
	case def != nil:
		return *def
	default:
		return fallback
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
