package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zapponejosh/luach-api/internal/database"
)

const sample = `
defaults:
  timezone: America/New_York
  candle_minutes: 18
  havdalah_minutes: 42
locations:
  - name: Jerusalem
    latitude: 31.7683
    longitude: 35.2137
    timezone: Asia/Jerusalem
    elevation: 754
    diaspora: false
    candle_minutes: 40
  - name: New York
    latitude: 40.7128
    longitude: -74.0060
`

func TestParseFile(t *testing.T) {
	locs, err := parseFile([]byte(sample))
	if err != nil {
		t.Fatalf("parseFile: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2", len(locs))
	}

	jlm := locs[0]
	if jlm.Timezone != "Asia/Jerusalem" || jlm.Diaspora || jlm.CandleMinutes != 40 || jlm.HavdalahMinutes != 42 {
		t.Errorf("Jerusalem = %+v", jlm)
	}

	ny := locs[1]
	if ny.Timezone != "America/New_York" || !ny.Diaspora || ny.CandleMinutes != 18 || ny.HavdalahMinutes != 42 {
		t.Errorf("New York = %+v, want file defaults", ny)
	}
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "locations: []", "no locations"},
		{"unknown key", "locations:\n  - name: X\n    lat: 1\n", "field lat not found"},
		{"duplicate", "locations:\n  - {name: A, latitude: 1, longitude: 1}\n  - {name: a, latitude: 2, longitude: 2}\n", "already used"},
		{"invalid", "locations:\n  - {name: Pole, latitude: 91, longitude: 0}\n", "invalid location"},
		{"not yaml", "locations: [", "parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFile([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "locations.yaml")
	dbPath := filepath.Join(dir, "luach.db")
	if err := os.WriteFile(yamlPath, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for i := 0; i < 2; i++ {
		if err := run(yamlPath, dbPath, logger); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	locs, err := db.ListLocations(t.Context())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(locs) != 2 {
		t.Errorf("stored %d locations after two runs, want 2", len(locs))
	}
}
