// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file of saved locations

	// Authentication
	APIKey string // API key guarding location writes

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Observance defaults, overridable per request or per saved location
	CandleLightingMinutes int
	HavdalahMinutes       int
	Diaspora              bool
	DefaultTimezone       string // IANA zone used when a request names none

	// Engine
	SunDepression   float64 // degrees below the horizon for sunrise and sunset
	ZmanimCacheSize int     // memoized weeks, 0 disables
	HorizonDays     int     // default events horizon
	CacheWarmCron   string  // cron spec for the cache warmer, empty disables
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Bounds shared with the engine packages.
const (
	maxOffsetMinutes = 120
	maxHorizonDays   = 400
)

// Load reads configuration from the environment, after merging a .env
// file when one is present. Malformed values are reported together with
// validation failures rather than replaced by defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var env envReader
	cfg := &Config{
		Port:         env.integer("PORT", 8080),
		Env:          env.str("ENV", EnvDevelopment),
		DatabasePath: env.str("DATABASE_PATH", "./data/luach.db"),
		APIKey:       env.str("API_KEY", ""),
		LogLevel:     env.str("LOG_LEVEL", "info"),
		LogFormat:    env.str("LOG_FORMAT", "text"),

		CandleLightingMinutes: env.integer("CANDLE_LIGHTING_MINUTES", 18),
		HavdalahMinutes:       env.integer("HAVDALAH_MINUTES", 50),
		Diaspora:              env.boolean("DIASPORA", true),
		DefaultTimezone:       env.str("DEFAULT_TIMEZONE", "UTC"),

		SunDepression:   env.float("SUN_DEPRESSION", 0.833),
		ZmanimCacheSize: env.integer("ZMANIM_CACHE_SIZE", 256),
		HorizonDays:     env.integer("HORIZON_DAYS", 30),

		// Set but empty disables the warmer.
		CacheWarmCron: env.lookup("CACHE_WARM_CRON", "0 3 * * *"),
	}

	if err := errors.Join(env.errs, cfg.Validate()); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	// Validate port range
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	// Validate environment
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if c.CandleLightingMinutes < 0 || c.CandleLightingMinutes > maxOffsetMinutes {
		errs = append(errs, fmt.Errorf("CANDLE_LIGHTING_MINUTES must be between 0 and %d, got %d", maxOffsetMinutes, c.CandleLightingMinutes))
	}
	if c.HavdalahMinutes < 0 || c.HavdalahMinutes > maxOffsetMinutes {
		errs = append(errs, fmt.Errorf("HAVDALAH_MINUTES must be between 0 and %d, got %d", maxOffsetMinutes, c.HavdalahMinutes))
	}

	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err))
	}

	if c.SunDepression < -5 || c.SunDepression > 20 {
		errs = append(errs, fmt.Errorf("SUN_DEPRESSION must be between -5 and 20 degrees, got %v", c.SunDepression))
	}
	if c.ZmanimCacheSize < 0 {
		errs = append(errs, fmt.Errorf("ZMANIM_CACHE_SIZE must not be negative, got %d", c.ZmanimCacheSize))
	}
	if c.HorizonDays < 1 || c.HorizonDays > maxHorizonDays {
		errs = append(errs, fmt.Errorf("HORIZON_DAYS must be between 1 and %d, got %d", maxHorizonDays, c.HorizonDays))
	}

	if c.CacheWarmCron != "" {
		if _, err := cron.ParseStandard(c.CacheWarmCron); err != nil {
			errs = append(errs, fmt.Errorf("CACHE_WARM_CRON %q: %w", c.CacheWarmCron, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Location returns the default time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// envReader reads typed variables and remembers the ones that fail to
// parse.
type envReader struct {
	errs error
}

// lookup returns the variable whenever it is set, even to "".
func (e *envReader) lookup(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func (e *envReader) str(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (e *envReader) integer(key string, fallback int) int {
	return parseEnv(e, key, fallback, strconv.Atoi)
}

func (e *envReader) float(key string, fallback float64) float64 {
	return parseEnv(e, key, fallback, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func (e *envReader) boolean(key string, fallback bool) bool {
	return parseEnv(e, key, fallback, strconv.ParseBool)
}

func parseEnv[T any](e *envReader, key string, fallback T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	v, err := parse(value)
	if err != nil {
		e.errs = errors.Join(e.errs, fmt.Errorf("%s: cannot parse %q", key, value))
		return fallback
	}
	return v
}
