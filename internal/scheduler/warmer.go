// Package scheduler runs periodic background work: currently, warming the
// zmanim memo for saved locations before visitors ask for them.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/database"
	"github.com/zapponejosh/luach-api/internal/zmanim"
)

var warmRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "luach_cache_warm_runs_total",
		Help: "Cache warmer runs by result",
	},
	[]string{"result"},
)

// warmWeeks is how many weeks ahead each location is computed.
const warmWeeks = 2

// LocationLister supplies the locations to warm.
type LocationLister interface {
	ListLocations(ctx context.Context) ([]database.Location, error)
}

// Warmer precomputes weekly zmanim for every saved location on a cron
// schedule.
type Warmer struct {
	cron    *cron.Cron
	source  LocationLister
	engines *zmanim.Pool
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

// NewWarmer returns a stopped warmer.
func NewWarmer(source LocationLister, engines *zmanim.Pool, logger *slog.Logger) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warmer{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		source:  source,
		engines: engines,
		logger:  logger,
		now:     time.Now,
		timeout: time.Minute,
	}
}

// Start schedules Warm with a standard five-field cron spec and starts the
// cron loop.
func (w *Warmer) Start(spec string) error {
	_, err := w.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		if _, err := w.Warm(ctx); err != nil {
			w.logger.Error("cache warm failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cache warmer %q: %w", spec, err)
	}
	w.cron.Start()
	w.logger.Info("cache warmer scheduled", slog.String("spec", spec))
	return nil
}

// Stop halts scheduling and waits for a running job, or for ctx.
func (w *Warmer) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Warm computes the current and following weeks for every saved location
// and returns how many weeks were computed. Locations the sun does not
// rise or set over are skipped.
func (w *Warmer) Warm(ctx context.Context) (int, error) {
	locations, err := w.source.ListLocations(ctx)
	if err != nil {
		warmRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("list locations: %w", err)
	}

	now := w.now()
	warmed := 0
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			warmRuns.WithLabelValues("error").Inc()
			return warmed, err
		}

		engine, err := w.engines.For(loc.Elevation)
		if err != nil {
			w.logger.Warn("skipping location", slog.String("location", loc.Name), slog.Any("error", err))
			continue
		}
		today := calendar.DateOf(now.In(loc.TimeZone()))
		for week := range warmWeeks {
			date := today.AddDays(7 * week)
			if _, err := engine.Weekly(loc.Coordinate(), date, loc.Options()); err != nil {
				w.logger.Debug("week not warmed",
					slog.String("location", loc.Name),
					slog.String("date", date.String()),
					slog.Any("error", err),
				)
				continue
			}
			warmed++
		}
	}

	warmRuns.WithLabelValues("ok").Inc()
	w.logger.Info("cache warmed", slog.Int("locations", len(locations)), slog.Int("weeks", warmed))
	return warmed, nil
}
