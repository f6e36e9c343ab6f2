package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/holiday"
	"github.com/zapponejosh/luach-api/internal/logger"
	"github.com/zapponejosh/luach-api/internal/parasha"
	"github.com/zapponejosh/luach-api/internal/solar"
	"github.com/zapponejosh/luach-api/internal/zmanim"
)

var (
	diaspora   bool
	tzName     string
	asJSON     bool
	depression float64
	logLevel   string

	appCtx *app

	// now is replaced in tests.
	now = time.Now
)

// app holds what every subcommand needs.
type app struct {
	logger   *slog.Logger
	engines  *zmanim.Pool
	readings *parasha.Scheduler
	holidays *holiday.Calendar
	tz       *time.Location
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "luach",
		Short:         "Hebrew calendar, weekly portions and zmanim",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			tz, err := time.LoadLocation(tzName)
			if err != nil {
				return fmt.Errorf("time zone %q: %w", tzName, err)
			}
			engines, err := zmanim.NewPool(depression, 64)
			if err != nil {
				return err
			}
			appCtx = &app{
				logger:   logger.New(os.Stderr, logLevel, "text"),
				engines:  engines,
				readings: parasha.NewScheduler(),
				holidays: holiday.NewCalendar(),
				tz:       tz,
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&diaspora, "diaspora", true, "use the diaspora holiday and reading schedule")
	root.PersistentFlags().StringVar(&tzName, "tz", "UTC", "IANA time zone for today and for printed times")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	root.PersistentFlags().Float64Var(&depression, "depression", solar.DefaultDepression, "degrees below the horizon for sunrise and sunset")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		dateCmd(),
		civilCmd(),
		moladCmd(),
		yearCmd(),
		zmanimCmd(),
		parashaCmd(),
		holidaysCmd(),
		eventsCmd(),
	)
	return root
}

// printJSON writes v indented to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDate accepts YYYY-MM-DD or "today" in the configured zone. No
// argument also means today.
func parseDate(args []string) (calendar.CivilDate, error) {
	if len(args) == 0 || args[0] == "today" {
		return calendar.DateOf(now().In(appCtx.tz)), nil
	}
	d, err := calendar.ParseDateString(args[0])
	if err != nil {
		return calendar.CivilDate{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", args[0])
	}
	return d, nil
}

// clock formats an instant in the configured zone.
func clock(t time.Time) string {
	return t.In(appCtx.tz).Format("15:04:05")
}
