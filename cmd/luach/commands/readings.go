package commands

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/events"
	"github.com/zapponejosh/luach-api/internal/ics"
	"github.com/zapponejosh/luach-api/internal/parasha"
)

func parashaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parasha [YYYY-MM-DD|today]",
		Short: "Print the Torah portion read on the Sabbath on or after a date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args)
			if err != nil {
				return err
			}
			r, err := appCtx.readings.For(date, diaspora)
			var fe *parasha.FestivalError
			if err != nil && !errors.As(err, &fe) {
				return err
			}

			if asJSON {
				return printJSON(cmd, r)
			}
			out := cmd.OutOrStdout()
			if !r.Regular() {
				fmt.Fprintf(out, "%s %s: %s, festival reading\n", r.Date, r.Hebrew, r.Festival)
				return nil
			}
			fmt.Fprintf(out, "%s %s: Parashat %s (%s)\n", r.Date, r.Hebrew, r.Name(), r.Portions[0].Book)
			return nil
		},
	}
}

func holidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holidays YEAR",
		Short: "List the holidays of a Hebrew year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			list, err := appCtx.holidays.ForYear(year, diaspora)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			for _, e := range list {
				fmt.Fprintf(out, "%s %-9s %-28s %s\n", e.Date, calendar.DayName(e.Date.Weekday()), e.Name, e.Type)
			}
			return nil
		},
	}
}

func eventsCmd() *cobra.Command {
	var (
		flags coordFlags
		from  string
		days  int
		asICS bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List upcoming holidays, portions and, with --lat/--lon, Sabbath times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dateArgs []string
			if from != "" {
				dateArgs = []string{from}
			}
			start, err := parseDate(dateArgs)
			if err != nil {
				return err
			}

			cfg := events.Config{Diaspora: diaspora}
			hasPlace := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
			if hasPlace {
				coord, err := flags.coordinate()
				if err != nil {
					return err
				}
				opts, err := flags.options()
				if err != nil {
					return err
				}
				cfg.Location = &events.Location{Coordinate: coord, TimeZone: appCtx.tz, Options: opts}
			}
			engine, err := appCtx.engines.For(flags.elevation)
			if err != nil {
				return err
			}
			agg, err := events.NewAggregator(engine, cfg)
			if err != nil {
				return err
			}
			seq, err := agg.Upcoming(start, days)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asICS:
				return ics.Write(out, "Luach", seq, now().UTC())
			case asJSON:
				return printJSON(cmd, slices.Collect(seq))
			}
			for e := range seq {
				at := ""
				if e.Time != nil {
					at = clock(*e.Time)
				}
				fmt.Fprintf(out, "%s %-9s %-8s %s\n", e.Date, calendar.DayName(e.Date.Weekday()), at, e.Name)
			}
			appCtx.logger.Debug("events listed", "from", start.String(), "days", days)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 30, "number of days to cover")
	cmd.Flags().BoolVar(&asICS, "ics", false, "write an iCalendar file to stdout")
	return cmd
}
