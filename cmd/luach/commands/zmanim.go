package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/luach-api/internal/geo"
	"github.com/zapponejosh/luach-api/internal/zmanim"
)

// coordFlags are the location flags shared by zmanim and events.
type coordFlags struct {
	lat, lon  float64
	elevation float64
	candle    int
	havdalah  int
}

func (f *coordFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude in decimal degrees, north positive")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "longitude in decimal degrees, east positive")
	cmd.Flags().Float64Var(&f.elevation, "elevation", 0, "observer elevation in metres")
	cmd.Flags().IntVar(&f.candle, "candle", 18, "candle lighting minutes before sunset")
	cmd.Flags().IntVar(&f.havdalah, "havdalah", 50, "havdalah minutes after sunset")
}

func (f *coordFlags) coordinate() (geo.Coordinate, error) {
	return geo.NewCoordinate(f.lat, f.lon)
}

func (f *coordFlags) options() (zmanim.Options, error) {
	return zmanim.NewOptions(f.candle, f.havdalah)
}

func zmanimCmd() *cobra.Command {
	var (
		flags coordFlags
		daily bool
	)
	cmd := &cobra.Command{
		Use:   "zmanim [YYYY-MM-DD|today]",
		Short: "Print Sabbath times for the week of a date, or one day's times",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args)
			if err != nil {
				return err
			}
			coord, err := flags.coordinate()
			if err != nil {
				return err
			}
			engine, err := appCtx.engines.For(flags.elevation)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer tw.Flush()

			if daily {
				d, err := engine.Daily(coord, date)
				if err != nil {
					return err
				}
				d = d.In(appCtx.tz)
				if asJSON {
					return printJSON(cmd, d)
				}
				fmt.Fprintf(tw, "Date\t%s\n", d.Date)
				fmt.Fprintf(tw, "Sunrise\t%s\n", clock(d.Sunrise))
				fmt.Fprintf(tw, "Sof zman shma\t%s\n", clock(d.SofZmanShma))
				fmt.Fprintf(tw, "Sof zman tfilla\t%s\n", clock(d.SofZmanTfilla))
				fmt.Fprintf(tw, "Chatzot\t%s\n", clock(d.Chatzot))
				fmt.Fprintf(tw, "Mincha gedola\t%s\n", clock(d.MinchaGedola))
				fmt.Fprintf(tw, "Mincha ketana\t%s\n", clock(d.MinchaKetana))
				fmt.Fprintf(tw, "Plag hamincha\t%s\n", clock(d.PlagHaMincha))
				fmt.Fprintf(tw, "Sunset\t%s\n", clock(d.Sunset))
				return nil
			}

			opts, err := flags.options()
			if err != nil {
				return err
			}
			z, err := engine.Weekly(coord, date, opts)
			if err != nil {
				return err
			}
			z = z.In(appCtx.tz)
			if asJSON {
				return printJSON(cmd, z)
			}
			fmt.Fprintf(tw, "Friday\t%s\n", z.Friday)
			fmt.Fprintf(tw, "Candle lighting\t%s\n", clock(z.CandleLighting))
			fmt.Fprintf(tw, "Sunset\t%s\n", clock(z.FridaySunset))
			fmt.Fprintf(tw, "Saturday\t%s\n", z.Saturday)
			fmt.Fprintf(tw, "Sunrise\t%s\n", clock(z.Sunrise))
			fmt.Fprintf(tw, "Sof zman shma\t%s\n", clock(z.SofZmanShma))
			fmt.Fprintf(tw, "Sof zman tfilla\t%s\n", clock(z.SofZmanTfilla))
			fmt.Fprintf(tw, "Chatzot\t%s\n", clock(z.Chatzot))
			fmt.Fprintf(tw, "Plag hamincha\t%s\n", clock(z.PlagHaMincha))
			fmt.Fprintf(tw, "Sunset\t%s\n", clock(z.Sunset))
			fmt.Fprintf(tw, "Havdalah\t%s\n", clock(z.Havdalah))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&daily, "daily", false, "print one day's times instead of the week's Sabbath times")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")
	return cmd
}
