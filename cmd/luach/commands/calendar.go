package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/holiday"
)

type dateInfo struct {
	Date       calendar.CivilDate  `json:"date"`
	Weekday    string              `json:"weekday"`
	Hebrew     calendar.HebrewDate `json:"hebrew"`
	Formatted  string              `json:"formatted"`
	KeviahCode string              `json:"keviah_code"`
	Events     []holiday.Event     `json:"events,omitempty"`
}

func newDateInfo(d calendar.CivilDate, h calendar.HebrewDate) (dateInfo, error) {
	events, err := appCtx.holidays.On(d, diaspora)
	if err != nil {
		return dateInfo{}, err
	}
	return dateInfo{
		Date:       d,
		Weekday:    calendar.DayName(d.Weekday()),
		Hebrew:     h,
		Formatted:  h.String(),
		KeviahCode: calendar.Keviah(h.Year).Code(),
		Events:     events,
	}, nil
}

func printDateInfo(cmd *cobra.Command, info dateInfo) error {
	if asJSON {
		return printJSON(cmd, info)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", info.Date, info.Weekday)
	fmt.Fprintf(out, "%s (%s)\n", info.Formatted, calendar.HebrewMonthName(info.Hebrew.Year, info.Hebrew.Month))
	for _, e := range info.Events {
		fmt.Fprintf(out, "  %s\n", e.Name)
	}
	return nil
}

func dateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date [YYYY-MM-DD|today]",
		Short: "Convert a civil date to the Hebrew calendar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(args)
			if err != nil {
				return err
			}
			h, err := calendar.ToHebrew(d)
			if err != nil {
				return err
			}
			info, err := newDateInfo(d, h)
			if err != nil {
				return err
			}
			return printDateInfo(cmd, info)
		},
	}
}

func civilCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "civil YEAR MONTH DAY",
		Short:   "Convert a Hebrew date to the civil calendar",
		Example: "  luach civil 5785 Tishrei 1\n  luach civil 5784 \"Adar II\" 14",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			month, err := calendar.ParseMonth(year, args[1])
			if err != nil {
				return err
			}
			day, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid day %q", args[2])
			}

			h := calendar.HebrewDate{Year: year, Month: month, Day: day}
			d, err := calendar.ToCivil(h)
			if err != nil {
				return err
			}
			info, err := newDateInfo(d, h)
			if err != nil {
				return err
			}
			return printDateInfo(cmd, info)
		},
	}
}

func moladCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "molad YEAR MONTH",
		Short: "Print the molad of a Hebrew month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			month, err := calendar.ParseMonth(year, args[1])
			if err != nil {
				return err
			}
			m, err := calendar.MoladOf(year, month)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Molad %s %d: %s %s, %d:%02d and %d chalakim\n",
				calendar.MonthName(year, month), year, calendar.DayName(m.Weekday), m.Date, m.Hour, m.Minute, m.Chalakim)
			return nil
		},
	}
}

// keyDays are the holidays the year command lists.
var keyDays = []string{
	"Rosh Hashanah I",
	"Yom Kippur",
	"Sukkot I",
	"Chanukah: 1st Day",
	"Purim",
	"Pesach I",
	"Shavuot I",
	"Tish'a B'Av",
}

type yearInfo struct {
	calendar.YearType
	Code     string          `json:"code"`
	Months   []string        `json:"months"`
	KeyDates []holiday.Event `json:"key_dates"`
}

func yearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "year YEAR",
		Short: "Print the keviah and key dates of a Hebrew year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			all, err := appCtx.holidays.ForYear(year, diaspora)
			if err != nil {
				return err
			}

			k := calendar.Keviah(year)
			info := yearInfo{YearType: k, Code: k.Code()}
			for m := calendar.Tishrei; ; m++ {
				if int(m) > calendar.MonthsInYear(year) {
					m = calendar.Nisan
				}
				info.Months = append(info.Months, fmt.Sprintf("%s (%d)", calendar.MonthName(year, m), calendar.DaysInMonth(year, m)))
				if m == calendar.Elul {
					break
				}
			}
			for _, e := range all {
				for _, name := range keyDays {
					if e.Name == name {
						info.KeyDates = append(info.KeyDates, e)
					}
				}
			}

			if asJSON {
				return printJSON(cmd, info)
			}
			out := cmd.OutOrStdout()
			kind := "common"
			if k.Leap {
				kind = "leap"
			}
			fmt.Fprintf(out, "Year %d: %s, %d days, %s, keviah %s\n", year, kind, k.Length, k.Kind, info.Code)
			fmt.Fprintf(out, "Rosh Hashanah on %s, Pesach on %s\n", calendar.DayName(k.RoshHashanahWeekday), calendar.DayName(k.PesachWeekday))
			fmt.Fprintf(out, "Months: %v\n", info.Months)
			for _, e := range info.KeyDates {
				fmt.Fprintf(out, "  %s %-9s %s\n", e.Date, calendar.DayName(e.Date.Weekday()), e.Name)
			}
			return nil
		},
	}
}
