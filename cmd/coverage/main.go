// Command coverage walks a range of Hebrew years and checks the calendar
// engine against its own invariants:
//
//   - every civil day converts to a Hebrew date and back to the same day
//   - year lengths are one of the six legal values and leap years follow
//     the 19 year cycle
//   - the weekly portions form an unbroken cycle in both Israel and the
//     diaspora
//   - every festival table builds and is in order
//
// Usage:
//
//	go run ./cmd/coverage -start 5780 -years 20 -o coverage.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/holiday"
	"github.com/zapponejosh/luach-api/internal/parasha"
)

// Check names.
const (
	checkRoundTrip = "round-trip"
	checkYear      = "year-length"
	checkCycle     = "leap-cycle"
	checkParasha   = "parasha"
	checkHolidays  = "holidays"
)

var legalLengths = []int{353, 354, 355, 383, 384, 385}

// Failure is one broken invariant.
type Failure struct {
	Year   int    `json:"year"`
	Check  string `json:"check"`
	Detail string `json:"detail"`
}

// YearStats counts what was checked in one Hebrew year.
type YearStats struct {
	Year     int    `json:"year"`
	Keviah   string `json:"keviah"`
	Days     int    `json:"days"`
	Sabbaths int    `json:"sabbaths"`
	Holidays int    `json:"holidays"`
	Failures int    `json:"failures"`
}

// Analysis holds the results of a run.
type Analysis struct {
	StartYear   int            `json:"start_year"`
	EndYear     int            `json:"end_year"`
	TotalDays   int            `json:"total_days"`
	ByYear      []*YearStats   `json:"by_year"`
	ByCheck     map[string]int `json:"by_check"`
	AllFailures []Failure      `json:"failures"`

	// last portion index read, per mode, carried across years
	prevPortion map[bool]int
	verbose     io.Writer
}

func main() {
	startYear := flag.Int("start", 5780, "First Hebrew year to check")
	years := flag.Int("years", 20, "Number of years to check")
	verbose := flag.Bool("v", false, "Verbose output (show each year)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	if *years < 1 {
		fmt.Println("Error: -years must be at least 1")
		os.Exit(2)
	}
	endYear := *startYear + *years - 1

	fmt.Println("================================================================")
	fmt.Println("Luach - Calendar Coverage Check")
	fmt.Println("================================================================")
	fmt.Printf("Hebrew Years: %d to %d\n", *startYear, endYear)
	fmt.Printf("Civil Range:  %s to %s\n",
		calendar.RoshHashanah(*startYear), calendar.RoshHashanah(endYear+1).AddDays(-1))
	fmt.Println()

	var progress io.Writer
	if *verbose {
		progress = os.Stdout
	}
	analysis := verify(*startYear, endYear, progress)

	printSummary(analysis)
	printFailuresByCheck(analysis)

	if *outputFile != "" {
		saveResults(*outputFile, analysis)
	}

	if len(analysis.AllFailures) > 0 {
		os.Exit(1)
	}
}

// verify checks every year in [startYear, endYear]. When progress is not nil
// a line per year is written to it.
func verify(startYear, endYear int, progress io.Writer) *Analysis {
	a := &Analysis{
		StartYear:   startYear,
		EndYear:     endYear,
		ByCheck:     make(map[string]int),
		prevPortion: map[bool]int{false: -1, true: -1},
		verbose:     progress,
	}
	readings := parasha.NewScheduler()
	holidays := holiday.NewCalendar()

	for year := startYear; year <= endYear; year++ {
		stats := &YearStats{Year: year}
		a.ByYear = append(a.ByYear, stats)

		kt := calendar.Keviah(year)
		stats.Keviah = kt.Code()
		a.checkLength(stats, kt)
		if year == startYear || calendar.CyclePosition(year) == 1 {
			a.checkLeapCycle(stats)
		}
		a.checkDays(stats)
		for _, diaspora := range []bool{false, true} {
			a.checkReadings(stats, readings, diaspora)
			a.checkHolidays(stats, holidays, diaspora)
		}

		if a.verbose != nil {
			status := "✓"
			if stats.Failures > 0 {
				status = "✗"
			}
			fmt.Fprintf(a.verbose, "  %s %d [%s]: %d days, %d sabbaths, %d holidays\n",
				status, year, stats.Keviah, stats.Days, stats.Sabbaths, stats.Holidays)
		}
	}
	return a
}

func (a *Analysis) fail(stats *YearStats, check, format string, args ...any) {
	stats.Failures++
	a.ByCheck[check]++
	a.AllFailures = append(a.AllFailures, Failure{
		Year:   stats.Year,
		Check:  check,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (a *Analysis) checkLength(stats *YearStats, kt calendar.YearType) {
	if !slices.Contains(legalLengths, kt.Length) {
		a.fail(stats, checkYear, "length %d", kt.Length)
	}
	leap := kt.Length > 355
	if leap != calendar.IsLeapYear(stats.Year) {
		a.fail(stats, checkYear, "length %d disagrees with leap=%v", kt.Length, calendar.IsLeapYear(stats.Year))
	}
	wantMonths := 12
	if leap {
		wantMonths = 13
	}
	if got := calendar.MonthsInYear(stats.Year); got != wantMonths {
		a.fail(stats, checkYear, "%d months, want %d", got, wantMonths)
	}
	switch kt.RoshHashanahWeekday {
	case time.Sunday, time.Wednesday, time.Friday:
		a.fail(stats, checkYear, "Rosh Hashanah on %s", calendar.DayName(kt.RoshHashanahWeekday))
	}
}

// checkLeapCycle counts leap years in the 19 year cycle containing the year.
func (a *Analysis) checkLeapCycle(stats *YearStats) {
	first := stats.Year - calendar.CyclePosition(stats.Year) + 1
	leaps := 0
	for y := first; y < first+19; y++ {
		if calendar.IsLeapYear(y) {
			leaps++
		}
	}
	if leaps != 7 {
		a.fail(stats, checkCycle, "cycle starting %d has %d leap years", first, leaps)
	}
}

func (a *Analysis) checkDays(stats *YearStats) {
	start := calendar.RoshHashanah(stats.Year)
	end := calendar.RoshHashanah(stats.Year + 1)
	if n := start.DaysUntil(end); n != calendar.DaysInYear(stats.Year) {
		a.fail(stats, checkYear, "Rosh Hashanah to Rosh Hashanah is %d days, year has %d", n, calendar.DaysInYear(stats.Year))
	}

	var prev calendar.HebrewDate
	for d := start; d.Before(end); d = d.AddDays(1) {
		stats.Days++
		a.TotalDays++

		h, err := calendar.ToHebrew(d)
		if err != nil {
			a.fail(stats, checkRoundTrip, "%s: %v", d, err)
			continue
		}
		if h.Year != stats.Year {
			a.fail(stats, checkRoundTrip, "%s converts to year %d", d, h.Year)
		}
		if err := h.Validate(); err != nil {
			a.fail(stats, checkRoundTrip, "%s converts to invalid %s: %v", d, h, err)
		}
		back, err := calendar.ToCivil(h)
		if err != nil {
			a.fail(stats, checkRoundTrip, "%s: %v", h, err)
		} else if back != d {
			a.fail(stats, checkRoundTrip, "%s -> %s -> %s", d, h, back)
		}

		if d != start {
			sameMonth := h.Month == prev.Month && h.Day == prev.Day+1
			newMonth := h.Day == 1 && prev.Day == calendar.DaysInMonth(prev.Year, prev.Month)
			if !sameMonth && !newMonth {
				a.fail(stats, checkRoundTrip, "%s follows %s", h, prev)
			}
		}
		prev = h
	}
}

// checkReadings follows the portion index across years: each regular
// portion continues from the previous one and Ha'Azinu wraps to Bereshit.
func (a *Analysis) checkReadings(stats *YearStats, s *parasha.Scheduler, diaspora bool) {
	readings, err := s.Year(stats.Year, diaspora)
	if err != nil {
		a.fail(stats, checkParasha, "diaspora=%v: %v", diaspora, err)
		a.prevPortion[diaspora] = -1
		return
	}
	if !diaspora {
		stats.Sabbaths = len(readings)
	}

	all := parasha.All()
	haazinu, bereshit := len(all)-2, 0
	for _, r := range readings {
		if r.Date.Weekday() != time.Saturday {
			a.fail(stats, checkParasha, "%s is not a Sabbath", r.Date)
		}
		for _, p := range r.Portions {
			prev := a.prevPortion[diaspora]
			if prev >= 0 {
				want := prev + 1
				if prev == haazinu {
					want = bereshit
				}
				if p.Index != want {
					a.fail(stats, checkParasha, "%s (diaspora=%v): %s after %s, want %s",
						r.Date, diaspora, p.Name, all[prev].Name, all[want].Name)
				}
			}
			a.prevPortion[diaspora] = p.Index
		}
	}
}

func (a *Analysis) checkHolidays(stats *YearStats, c *holiday.Calendar, diaspora bool) {
	events, err := c.ForYear(stats.Year, diaspora)
	if err != nil {
		a.fail(stats, checkHolidays, "diaspora=%v: %v", diaspora, err)
		return
	}
	if !diaspora {
		stats.Holidays = len(events)
	}
	if !slices.IsSortedFunc(events, holiday.Compare) {
		a.fail(stats, checkHolidays, "diaspora=%v: events out of order", diaspora)
	}
	for _, e := range events {
		if e.Hebrew.Year != stats.Year {
			a.fail(stats, checkHolidays, "%s on %s belongs to year %d", e.Name, e.Date, e.Hebrew.Year)
		}
	}
}

func printSummary(a *Analysis) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Years Checked:     %d\n", len(a.ByYear))
	fmt.Printf("Days Checked:      %d\n", a.TotalDays)
	fmt.Printf("Failures:          %d\n", len(a.AllFailures))
	fmt.Println()

	fmt.Println("By Year:")
	for _, stats := range a.ByYear {
		status := "✓"
		if stats.Failures > 0 {
			status = "✗"
		}
		fmt.Printf("  %s %d [%s]: %d days, %d failures\n",
			status, stats.Year, stats.Keviah, stats.Days, stats.Failures)
	}
	fmt.Println()
}

func printFailuresByCheck(a *Analysis) {
	if len(a.AllFailures) == 0 {
		fmt.Println("No failures! 🎉")
		return
	}

	fmt.Println("================================================================")
	fmt.Println("FAILURES BY CHECK")
	fmt.Println("================================================================")

	checks := make([]string, 0, len(a.ByCheck))
	for check := range a.ByCheck {
		checks = append(checks, check)
	}
	sort.Slice(checks, func(i, j int) bool {
		return a.ByCheck[checks[i]] > a.ByCheck[checks[j]]
	})

	for _, check := range checks {
		fmt.Printf("\n%s: %d failures\n", check, a.ByCheck[check])
		shown := 0
		for _, f := range a.AllFailures {
			if f.Check != check {
				continue
			}
			if shown >= 5 {
				fmt.Printf("  ... and %d more\n", a.ByCheck[check]-5)
				break
			}
			fmt.Printf("  - %d: %s\n", f.Year, f.Detail)
			shown++
		}
	}
	fmt.Println()
}

func saveResults(filename string, a *Analysis) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		fmt.Printf("Error writing results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", filename)
}
