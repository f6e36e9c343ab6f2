package calendar

import (
	"fmt"
	"strconv"
	"strings"
)

// Month is a Hebrew month, numbered from Nisan as in the Torah.
// The civil year count restarts at Tishrei.
type Month int

const (
	Nisan Month = iota + 1
	Iyyar
	Sivan
	Tamuz
	Av
	Elul
	Tishrei
	Cheshvan
	Kislev
	Tevet
	Shvat
	Adar // Adar I in leap years
	AdarII
)

// Adar1 is an alias used when the year is known to be leap.
const Adar1 = Adar

// hebrewEpoch is the fixed day number of 1 Tishrei AM 1.
const hebrewEpoch = -1373427

// Year bounds accepted by the converter. Dates must additionally fall
// inside the civil range on conversion.
const (
	MinHebrewYear = 3761
	MaxHebrewYear = 13760
)

// Time units of the molad reckoning.
const (
	partsPerHour  = 1080
	partsPerDay   = 24 * partsPerHour
	lunationParts = 29*partsPerDay + 12*partsPerHour + 793
)

var monthNames = map[Month]string{
	Nisan:    "Nisan",
	Iyyar:    "Iyyar",
	Sivan:    "Sivan",
	Tamuz:    "Tamuz",
	Av:       "Av",
	Elul:     "Elul",
	Tishrei:  "Tishrei",
	Cheshvan: "Cheshvan",
	Kislev:   "Kislev",
	Tevet:    "Tevet",
	Shvat:    "Sh'vat",
	Adar:     "Adar",
	AdarII:   "Adar II",
}

var hebrewMonthNames = map[Month]string{
	Nisan:    "ניסן",
	Iyyar:    "אייר",
	Sivan:    "סיון",
	Tamuz:    "תמוז",
	Av:       "אב",
	Elul:     "אלול",
	Tishrei:  "תשרי",
	Cheshvan: "חשון",
	Kislev:   "כסלו",
	Tevet:    "טבת",
	Shvat:    "שבט",
	Adar:     "אדר",
	AdarII:   "אדר ב׳",
}

// String returns the transliterated month name without leap-year context.
func (m Month) String() string {
	if name, ok := monthNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Month(%d)", int(m))
}

// MonthName returns the transliterated name of m in year, distinguishing
// Adar I from plain Adar.
func MonthName(year int, m Month) string {
	if m == Adar && IsLeapYear(year) {
		return "Adar I"
	}
	return m.String()
}

// ParseMonth accepts a month number or a transliterated name as printed by
// MonthName ("Tishrei", "Adar I", "Adar II"), case-insensitively. Plain
// "Adar" in a leap year means Adar II, the month of Purim.
func ParseMonth(year int, s string) (Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := Month(n)
		if m < Nisan || int(m) > MonthsInYear(year) {
			return 0, fmt.Errorf("%w: month %d does not exist in %d", ErrOutOfRange, n, year)
		}
		return m, nil
	}
	if strings.EqualFold(s, "Adar") && IsLeapYear(year) {
		return AdarII, nil
	}
	for m := Nisan; int(m) <= MonthsInYear(year); m++ {
		if strings.EqualFold(s, MonthName(year, m)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown month %q in %d", ErrOutOfRange, s, year)
}

// HebrewMonthName returns the name of m in Hebrew script.
func HebrewMonthName(year int, m Month) string {
	if m == Adar && IsLeapYear(year) {
		return "אדר א׳"
	}
	return hebrewMonthNames[m]
}

// HebrewDate is a day in the Hebrew calendar.
type HebrewDate struct {
	Year  int   `json:"year"`
	Month Month `json:"month"`
	Day   int   `json:"day"`
}

// String renders the date as "1 Tishrei 5785".
func (h HebrewDate) String() string {
	return fmt.Sprintf("%d %s %d", h.Day, MonthName(h.Year, h.Month), h.Year)
}

// Validate checks the year bound, that the month exists in the year and
// that the day fits the month.
func (h HebrewDate) Validate() error {
	if h.Year < MinHebrewYear || h.Year > MaxHebrewYear {
		return fmt.Errorf("%w: hebrew year %d outside [%d, %d]", ErrOutOfRange, h.Year, MinHebrewYear, MaxHebrewYear)
	}
	if h.Month < Nisan || int(h.Month) > MonthsInYear(h.Year) {
		return fmt.Errorf("%w: month %d does not exist in %d", ErrOutOfRange, int(h.Month), h.Year)
	}
	if h.Day < 1 || h.Day > DaysInMonth(h.Year, h.Month) {
		return fmt.Errorf("%w: day %d outside %s %d", ErrOutOfRange, h.Day, MonthName(h.Year, h.Month), h.Year)
	}
	return nil
}

// =============================================================================
// Year structure
// =============================================================================

// IsLeapYear reports whether year has thirteen months: positions
// 3, 6, 8, 11, 14, 17 and 19 of the 19-year cycle.
func IsLeapYear(year int) bool {
	return mod(7*year+1, 19) < 7
}

// MonthsInYear returns 13 for leap years and 12 otherwise.
func MonthsInYear(year int) int {
	if IsLeapYear(year) {
		return 13
	}
	return 12
}

// monthsElapsed counts lunations from the epoch to Tishrei of year.
func monthsElapsed(year int) int {
	return floorDiv(235*year-234, 19)
}

// calendarElapsedDays is the day offset of Rosh Hashanah from the epoch
// after the molad zaken and lo ADU postponements.
func calendarElapsedDays(year int) int {
	months := monthsElapsed(year)
	parts := 12084 + 13753*months
	day := 29*months + floorDiv(parts, partsPerDay)
	if mod(3*(day+1), 7) < 3 {
		return day + 1
	}
	return day
}

// yearLengthCorrection applies the GaTaRaD and BeTU'TaKPaT postponements,
// keeping every year length inside the six permitted values.
func yearLengthCorrection(year int) int {
	ny0 := calendarElapsedDays(year - 1)
	ny1 := calendarElapsedDays(year)
	ny2 := calendarElapsedDays(year + 1)
	switch {
	case ny2-ny1 == 356:
		return 2
	case ny1-ny0 == 382:
		return 1
	}
	return 0
}

// newYear is the fixed day number of 1 Tishrei of year.
func newYear(year int) int {
	return hebrewEpoch + calendarElapsedDays(year) + yearLengthCorrection(year)
}

// RoshHashanah returns the civil date of 1 Tishrei of year.
func RoshHashanah(year int) CivilDate {
	return FromFixed(newYear(year))
}

// DaysInYear returns 353, 354, 355, 383, 384 or 385.
func DaysInYear(year int) int {
	return newYear(year+1) - newYear(year)
}

func longCheshvan(year int) bool {
	return DaysInYear(year)%10 == 5
}

func shortKislev(year int) bool {
	return DaysInYear(year)%10 == 3
}

// DaysInMonth returns 29 or 30.
func DaysInMonth(year int, m Month) int {
	switch {
	case m == Iyyar, m == Tamuz, m == Elul, m == Tevet, m == AdarII:
		return 29
	case m == Adar && !IsLeapYear(year):
		return 29
	case m == Cheshvan && !longCheshvan(year):
		return 29
	case m == Kislev && shortKislev(year):
		return 29
	}
	return 30
}

// lastMonth is Adar in common years and Adar II in leap years.
func lastMonth(year int) Month {
	return Month(MonthsInYear(year))
}

// =============================================================================
// Conversion
// =============================================================================

func fixedFromHebrew(h HebrewDate) int {
	fixed := newYear(h.Year) + h.Day - 1
	if h.Month < Tishrei {
		for m := Tishrei; m <= lastMonth(h.Year); m++ {
			fixed += DaysInMonth(h.Year, m)
		}
		for m := Nisan; m < h.Month; m++ {
			fixed += DaysInMonth(h.Year, m)
		}
	} else {
		for m := Tishrei; m < h.Month; m++ {
			fixed += DaysInMonth(h.Year, m)
		}
	}
	return fixed
}

func hebrewFromFixed(fixed int) HebrewDate {
	// 35975351/98496 is the mean year length in days.
	approx := floorDiv(98496*(fixed-hebrewEpoch), 35975351) + 1
	year := approx - 1
	for newYear(year+1) <= fixed {
		year++
	}

	start := Tishrei
	if fixed >= fixedFromHebrew(HebrewDate{Year: year, Month: Nisan, Day: 1}) {
		start = Nisan
	}
	m := start
	for fixed > fixedFromHebrew(HebrewDate{Year: year, Month: m, Day: DaysInMonth(year, m)}) {
		m++
	}
	day := fixed - fixedFromHebrew(HebrewDate{Year: year, Month: m, Day: 1}) + 1
	return HebrewDate{Year: year, Month: m, Day: day}
}

// ToHebrew converts a civil date to its Hebrew date. The Hebrew day is
// taken to coincide with the civil day; the evening start is ignored.
func ToHebrew(d CivilDate) (HebrewDate, error) {
	if !d.InRange() {
		return HebrewDate{}, fmt.Errorf("%w: civil date %s", ErrOutOfRange, d)
	}
	return hebrewFromFixed(d.Fixed()), nil
}

// ToCivil converts a Hebrew date to the civil date it falls on.
func ToCivil(h HebrewDate) (CivilDate, error) {
	if err := h.Validate(); err != nil {
		return CivilDate{}, err
	}
	fixed := fixedFromHebrew(h)
	if fixed < MinCivilDate.Fixed() || fixed > MaxCivilDate.Fixed() {
		return CivilDate{}, fmt.Errorf("%w: %s has no supported civil date", ErrOutOfRange, h)
	}
	return FromFixed(fixed), nil
}
