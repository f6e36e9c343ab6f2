package calendar

import (
	"fmt"
	"time"
)

// YearKind classifies a Hebrew year by the lengths of Cheshvan and Kislev.
type YearKind string

const (
	// Deficient years have 29-day Cheshvan and Kislev (353 or 383 days).
	Deficient YearKind = "deficient"

	// Regular years have 29-day Cheshvan and 30-day Kislev (354 or 384 days).
	Regular YearKind = "regular"

	// Complete years have 30-day Cheshvan and Kislev (355 or 385 days).
	Complete YearKind = "complete"
)

// CyclePosition returns the 1-based position of year within the 19-year
// Metonic cycle. Position 19 is reported for years divisible by 19.
func CyclePosition(year int) int {
	p := mod(year, 19)
	if p == 0 {
		return 19
	}
	return p
}

// YearType is the keviah of a Hebrew year: everything the reading cycle
// and the holiday table need to know about the year's shape.
type YearType struct {
	Year                int          `json:"year"`
	Leap                bool         `json:"leap"`
	Length              int          `json:"length"`
	Kind                YearKind     `json:"kind"`
	RoshHashanah        CivilDate    `json:"rosh_hashanah"`
	RoshHashanahWeekday time.Weekday `json:"rosh_hashanah_weekday"`
	PesachWeekday       time.Weekday `json:"pesach_weekday"`
}

// Keviah classifies year by the weekday of Rosh Hashanah, its kind and
// the weekday Pesach falls on. There are fourteen possible combinations.
func Keviah(year int) YearType {
	length := DaysInYear(year)
	kind := Regular
	switch length % 10 {
	case 3:
		kind = Deficient
	case 5:
		kind = Complete
	}

	rh := RoshHashanah(year)
	pesach := FromFixed(fixedFromHebrew(HebrewDate{Year: year, Month: Nisan, Day: 15}))

	return YearType{
		Year:                year,
		Leap:                IsLeapYear(year),
		Length:              length,
		Kind:                kind,
		RoshHashanah:        rh,
		RoshHashanahWeekday: rh.Weekday(),
		PesachWeekday:       pesach.Weekday(),
	}
}

// Code returns the keviah in the form "2R5": Rosh Hashanah weekday
// (1 = Sunday), kind initial, Pesach weekday.
func (y YearType) Code() string {
	initial := map[YearKind]string{Deficient: "D", Regular: "R", Complete: "C"}[y.Kind]
	return fmt.Sprintf("%d%s%d", int(y.RoshHashanahWeekday)+1, initial, int(y.PesachWeekday)+1)
}
