package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestToHebrew_KnownDates(t *testing.T) {
	tests := []struct {
		name  string
		civil CivilDate
		want  HebrewDate
	}{
		{"rosh hashanah 5785", CivilDate{2024, time.October, 3}, HebrewDate{5785, Tishrei, 1}},
		{"rosh hashanah 5784", CivilDate{2023, time.September, 16}, HebrewDate{5784, Tishrei, 1}},
		{"purim 5784 in adar II", CivilDate{2024, time.March, 24}, HebrewDate{5784, AdarII, 14}},
		{"purim katan 5784", CivilDate{2024, time.February, 23}, HebrewDate{5784, Adar1, 14}},
		{"pesach 5785", CivilDate{2025, time.April, 13}, HebrewDate{5785, Nisan, 15}},
		{"yom haatzmaut 5708", CivilDate{1948, time.May, 14}, HebrewDate{5708, Iyyar, 5}},
		{"first supported day", MinCivilDate, HebrewDate{3761, Tevet, 18}},
		{"last supported day", MaxCivilDate, HebrewDate{13760, Cheshvan, 28}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHebrew(tt.civil)
			if err != nil {
				t.Fatalf("ToHebrew(%v) error = %v", tt.civil, err)
			}
			if got != tt.want {
				t.Errorf("ToHebrew(%v) = %v, want %v", tt.civil, got, tt.want)
			}

			back, err := ToCivil(got)
			if err != nil {
				t.Fatalf("ToCivil(%v) error = %v", got, err)
			}
			if back != tt.civil {
				t.Errorf("ToCivil(%v) = %v, want %v", got, back, tt.civil)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	ranges := []struct{ from, to CivilDate }{
		{MinCivilDate, CivilDate{3, time.January, 1}},
		{CivilDate{1900, time.January, 1}, CivilDate{2100, time.January, 1}},
		{CivilDate{9997, time.January, 1}, MaxCivilDate},
	}

	for _, r := range ranges {
		prev := HebrewDate{}
		for d := r.from; !d.After(r.to); d = d.AddDays(1) {
			h, err := ToHebrew(d)
			if err != nil {
				t.Fatalf("ToHebrew(%v) error = %v", d, err)
			}
			if err := h.Validate(); err != nil {
				t.Fatalf("ToHebrew(%v) = %v invalid: %v", d, h, err)
			}
			back, err := ToCivil(h)
			if err != nil {
				t.Fatalf("ToCivil(%v) error = %v", h, err)
			}
			if back != d {
				t.Fatalf("ToCivil(ToHebrew(%v)) = %v", d, back)
			}
			if prev != (HebrewDate{}) && h.Day != prev.Day+1 && h.Day != 1 {
				t.Fatalf("day sequence broken at %v: %v after %v", d, h, prev)
			}
			prev = h
		}
	}
}

func TestOutOfRange(t *testing.T) {
	civil := []CivilDate{
		{0, time.December, 31},
		{10000, time.January, 1},
	}
	for _, d := range civil {
		if _, err := ToHebrew(d); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ToHebrew(%v) error = %v, want ErrOutOfRange", d, err)
		}
	}

	hebrew := []HebrewDate{
		{3761, Tishrei, 1}, // before civil year 1
		{13760, Kislev, 1}, // after 9999-12-31
		{MaxHebrewYear + 1, Nisan, 1},
		{5785, AdarII, 1}, // common year has no Adar II
		{5785, Tishrei, 31},
		{5785, Iyyar, 30},
		{5785, Month(0), 1},
	}
	for _, h := range hebrew {
		if _, err := ToCivil(h); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ToCivil(%+v) error = %v, want ErrOutOfRange", h, err)
		}
	}
}

func TestIsLeapYear(t *testing.T) {
	leapPositions := map[int]bool{3: true, 6: true, 8: true, 11: true, 14: true, 17: true, 19: true}

	for year := 5700; year < 5800; year++ {
		want := leapPositions[CyclePosition(year)]
		if got := IsLeapYear(year); got != want {
			t.Errorf("IsLeapYear(%d) = %v, want %v (cycle position %d)", year, got, want, CyclePosition(year))
		}

		months := 12
		if want {
			months = 13
		}
		if got := MonthsInYear(year); got != months {
			t.Errorf("MonthsInYear(%d) = %d, want %d", year, got, months)
		}
	}
}

func TestDaysInYear(t *testing.T) {
	tests := []struct {
		year int
		want int
		rh   time.Weekday
	}{
		{5781, 353, time.Saturday},
		{5782, 384, time.Tuesday},
		{5783, 355, time.Monday},
		{5784, 383, time.Saturday},
		{5785, 355, time.Thursday},
		{5786, 354, time.Tuesday},
		{5787, 385, time.Saturday},
	}

	for _, tt := range tests {
		if got := DaysInYear(tt.year); got != tt.want {
			t.Errorf("DaysInYear(%d) = %d, want %d", tt.year, got, tt.want)
		}
		if got := RoshHashanah(tt.year).Weekday(); got != tt.rh {
			t.Errorf("RoshHashanah(%d).Weekday() = %v, want %v", tt.year, got, tt.rh)
		}
	}
}

func TestYearStructure(t *testing.T) {
	allowed := map[int]bool{353: true, 354: true, 355: true, 383: true, 384: true, 385: true}

	for year := 3762; year < 6000; year++ {
		length := DaysInYear(year)
		if !allowed[length] {
			t.Fatalf("DaysInYear(%d) = %d", year, length)
		}
		if IsLeapYear(year) != (length > 355) {
			t.Fatalf("year %d: leap=%v but length %d", year, IsLeapYear(year), length)
		}

		sum := 0
		for m := Nisan; int(m) <= MonthsInYear(year); m++ {
			sum += DaysInMonth(year, m)
		}
		if sum != length {
			t.Fatalf("year %d: months sum to %d, want %d", year, sum, length)
		}

		// lo ADU Rosh: Rosh Hashanah never falls on Sunday, Wednesday or Friday.
		switch RoshHashanah(year).Weekday() {
		case time.Sunday, time.Wednesday, time.Friday:
			t.Fatalf("RoshHashanah(%d) on %v", year, RoshHashanah(year).Weekday())
		}
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(5784, Adar); got != "Adar I" {
		t.Errorf("MonthName(5784, Adar) = %q, want %q", got, "Adar I")
	}
	if got := MonthName(5785, Adar); got != "Adar" {
		t.Errorf("MonthName(5785, Adar) = %q, want %q", got, "Adar")
	}
	if got := (HebrewDate{5785, Tishrei, 1}).String(); got != "1 Tishrei 5785" {
		t.Errorf("String() = %q, want %q", got, "1 Tishrei 5785")
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		year  int
		input string
		want  Month
	}{
		{5785, "7", Tishrei},
		{5785, "tishrei", Tishrei},
		{5785, "Sh'vat", Shvat},
		{5785, "Adar", Adar},
		{5784, "Adar", AdarII},
		{5784, "Adar I", Adar1},
		{5784, "adar ii", AdarII},
		{5784, "13", AdarII},
	}
	for _, tt := range tests {
		got, err := ParseMonth(tt.year, tt.input)
		if err != nil {
			t.Errorf("ParseMonth(%d, %q) error = %v", tt.year, tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMonth(%d, %q) = %v, want %v", tt.year, tt.input, got, tt.want)
		}
	}

	for _, bad := range []string{"13", "Adar II", "Marcheshvan", "0"} {
		if _, err := ParseMonth(5785, bad); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ParseMonth(5785, %q) error = %v, want ErrOutOfRange", bad, err)
		}
	}
}
