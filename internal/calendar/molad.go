package calendar

import "time"

// Molad is the mean lunar conjunction that opens a Hebrew month, in the
// traditional reckoning of hours and chalakim (1/1080 hour) counted from
// midnight of the civil day.
type Molad struct {
	Year     int          `json:"year"`
	Month    Month        `json:"month"`
	Date     CivilDate    `json:"date"`
	Weekday  time.Weekday `json:"weekday"`
	Hour     int          `json:"hour"`
	Minute   int          `json:"minute"`
	Chalakim int          `json:"chalakim"`
}

// moladBaharad is BaHaRaD (Sunday night, 5 hours 204 chalakim), expressed
// in chalakim relative to the midnight that begins the epoch day.
const moladBaharad = -876

// MoladOf computes the molad of month in year.
func MoladOf(year int, month Month) (Molad, error) {
	if err := (HebrewDate{Year: year, Month: month, Day: 1}).Validate(); err != nil {
		return Molad{}, err
	}

	// Nisan through Elul belong to the lunations counted towards the next Tishrei.
	y := year
	if month < Tishrei {
		y = year + 1
	}
	elapsed := int(month-Tishrei) + monthsElapsed(y)
	parts := moladBaharad + elapsed*lunationParts

	day := hebrewEpoch + floorDiv(parts, partsPerDay)
	rem := mod(parts, partsPerDay)
	chalakim := rem % partsPerHour

	date := FromFixed(day)
	return Molad{
		Year:     year,
		Month:    month,
		Date:     date,
		Weekday:  date.Weekday(),
		Hour:     rem / partsPerHour,
		Minute:   chalakim / 18,
		Chalakim: chalakim % 18,
	}, nil
}
