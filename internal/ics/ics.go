// Package ics renders calendar events as an RFC 5545 VCALENDAR.
package ics

import (
	"fmt"
	"io"
	"iter"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/zapponejosh/luach-api/internal/holiday"
)

// ProductID identifies the generator in PRODID.
const ProductID = "-//luach-api//Hebrew Calendar//EN"

// uidNamespace seeds the deterministic event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/zapponejosh/luach-api"))

// Build assembles a published calendar. stamp becomes every DTSTAMP so that
// the same events always serialize identically.
func Build(name string, events iter.Seq[holiday.Event], stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendarFor("luach-api")
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetName(name)
	cal.SetXWRCalName(name)

	for e := range events {
		ev := cal.AddEvent(UID(e))
		ev.SetDtStampTime(stamp)
		ev.SetSummary(e.Name)
		ev.SetDescription(e.Hebrew.String())
		ev.SetProperty(ical.ComponentPropertyCategories, string(e.Type))
		if e.Time != nil {
			ev.SetStartAt(*e.Time)
			ev.SetEndAt(*e.Time)
			continue
		}
		ev.SetAllDayStartAt(e.Date.Time())
		ev.SetAllDayEndAt(e.Date.AddDays(1).Time())
	}
	return cal
}

// Write serializes the calendar built from events to w.
func Write(w io.Writer, name string, events iter.Seq[holiday.Event], stamp time.Time) error {
	if err := Build(name, events, stamp).SerializeTo(w); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// UID derives a stable identifier from the event's name and date.
func UID(e holiday.Event) string {
	key := fmt.Sprintf("%s|%s|%s", e.Date, e.Type, e.Name)
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@luach-api"
}
