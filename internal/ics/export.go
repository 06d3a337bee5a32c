// Package ics renders movie nights as an iCalendar feed.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/timefmt"
)

const (
	productID = "-//movienight//movienight client//EN"
	// Duration is how long an exported movie night lasts; the API does not
	// record end times.
	Duration = 2 * time.Hour
)

// UID is the stable event identifier for a movie night.
func UID(id int64) string {
	return fmt.Sprintf("movienight-%d@movienight", id)
}

// Start combines the scheduled date and start time in loc. A missing or
// malformed start time falls back to 19:00.
func Start(n model.MovieNight, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse("15:04:05", timefmt.WithSeconds(n.StartTime))
	if err != nil {
		t = time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC)
	}
	return time.Date(n.ScheduledDate.Year, n.ScheduledDate.Month, n.ScheduledDate.Day,
		t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// Export renders nights as a VCALENDAR named after the owner.
func Export(name string, nights []model.MovieNight, loc *time.Location, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name + " movie nights")
	}

	for _, n := range nights {
		start := Start(n, loc)
		ev := cal.AddEvent(UID(n.ID))
		ev.SetDtStampTime(now)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(Duration))
		ev.SetSummary(n.MovieTitle)
		if n.Notes != nil && *n.Notes != "" {
			ev.SetDescription(*n.Notes)
		}
		if n.ImageURL != nil && *n.ImageURL != "" {
			ev.SetURL(*n.ImageURL)
		}
		if n.Genre != nil && *n.Genre != "" {
			ev.AddProperty(ical.ComponentPropertyCategories, *n.Genre)
		}
	}
	return cal.Serialize()
}
