package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dukerupert/movienight/internal/model"
)

func TestExport(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	notes := "Bring popcorn"
	genre := "Horror"
	nights := []model.MovieNight{
		{ID: 1, MovieTitle: "Alien", ScheduledDate: model.NewDate(2026, time.October, 31), StartTime: "19:30:00", Notes: &notes, Genre: &genre},
		{ID: 2, MovieTitle: "Heat", ScheduledDate: model.NewDate(2026, time.November, 7), StartTime: "21:00"},
	}
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

	out := Export("Ann Lee", nights, loc, now)
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, productID) {
		t.Fatalf("not a calendar:\n%s", out)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse exported calendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	ev := events[0]
	if p := ev.GetProperty(ical.ComponentPropertyUniqueId); p == nil || p.Value != "movienight-1@movienight" {
		t.Errorf("uid = %v", p)
	}
	if p := ev.GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Alien" {
		t.Errorf("summary = %v", p)
	}
	if p := ev.GetProperty(ical.ComponentPropertyDescription); p == nil || p.Value != "Bring popcorn" {
		t.Errorf("description = %v", p)
	}

	start, err := ev.GetStartAt()
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, time.October, 31, 19, 30, 0, 0, loc)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	end, _ := ev.GetEndAt()
	if end.Sub(start) != Duration {
		t.Errorf("duration = %v", end.Sub(start))
	}

	if events[1].GetProperty(ical.ComponentPropertyDescription) != nil {
		t.Error("night without notes should have no description")
	}
}

func TestStartFallback(t *testing.T) {
	n := model.MovieNight{ScheduledDate: model.NewDate(2026, time.October, 20), StartTime: "late"}
	got := Start(n, time.UTC)
	if got.Hour() != 19 || got.Minute() != 0 {
		t.Errorf("start = %v, want 19:00", got)
	}
}

func TestExportEmpty(t *testing.T) {
	out := Export("", nil, time.UTC, time.Now())
	if !strings.Contains(out, "END:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
