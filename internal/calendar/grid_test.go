package calendar

import (
	"testing"
	"time"

	"github.com/dukerupert/movienight/internal/model"
)

func night(id int64, d model.Date, start string) model.MovieNight {
	return model.MovieNight{ID: id, MovieTitle: "Movie", ScheduledDate: d, StartTime: start}
}

func TestGridBoundaries(t *testing.T) {
	today := model.NewDate(2026, time.October, 19)
	for _, ws := range []WeekStart{Sunday, Monday} {
		for m := time.January; m <= time.December; m++ {
			ref := model.NewDate(2026, m, 15)
			g := Build(ref, nil, today, ws)

			if len(g.Days)%7 != 0 {
				t.Fatalf("%s %s: %d days, not whole weeks", ws, m, len(g.Days))
			}
			first := g.Days[0].Date
			last := g.Days[len(g.Days)-1].Date
			if first.Weekday() != time.Weekday(ws) {
				t.Errorf("%s %s: first cell %s is a %s", ws, m, first, first.Weekday())
			}
			if last.Weekday() != (time.Weekday(ws)+6)%7 {
				t.Errorf("%s %s: last cell %s is a %s", ws, m, last, last.Weekday())
			}
			if first.After(ref.FirstOfMonth()) || last.Before(ref.LastOfMonth()) {
				t.Errorf("%s %s: grid %s..%s does not cover the month", ws, m, first, last)
			}
			for i := 1; i < len(g.Days); i++ {
				if g.Days[i].Date != g.Days[i-1].Date.AddDays(1) {
					t.Fatalf("%s %s: gap between %s and %s", ws, m, g.Days[i-1].Date, g.Days[i].Date)
				}
			}
		}
	}
}

func TestOctober2026Layout(t *testing.T) {
	today := model.NewDate(2026, time.October, 19)
	g := Build(today, nil, today, Sunday)

	// October 1st 2026 is a Thursday.
	if got := g.Days[0].Date; got != model.NewDate(2026, time.September, 27) {
		t.Errorf("first cell = %s, want 2026-09-27", got)
	}
	if got := g.Days[len(g.Days)-1].Date; got != model.NewDate(2026, time.October, 31) {
		t.Errorf("last cell = %s, want 2026-10-31", got)
	}
	if len(g.Weeks()) != 5 {
		t.Errorf("weeks = %d, want 5", len(g.Weeks()))
	}
	if g.Title() != "October 2026" {
		t.Errorf("title = %q", g.Title())
	}
	if g.Days[0].InMonth {
		t.Error("leading September day marked in month")
	}
	names := g.WeekdayNames()
	if names[0] != "Sun" || names[6] != "Sat" {
		t.Errorf("weekday names = %v", names)
	}

	gm := Build(today, nil, today, Monday)
	if gm.WeekdayNames()[0] != "Mon" {
		t.Errorf("monday grid names = %v", gm.WeekdayNames())
	}
	if got := gm.Days[len(gm.Days)-1].Date; got != model.NewDate(2026, time.November, 1) {
		t.Errorf("monday last cell = %s, want 2026-11-01", got)
	}
}

func TestEachNightInExactlyOneCell(t *testing.T) {
	today := model.NewDate(2026, time.October, 1)
	nights := []model.MovieNight{
		night(1, model.NewDate(2026, time.October, 5), "19:00:00"),
		night(2, model.NewDate(2026, time.October, 5), "17:30:00"),
		night(3, model.NewDate(2026, time.October, 31), "20:00:00"),
		night(4, model.NewDate(2026, time.September, 28), "20:00:00"),
		night(5, model.NewDate(2026, time.December, 25), "20:00:00"),
	}
	g := Build(today, nights, today, Sunday)

	seen := map[int64]int{}
	for _, d := range g.Days {
		for _, n := range d.MovieNights {
			seen[n.ID]++
			if n.ScheduledDate != d.Date {
				t.Errorf("night %d on %s placed in cell %s", n.ID, n.ScheduledDate, d.Date)
			}
		}
	}
	for _, id := range []int64{1, 2, 3, 4} {
		if seen[id] != 1 {
			t.Errorf("night %d appears %d times, want 1", id, seen[id])
		}
	}
	if seen[5] != 0 {
		t.Error("night outside the grid should not appear")
	}

	d, ok := g.Find(model.NewDate(2026, time.October, 5))
	if !ok {
		t.Fatal("Oct 5 not on grid")
	}
	if d.MovieNights[0].ID != 2 || d.MovieNights[1].ID != 1 {
		t.Errorf("order = %d, %d; want 2, 1 by start time", d.MovieNights[0].ID, d.MovieNights[1].ID)
	}
}

func TestOneDigitHourSortsFirst(t *testing.T) {
	day := model.NewDate(2026, time.October, 12)
	g := Build(day, []model.MovieNight{night(1, day, "19:00"), night(2, day, "7:30")}, day, Sunday)

	d, ok := g.Find(day)
	if !ok {
		t.Fatal("Oct 12 not on grid")
	}
	if len(d.MovieNights) != 2 || d.MovieNights[0].ID != 2 || d.MovieNights[1].ID != 1 {
		t.Errorf("order = %+v, want 7:30 before 19:00", d.MovieNights)
	}
}

func TestNavigation(t *testing.T) {
	today := model.NewDate(2026, time.January, 31)
	g := Build(today, nil, today, Sunday)

	if got := g.Prev(); got != model.NewDate(2025, time.December, 1) {
		t.Errorf("prev = %s, want 2025-12-01", got)
	}
	if got := g.Next(); got != model.NewDate(2026, time.February, 1) {
		t.Errorf("next = %s, want 2026-02-01", got)
	}
}

func TestClickDay(t *testing.T) {
	today := model.NewDate(2026, time.October, 19)
	busy := model.NewDate(2026, time.October, 22)
	g := Build(today, []model.MovieNight{night(1, busy, "19:00:00")}, today, Sunday)
	g.Editable = true

	tests := []struct {
		date model.Date
		want Action
	}{
		{model.NewDate(2026, time.October, 18), ActionNone},
		{today, ActionAdd},
		{model.NewDate(2026, time.October, 20), ActionAdd},
		{busy, ActionNone},
	}
	for _, tt := range tests {
		d, _ := g.Find(tt.date)
		if got := g.ClickDay(d); got != tt.want {
			t.Errorf("ClickDay(%s) = %q, want %q", tt.date, got, tt.want)
		}
	}

	if got := g.Actions()[today.String()]; got != ActionAdd {
		t.Errorf("Actions[today] = %q, want add", got)
	}

	g.Editable = false
	d, _ := g.Find(today)
	if got := g.ClickDay(d); got != ActionNone {
		t.Errorf("read-only ClickDay = %q, want none", got)
	}
}

func TestClickMovieNight(t *testing.T) {
	today := model.NewDate(2026, time.October, 19)
	n := night(1, today, "19:00:00")
	g := Build(today, []model.MovieNight{n}, today, Sunday)

	g.Editable = true
	if got := g.ClickMovieNight(n); got != ActionEdit {
		t.Errorf("own = %q, want edit", got)
	}
	g.Editable = false
	if got := g.ClickMovieNight(n); got != ActionView {
		t.Errorf("other = %q, want view", got)
	}
}

func TestTodayAndPastFlags(t *testing.T) {
	today := model.NewDate(2026, time.October, 19)
	g := Build(today, nil, today, Sunday)

	d, _ := g.Find(today)
	if !d.Today || d.Past {
		t.Errorf("today cell = %+v", d)
	}
	d, _ = g.Find(today.AddDays(-1))
	if !d.Past || d.Today {
		t.Errorf("yesterday cell = %+v", d)
	}
}

func TestParseWeekStart(t *testing.T) {
	if ws, err := ParseWeekStart("Monday"); err != nil || ws != Monday {
		t.Errorf("Monday = %v, %v", ws, err)
	}
	if ws, err := ParseWeekStart(""); err != nil || ws != Sunday {
		t.Errorf("empty = %v, %v", ws, err)
	}
	if _, err := ParseWeekStart("friday"); err == nil {
		t.Error("expected error for friday")
	}
}

func TestFilter(t *testing.T) {
	notes := "bring popcorn"
	nights := []model.MovieNight{
		{ID: 1, MovieTitle: "Alien"},
		{ID: 2, MovieTitle: "Heat", Notes: &notes},
	}
	if got := Filter(nights, "POP"); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("filter notes = %+v", got)
	}
	if got := Filter(nights, " "); len(got) != 2 {
		t.Errorf("blank filter = %d, want 2", len(got))
	}
}
