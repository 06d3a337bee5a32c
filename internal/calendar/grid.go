// Package calendar lays movie nights out on a month grid and decides what a
// click on a cell or an entry does.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/timefmt"
)

type WeekStart time.Weekday

const (
	Sunday = WeekStart(time.Sunday)
	Monday = WeekStart(time.Monday)
)

// ParseWeekStart accepts "sunday" or "monday" in any case. Anything else is
// an error.
func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday":
		return Sunday, nil
	case "monday":
		return Monday, nil
	}
	return Sunday, fmt.Errorf("invalid week start %q", s)
}

func (w WeekStart) String() string {
	if w == Monday {
		return "monday"
	}
	return "sunday"
}

type Day struct {
	Date        model.Date         `json:"date"`
	MovieNights []model.MovieNight `json:"movieNights"`
	InMonth     bool               `json:"inMonth"`
	Today       bool               `json:"today"`
	Past        bool               `json:"past"`
}

// Month is the grid for one displayed month. Editable is true when the
// calendar belongs to the signed-in user.
type Month struct {
	Ref       model.Date `json:"month"`
	Today     model.Date `json:"today"`
	WeekStart WeekStart  `json:"-"`
	Editable  bool       `json:"editable"`
	Days      []Day      `json:"days"`
}

// Build lays out the month containing ref, from the week start on or before
// the 1st to the week end on or after the last day. Nights land on the cell
// whose date equals their scheduled date and are ordered by start time.
func Build(ref model.Date, nights []model.MovieNight, today model.Date, ws WeekStart) Month {
	first := ref.FirstOfMonth()
	last := ref.LastOfMonth()

	lead := (int(first.Weekday()) - int(ws) + 7) % 7
	start := first.AddDays(-lead)
	trail := (int(ws) + 6 - int(last.Weekday()) + 7) % 7
	end := last.AddDays(trail)

	byDate := make(map[model.Date][]model.MovieNight)
	for _, n := range nights {
		byDate[n.ScheduledDate] = append(byDate[n.ScheduledDate], n)
	}
	for d, ns := range byDate {
		sort.SliceStable(ns, func(i, j int) bool {
			return timefmt.WithSeconds(ns[i].StartTime) < timefmt.WithSeconds(ns[j].StartTime)
		})
		byDate[d] = ns
	}

	m := Month{Ref: first, Today: today, WeekStart: ws}
	for d := start; !d.After(end); d = d.AddDays(1) {
		ns := byDate[d]
		if ns == nil {
			ns = []model.MovieNight{}
		}
		m.Days = append(m.Days, Day{
			Date:        d,
			MovieNights: ns,
			InMonth:     d.Month == first.Month && d.Year == first.Year,
			Today:       d == today,
			Past:        d.Before(today),
		})
	}
	return m
}

// Weeks splits the grid into rows of seven days.
func (m Month) Weeks() [][]Day {
	weeks := make([][]Day, 0, len(m.Days)/7)
	for i := 0; i+7 <= len(m.Days); i += 7 {
		weeks = append(weeks, m.Days[i:i+7])
	}
	return weeks
}

// Prev and Next return the first day of the neighbouring months.
func (m Month) Prev() model.Date { return m.Ref.AddMonths(-1) }
func (m Month) Next() model.Date { return m.Ref.AddMonths(1) }

// Title is the heading, e.g. "October 2026".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Ref.Month, m.Ref.Year)
}

// WeekdayNames returns the column headings in grid order.
func (m Month) WeekdayNames() []string {
	names := make([]string, 7)
	for i := range names {
		names[i] = time.Weekday((int(m.WeekStart) + i) % 7).String()[:3]
	}
	return names
}

// Find returns the cell for d, if it is on the grid.
func (m Month) Find(d model.Date) (Day, bool) {
	for _, day := range m.Days {
		if day.Date == d {
			return day, true
		}
	}
	return Day{}, false
}

type Action string

const (
	ActionNone Action = "none"
	ActionAdd  Action = "add"
	ActionEdit Action = "edit"
	ActionView Action = "view"
)

// ClickDay is what a click on the empty part of a cell does. Only an empty,
// non-past day of an editable calendar opens the add form.
func (m Month) ClickDay(day Day) Action {
	if !m.Editable || day.Past || len(day.MovieNights) > 0 {
		return ActionNone
	}
	return ActionAdd
}

// ClickMovieNight is what a click on an entry does. It never falls through
// to the cell underneath.
func (m Month) ClickMovieNight(model.MovieNight) Action {
	if m.Editable {
		return ActionEdit
	}
	return ActionView
}

// Actions annotates each day with its click action, keyed by date string.
func (m Month) Actions() map[string]Action {
	out := make(map[string]Action, len(m.Days))
	for _, d := range m.Days {
		out[d.Date.String()] = m.ClickDay(d)
	}
	return out
}

// Filter keeps the nights whose title or notes contain term,
// case-insensitively. An empty term keeps everything.
func Filter(nights []model.MovieNight, term string) []model.MovieNight {
	term = strings.TrimSpace(term)
	if term == "" {
		return nights
	}
	out := make([]model.MovieNight, 0, len(nights))
	for _, n := range nights {
		if n.Matches(term) {
			out = append(out, n)
		}
	}
	return out
}
