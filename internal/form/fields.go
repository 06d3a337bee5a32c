// Package form validates and submits the movie night editor.
package form

import (
	"net/url"
	"sort"
	"strings"

	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/timefmt"
)

const DefaultStartTime = "19:00:00"

// Field names match the JSON keys of a movie night.
const (
	FieldTitle     = "movieTitle"
	FieldDate      = "scheduledDate"
	FieldStartTime = "startTime"
	FieldImageURL  = "imageUrl"
)

// Fields are the raw editor values, as typed.
type Fields struct {
	MovieTitle    string `json:"movieTitle"`
	ScheduledDate string `json:"scheduledDate"`
	StartTime     string `json:"startTime"`
	Notes         string `json:"notes"`
	ImageURL      string `json:"imageUrl"`
	Genre         string `json:"genre"`
}

// Errors maps a field name to its message. An empty map means valid.
type Errors map[string]string

type ValidationError struct {
	Fields Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid movie night: " + strings.Join(parts, "; ")
}

// Validate checks the fields against today's date. The date comparison is
// by calendar day only.
func (f Fields) Validate(today model.Date) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.MovieTitle) == "" {
		errs[FieldTitle] = "Movie title is required"
	}

	if strings.TrimSpace(f.ScheduledDate) == "" {
		errs[FieldDate] = "Date is required"
	} else if d, err := model.ParseDate(f.ScheduledDate); err != nil {
		errs[FieldDate] = "Please enter a valid date"
	} else if d.Before(today) {
		errs[FieldDate] = "Cannot schedule a movie in the past"
	}

	if strings.TrimSpace(f.StartTime) == "" {
		errs[FieldStartTime] = "Start time is required"
	} else if !timefmt.Valid(strings.TrimSpace(f.StartTime)) {
		errs[FieldStartTime] = "Please enter a valid time"
	}

	if u := strings.TrimSpace(f.ImageURL); u != "" && !validURL(u) {
		errs[FieldImageURL] = "Please enter a valid URL"
	}

	return errs
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// Input builds the request payload: the title is trimmed, the start time
// carries seconds and empty optional fields are sent as null.
func (f Fields) Input() model.MovieNightInput {
	in := model.MovieNightInput{
		MovieTitle: strings.TrimSpace(f.MovieTitle),
		StartTime:  timefmt.WithSeconds(strings.TrimSpace(f.StartTime)),
		Notes:      model.StringPtr(f.Notes),
		ImageURL:   model.StringPtr(f.ImageURL),
		Genre:      model.StringPtr(f.Genre),
	}
	if d, err := model.ParseDate(f.ScheduledDate); err == nil {
		in.ScheduledDate = d.String()
	}
	return in
}

// FromMovieNight loads an existing movie night into editor values.
func FromMovieNight(n model.MovieNight) Fields {
	f := Fields{
		MovieTitle: n.MovieTitle,
		StartTime:  n.StartTime,
		Notes:      model.Deref(n.Notes),
		ImageURL:   model.Deref(n.ImageURL),
		Genre:      model.Deref(n.Genre),
	}
	if f.StartTime == "" {
		f.StartTime = DefaultStartTime
	}
	if !n.ScheduledDate.IsZero() {
		f.ScheduledDate = n.ScheduledDate.String()
	}
	return f
}
