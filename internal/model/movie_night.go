package model

import "strings"

type MovieNight struct {
	ID            int64   `json:"id"`
	MovieTitle    string  `json:"movieTitle"`
	ScheduledDate Date    `json:"scheduledDate"`
	StartTime     string  `json:"startTime"`
	Notes         *string `json:"notes"`
	ImageURL      *string `json:"imageUrl"`
	Genre         *string `json:"genre"`
	UserID        int64   `json:"userId,omitempty"`
}

// Matches reports whether term occurs in the title or notes, case-insensitively.
func (n MovieNight) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.MovieTitle), term) {
		return true
	}
	return n.Notes != nil && strings.Contains(strings.ToLower(*n.Notes), term)
}

// MovieNightInput is the create/update payload. Optional fields are always
// sent, as null when absent.
type MovieNightInput struct {
	MovieTitle    string  `json:"movieTitle"`
	ScheduledDate string  `json:"scheduledDate"`
	StartTime     string  `json:"startTime"`
	Notes         *string `json:"notes"`
	ImageURL      *string `json:"imageUrl"`
	Genre         *string `json:"genre"`
}

type Attendee struct {
	UserID            int64  `json:"userId"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// MovieNightDetail is a movie night as seen by a viewer who may not own it.
// Attendees is always present, empty when nobody has RSVP'd.
type MovieNightDetail struct {
	MovieNight
	Owner       *User      `json:"owner,omitempty"`
	Attendees   []Attendee `json:"attendees"`
	IsAttending bool       `json:"isAttending"`
	IsOwner     bool       `json:"isOwner"`
}

type PublicCalendar struct {
	User             User         `json:"user"`
	MovieNights      []MovieNight `json:"movieNights"`
	TotalMovieNights int          `json:"totalMovieNights"`
	IsOwnCalendar    bool         `json:"isOwnCalendar"`
}

// StringPtr returns nil for an empty (after trimming) string.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
