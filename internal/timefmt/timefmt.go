// Package timefmt formats the API's 24-hour "HH:MM[:SS]" start times.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Format12Hour converts "14:30" or "14:30:00" to "2:30 PM". Empty input
// yields "" and malformed input is returned unchanged.
func Format12Hour(t string) string {
	if t == "" {
		return ""
	}
	h, m, _, ok := split(t)
	if !ok {
		return t
	}
	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, ampm)
}

// WithSeconds normalizes a valid time to "HH:MM:SS", padding a one-digit
// hour and adding ":00" when seconds are missing. Malformed input is
// returned as-is.
func WithSeconds(t string) string {
	h, m, s, ok := split(t)
	if !ok {
		return t
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Valid reports whether t is a well-formed HH:MM or HH:MM:SS time of day.
func Valid(t string) bool {
	_, _, _, ok := split(t)
	return ok
}

func split(t string) (h, m, s int, ok bool) {
	parts := strings.Split(strings.TrimSpace(t), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, false
	}
	h, ok = field(parts[0], 23)
	if !ok {
		return 0, 0, 0, false
	}
	m, ok = field(parts[1], 59)
	if !ok {
		return 0, 0, 0, false
	}
	if len(parts) == 3 {
		s, ok = field(parts[2], 59)
		if !ok {
			return 0, 0, 0, false
		}
	}
	return h, m, s, true
}

func field(s string, limit int) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > limit {
		return 0, false
	}
	return n, true
}
