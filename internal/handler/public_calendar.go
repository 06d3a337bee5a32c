package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/calendar"
	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/timefmt"
	ws "github.com/dukerupert/movienight/internal/websocket"
)

// CalendarHandler serves other users' calendars and movie night details.
type CalendarHandler struct {
	base
	calendars *api.CalendarService
	prefs     *Preferences
}

func NewCalendarHandler(client *api.Client, prefs *Preferences, sessions *auth.Manager, hub *ws.Hub, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		base:      newBase(sessions, hub, logger),
		calendars: client.Calendars,
		prefs:     prefs,
	}
}

type userCalendarView struct {
	monthView
	User             model.User `json:"user"`
	TotalMovieNights int        `json:"totalMovieNights"`
	IsOwnCalendar    bool       `json:"isOwnCalendar"`
}

// UserCalendar handles GET /api/users/{id}/calendar?month=YYYY-MM. Only the
// owner's own calendar is editable.
func (h *CalendarHandler) UserCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	today := model.Today(h.now(), h.prefs.Location())
	ref, ok := parseMonth(r, today)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	cal, err := h.calendars.User(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, userNotFoundMsg)
		return
	}

	own := cal.IsOwnCalendar || cal.User.ID == auth.UserID(r.Context())
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	m := calendar.Build(ref, calendar.Filter(cal.MovieNights, q), today, h.prefs.WeekStart())
	m.Editable = own
	writeJSON(w, http.StatusOK, userCalendarView{
		monthView:        newMonthView(m, q),
		User:             cal.User,
		TotalMovieNights: cal.TotalMovieNights,
		IsOwnCalendar:    own,
	})
}

type movieNightDetailView struct {
	model.MovieNightDetail
	StartLabel    string `json:"startLabel"`
	AttendeeCount int    `json:"attendeeCount"`
	CanAttend     bool   `json:"canAttend"`
}

// MovieNight handles GET /api/events/{id}.
func (h *CalendarHandler) MovieNight(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	d, err := h.calendars.MovieNight(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, movieNightNotFoundMsg)
		return
	}

	today := model.Today(h.now(), h.prefs.Location())
	writeJSON(w, http.StatusOK, movieNightDetailView{
		MovieNightDetail: *d,
		StartLabel:       timefmt.Format12Hour(d.StartTime),
		AttendeeCount:    len(d.Attendees),
		CanAttend:        !d.IsOwner && !d.ScheduledDate.Before(today),
	})
}

func (h *CalendarHandler) Attend(w http.ResponseWriter, r *http.Request) {
	h.rsvp(w, r, true)
}

func (h *CalendarHandler) Unattend(w http.ResponseWriter, r *http.Request) {
	h.rsvp(w, r, false)
}

func (h *CalendarHandler) rsvp(w http.ResponseWriter, r *http.Request, attend bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var err error
	action := "joined"
	if attend {
		err = h.calendars.Attend(r.Context(), id)
	} else {
		action = "left"
		err = h.calendars.Unattend(r.Context(), id)
	}
	if err != nil {
		h.fail(w, r, err, movieNightNotFoundMsg)
		return
	}

	h.notify(ws.EntityAttendance, action, id)
	writeJSON(w, http.StatusOK, map[string]bool{"isAttending": attend})
}
