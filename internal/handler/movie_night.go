package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/calendar"
	"github.com/dukerupert/movienight/internal/form"
	"github.com/dukerupert/movienight/internal/ics"
	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/timefmt"
	ws "github.com/dukerupert/movienight/internal/websocket"
)

const movieNightNotFoundMsg = "Movie night not found"

type MovieNightHandler struct {
	base
	nights *api.MovieNightService
	prefs  *Preferences
}

func NewMovieNightHandler(client *api.Client, prefs *Preferences, sessions *auth.Manager, hub *ws.Hub, logger *slog.Logger) *MovieNightHandler {
	return &MovieNightHandler{
		base:   newBase(sessions, hub, logger),
		nights: client.MovieNights,
		prefs:  prefs,
	}
}

func (h *MovieNightHandler) today() model.Date {
	return model.Today(h.now(), h.prefs.Location())
}

func (h *MovieNightHandler) editor() *form.Editor {
	return form.NewEditor(h.nights, form.WithClock(h.now), form.WithLocation(h.prefs.Location()))
}

// monthView is a calendar grid plus what the page needs to render around it.
type monthView struct {
	calendar.Month
	Title    string                     `json:"title"`
	Weekdays []string                   `json:"weekdays"`
	Prev     string                     `json:"prev"`
	Next     string                     `json:"next"`
	Actions  map[string]calendar.Action `json:"actions"`
	Query    string                     `json:"query,omitempty"`
}

func newMonthView(m calendar.Month, query string) monthView {
	return monthView{
		Month:    m,
		Title:    m.Title(),
		Weekdays: m.WeekdayNames(),
		Prev:     monthParam(m.Prev()),
		Next:     monthParam(m.Next()),
		Actions:  m.Actions(),
		Query:    query,
	}
}

func monthParam(d model.Date) string {
	return d.String()[:7]
}

// parseMonth reads ?month=YYYY-MM, defaulting to the month containing today.
func parseMonth(r *http.Request, today model.Date) (model.Date, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return today.FirstOfMonth(), true
	}
	d, err := model.ParseDate(v + "-01")
	if err != nil {
		return model.Date{}, false
	}
	return d, true
}

// Calendar handles GET /api/calendar: the signed-in user's upcoming movie
// nights on a month grid, optionally filtered by ?q=.
func (h *MovieNightHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	ref, ok := parseMonth(r, today)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}

	nights, err := h.nights.Upcoming(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	m := calendar.Build(ref, calendar.Filter(nights, q), today, h.prefs.WeekStart())
	m.Editable = true
	writeJSON(w, http.StatusOK, newMonthView(m, q))
}

type pastEntry struct {
	model.MovieNight
	StartLabel string `json:"startLabel"`
	When       string `json:"when"`
}

// Past handles GET /api/movie-nights/past.
func (h *MovieNightHandler) Past(w http.ResponseWriter, r *http.Request) {
	nights, err := h.nights.Past(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	loc := h.prefs.Location()
	now := h.now()
	entries := make([]pastEntry, 0, len(nights))
	for _, n := range nights {
		entries = append(entries, pastEntry{
			MovieNight: n,
			StartLabel: timefmt.Format12Hour(n.StartTime),
			When:       humanize.RelTime(ics.Start(n, loc), now, "ago", "from now"),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

type editorView struct {
	ID     int64       `json:"id,omitempty"`
	IsNew  bool        `json:"isNew"`
	Fields form.Fields `json:"fields"`
	Today  model.Date  `json:"today"`
}

// New handles GET /api/movie-nights/new?date=YYYY-MM-DD: an empty form,
// prefilled with the clicked day.
func (h *MovieNightHandler) New(w http.ResponseWriter, r *http.Request) {
	var date model.Date
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = d
	}

	e := h.editor()
	e.OpenNew(date)
	writeJSON(w, http.StatusOK, editorView{IsNew: true, Fields: e.Fields, Today: e.Today()})
}

// Get handles GET /api/movie-nights/{id}: the form for an existing night.
func (h *MovieNightHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	n, err := h.nights.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, movieNightNotFoundMsg)
		return
	}

	e := h.editor()
	e.OpenExisting(*n)
	writeJSON(w, http.StatusOK, editorView{ID: e.ID(), Fields: e.Fields, Today: e.Today()})
}

func (h *MovieNightHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f form.Fields
	if !decodeJSON(w, r, &f) {
		return
	}

	e := h.editor()
	e.OpenNew(model.Date{})
	e.Fields = f
	n, err := e.Submit(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	h.notify(ws.EntityMovieNight, "created", n.ID)
	writeJSON(w, http.StatusCreated, n)
}

func (h *MovieNightHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var f form.Fields
	if !decodeJSON(w, r, &f) {
		return
	}

	e := h.editor()
	e.Load(id, f)
	n, err := e.Submit(r.Context())
	if err != nil {
		h.fail(w, r, err, movieNightNotFoundMsg)
		return
	}

	h.notify(ws.EntityMovieNight, "updated", n.ID)
	writeJSON(w, http.StatusOK, n)
}

// Delete handles DELETE /api/movie-nights/{id}. Without ?confirm=true it
// answers 428 with the confirmation prompt and deletes nothing. The prompt
// names ?title= when the page sends it, otherwise the night is read first.
func (h *MovieNightHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	e := h.editor()
	title := r.URL.Query().Get("title")
	if title == "" && !confirmed(r) {
		n, err := h.nights.Get(r.Context(), id)
		if err != nil {
			h.fail(w, r, err, movieNightNotFoundMsg)
			return
		}
		title = n.MovieTitle
	}
	e.Load(id, form.Fields{MovieTitle: title})
	if err := e.RequestDelete(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if !confirmed(r) {
		writeJSON(w, http.StatusPreconditionRequired, map[string]string{
			"error":  "confirmation required",
			"prompt": e.DeletePrompt(),
		})
		return
	}

	if err := e.ConfirmDelete(r.Context()); err != nil {
		if errors.Is(err, form.ErrDeleteNotConfirmed) {
			writeJSON(w, http.StatusPreconditionRequired, map[string]string{"prompt": e.DeletePrompt()})
			return
		}
		h.fail(w, r, err, movieNightNotFoundMsg)
		return
	}

	h.notify(ws.EntityMovieNight, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /calendar.ics: every movie night of the signed-in user.
func (h *MovieNightHandler) Export(w http.ResponseWriter, r *http.Request) {
	nights, err := h.nights.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "")
		return
	}

	var name string
	if sess, ok := auth.FromContext(r.Context()); ok {
		name = sess.User.DisplayName()
	}

	body := ics.Export(name, nights, h.prefs.Location(), h.now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="movienight.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
