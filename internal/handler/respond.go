// Package handler serves the client's JSON views. Each view loads what it
// needs from the movie night API on request and maps API failures by kind.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/movienight/internal/api"
	"github.com/dukerupert/movienight/internal/auth"
	"github.com/dukerupert/movienight/internal/form"
	"github.com/dukerupert/movienight/internal/middleware"
	ws "github.com/dukerupert/movienight/internal/websocket"
)

const (
	forbiddenCalendarMsg = "You must be friends to view this calendar"
	upstreamFailedMsg    = "Something went wrong. Please try again."
)

// base carries what every view needs to report failures and announce changes.
type base struct {
	sessions *auth.Manager
	hub      *ws.Hub
	logger   *slog.Logger
	now      func() time.Time
}

func newBase(sessions *auth.Manager, hub *ws.Hub, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{sessions: sessions, hub: hub, logger: logger, now: time.Now}
}

func (b base) notify(entity, action string, id int64) {
	if b.hub != nil {
		b.hub.Notify(entity, action, id)
	}
}

// notifyUser reaches only the tabs of userID.
func (b base) notifyUser(userID int64, entity, action string, id int64) {
	if b.hub != nil {
		b.hub.NotifyUser(userID, entity, action, id)
	}
}

// fail writes the response for err. A rejected token ends the session.
// notFound is the message used when the API gave none.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Please fix the highlighted fields",
			"fields": verr.Fields,
		})

	case errors.Is(err, api.ErrUnauthorized):
		if lerr := b.sessions.Logout(); lerr != nil {
			b.logger.Error("clear rejected session", "error", lerr)
		}
		b.notifyUser(auth.UserID(r.Context()), ws.EntitySession, "expired", 0)
		middleware.RedirectToLogin(w, r)

	case errors.Is(err, api.ErrForbidden):
		msg := api.Message(err)
		if msg == "" {
			msg = forbiddenCalendarMsg
		}
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":    msg,
			"redirect": "/friends",
		})

	case errors.Is(err, api.ErrNotFound):
		msg := api.Message(err)
		if msg == "" {
			msg = notFound
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": msg})

	default:
		b.logger.Error("api call failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg := api.Message(err)
		if msg == "" {
			msg = upstreamFailedMsg
		}
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  msg,
			"notify": true,
		})
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// pathID parses the {id} path value, answering 400 when it is not a number.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}

// confirmed reports whether a destructive request carries confirm=true.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func isUnauthorized(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}
