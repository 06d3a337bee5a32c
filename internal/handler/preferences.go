package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/movienight/internal/calendar"
	"github.com/dukerupert/movienight/internal/store"
)

// Preferences resolves display settings: a stored preference wins over the
// configured default.
type Preferences struct {
	store     *store.PreferenceStore
	weekStart calendar.WeekStart
	loc       *time.Location
	logger    *slog.Logger
}

func NewPreferences(s *store.PreferenceStore, weekStart calendar.WeekStart, loc *time.Location, logger *slog.Logger) *Preferences {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Preferences{store: s, weekStart: weekStart, loc: loc, logger: logger}
}

func (p *Preferences) WeekStart() calendar.WeekStart {
	v, err := p.store.Get(store.PrefWeekStart)
	if err != nil {
		p.logger.Warn("read week start preference", "error", err)
		return p.weekStart
	}
	if v == "" {
		return p.weekStart
	}
	ws, err := calendar.ParseWeekStart(v)
	if err != nil {
		return p.weekStart
	}
	return ws
}

func (p *Preferences) Location() *time.Location {
	v, err := p.store.Get(store.PrefTimezone)
	if err != nil {
		p.logger.Warn("read timezone preference", "error", err)
		return p.loc
	}
	if v == "" {
		return p.loc
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		return p.loc
	}
	return loc
}

type preferencesView struct {
	WeekStart string `json:"weekStart"`
	Timezone  string `json:"timezone"`
}

func (p *Preferences) view() preferencesView {
	return preferencesView{WeekStart: p.WeekStart().String(), Timezone: p.Location().String()}
}

// Get handles GET /api/preferences.
func (p *Preferences) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.view())
}

// Update handles PUT /api/preferences. Empty values reset to the default.
func (p *Preferences) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekStart *string `json:"weekStart"`
		Timezone  *string `json:"timezone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if req.WeekStart != nil {
		if _, err := calendar.ParseWeekStart(*req.WeekStart); err != nil {
			fields["weekStart"] = "Week start must be sunday or monday"
		}
	}
	if req.Timezone != nil && *req.Timezone != "" {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			fields["timezone"] = "Unknown time zone"
		}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "Invalid preferences", "fields": fields})
		return
	}

	for key, v := range map[string]*string{store.PrefWeekStart: req.WeekStart, store.PrefTimezone: req.Timezone} {
		if v == nil {
			continue
		}
		var err error
		if *v == "" {
			err = p.store.Delete(key)
		} else {
			err = p.store.Set(key, *v)
		}
		if err != nil {
			p.logger.Error("save preference", "key", key, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save preferences"})
			return
		}
	}

	writeJSON(w, http.StatusOK, p.view())
}
