package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dukerupert/movienight/internal/debounce"
	"github.com/dukerupert/movienight/internal/form"
	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/moviesearch"
)

// Command is a message from the browser's title field.
type Command struct {
	Type    string       `json:"type"`
	Text    string       `json:"text,omitempty"`
	MovieID int64        `json:"movieId,omitempty"`
	ID      int64        `json:"id,omitempty"`
	Fields  *form.Fields `json:"fields,omitempty"`
}

// Reply is a message to the browser.
type Reply struct {
	Type   string            `json:"type"`
	State  *moviesearch.View `json:"state,omitempty"`
	Fields *form.Fields      `json:"fields,omitempty"`
	Error  string            `json:"error,omitempty"`
}

const (
	CommandOpen   = "open"
	CommandInput  = "input"
	CommandFocus  = "focus"
	CommandBlur   = "blur"
	CommandSelect = "select"

	ReplyState  = "state"
	ReplyFields = "fields"
	ReplyError  = "error"
)

// SearchSession runs one autocomplete over a socket. State snapshots are
// written latest-wins so a slow browser never sees them out of order.
type SearchSession struct {
	conn   *ws.Conn
	lookup moviesearch.Lookup
	sched  debounce.Scheduler
	logger *slog.Logger

	ctrl   *moviesearch.Controller
	editor *form.Editor
	mode   string

	mu     sync.Mutex
	latest *moviesearch.View
	notify chan struct{}
}

func NewSearchSession(conn *ws.Conn, lookup moviesearch.Lookup, sched debounce.Scheduler, logger *slog.Logger) *SearchSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchSession{
		conn:   conn,
		lookup: lookup,
		sched:  sched,
		logger: logger,
		editor: form.NewEditor(nil),
		notify: make(chan struct{}, 1),
	}
}

// Run blocks until the socket closes.
func (s *SearchSession) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.ctrl = moviesearch.New(ctx, s.lookup, moviesearch.Config{
		Scheduler: s.sched,
		Logger:    s.logger,
		OnChange:  s.push,
	})
	defer s.ctrl.Close()

	s.editor.OpenNew(model.Date{})
	s.mode = s.ctrl.View().Mode

	go s.writeStates(ctx)

	for {
		var cmd Command
		if err := wsjson.Read(ctx, s.conn, &cmd); err != nil {
			if ws.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				s.logger.Debug("movie search socket closed", "error", err)
			}
			return
		}
		if err := s.handle(ctx, cmd); err != nil {
			return
		}
	}
}

func (s *SearchSession) handle(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CommandOpen:
		fields := form.Fields{StartTime: form.DefaultStartTime}
		if cmd.Fields != nil {
			fields = *cmd.Fields
		}
		s.editor.Load(cmd.ID, fields)
		if fields.MovieTitle != "" {
			s.ctrl.Reset(moviesearch.ManualEntry{Text: fields.MovieTitle})
		} else {
			s.ctrl.Reset(moviesearch.Unset{})
		}
		s.mode = s.ctrl.View().Mode
		return nil

	case CommandInput:
		s.ctrl.Input(cmd.Text)
		return s.syncFields(ctx)

	case CommandFocus:
		s.ctrl.Focus()
		return nil

	case CommandBlur:
		s.ctrl.Blur()
		return s.syncFields(ctx)

	case CommandSelect:
		if _, err := s.ctrl.Select(ctx, cmd.MovieID); err != nil {
			if errors.Is(err, moviesearch.ErrSuperseded) || errors.Is(err, moviesearch.ErrClosed) {
				return nil
			}
			s.logger.Warn("movie select failed", "movie_id", cmd.MovieID, "error", err)
			return wsjson.Write(ctx, s.conn, Reply{Type: ReplyError, Error: "Could not load movie details"})
		}
		return s.syncFields(ctx, true)
	}

	return wsjson.Write(ctx, s.conn, Reply{Type: ReplyError, Error: "unknown command " + cmd.Type})
}

// syncFields applies the title field state to the form and sends the form
// when the selection kind changed.
func (s *SearchSession) syncFields(ctx context.Context, force ...bool) error {
	v := s.ctrl.View()
	changed := v.Mode != s.mode || len(force) > 0
	s.editor.ApplySelection(v.Selection)
	s.mode = v.Mode
	if !changed {
		return nil
	}
	fields := s.editor.Fields
	return wsjson.Write(ctx, s.conn, Reply{Type: ReplyFields, Fields: &fields})
}

func (s *SearchSession) push(v moviesearch.View) {
	s.mu.Lock()
	s.latest = &v
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *SearchSession) writeStates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
		}
		s.mu.Lock()
		v := s.latest
		s.latest = nil
		s.mu.Unlock()
		if v == nil {
			continue
		}
		if err := wsjson.Write(ctx, s.conn, Reply{Type: ReplyState, State: v}); err != nil {
			return
		}
	}
}
