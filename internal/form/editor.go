package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/movienight/internal/model"
	"github.com/dukerupert/movienight/internal/moviesearch"
)

var (
	ErrClosed             = errors.New("form: editor is not open")
	ErrDeleteNotConfirmed = errors.New("form: delete requires confirmation")
	ErrNotSaved           = errors.New("form: movie night has not been saved")
)

// Saver persists movie nights. *api.MovieNightService satisfies it.
type Saver interface {
	Create(ctx context.Context, in model.MovieNightInput) (*model.MovieNight, error)
	Update(ctx context.Context, id int64, in model.MovieNightInput) (*model.MovieNight, error)
	Delete(ctx context.Context, id int64) error
}

// autofill remembers what the last database pick wrote into the form so a
// switch to manual entry removes exactly that and keeps the user's own edits.
type autofill struct {
	set      bool
	imageURL string
	genre    string
	notes    string
}

// Editor is the add/edit modal. It is not safe for concurrent use.
type Editor struct {
	saver Saver
	now   func() time.Time
	loc   *time.Location

	open       bool
	id         int64
	Fields     Fields
	filled     autofill
	confirming bool
	lastErr    error
	errors     Errors
}

type EditorOption func(*Editor)

func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

func WithLocation(loc *time.Location) EditorOption {
	return func(e *Editor) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewEditor(saver Saver, opts ...EditorOption) *Editor {
	e := &Editor{saver: saver, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) reset() {
	e.open = true
	e.id = 0
	e.filled = autofill{}
	e.confirming = false
	e.lastErr = nil
	e.errors = nil
}

// OpenNew opens an empty editor, optionally prefilled with a date.
func (e *Editor) OpenNew(date model.Date) {
	e.reset()
	e.Fields = Fields{StartTime: DefaultStartTime}
	if !date.IsZero() {
		e.Fields.ScheduledDate = date.String()
	}
}

// OpenExisting opens the editor on a saved movie night.
func (e *Editor) OpenExisting(n model.MovieNight) {
	e.reset()
	e.id = n.ID
	e.Fields = FromMovieNight(n)
}

func (e *Editor) IsOpen() bool      { return e.open }
func (e *Editor) ID() int64         { return e.id }
func (e *Editor) IsNew() bool       { return e.id == 0 }
func (e *Editor) Confirming() bool  { return e.confirming }
func (e *Editor) LastError() error  { return e.lastErr }
func (e *Editor) Errors() Errors    { return e.errors }
func (e *Editor) Today() model.Date { return model.Today(e.now(), e.loc) }

// ApplySelection copies the title field state into the form. A database pick
// fills poster, genre and, when it has one, the overview into notes. Any
// other state removes what an earlier pick filled in.
func (e *Editor) ApplySelection(sel moviesearch.Selection) {
	switch s := sel.(type) {
	case moviesearch.DatabaseSelection:
		e.clearAutofill()
		e.Fields.MovieTitle = s.Fields.Title
		e.Fields.ImageURL = model.Deref(s.Fields.PosterURL)
		e.Fields.Genre = model.Deref(s.Fields.Genre)
		e.filled = autofill{set: true, imageURL: e.Fields.ImageURL, genre: e.Fields.Genre}
		if s.Fields.Overview != "" {
			e.Fields.Notes = s.Fields.Overview
			e.filled.notes = s.Fields.Overview
		}
	case moviesearch.ManualEntry:
		e.clearAutofill()
		e.Fields.MovieTitle = s.Text
	default:
		e.clearAutofill()
		e.Fields.MovieTitle = ""
	}
	delete(e.errors, FieldTitle)
}

func (e *Editor) clearAutofill() {
	if !e.filled.set {
		return
	}
	if e.Fields.ImageURL == e.filled.imageURL {
		e.Fields.ImageURL = ""
	}
	if e.Fields.Genre == e.filled.genre {
		e.Fields.Genre = ""
	}
	if e.filled.notes != "" && e.Fields.Notes == e.filled.notes {
		e.Fields.Notes = ""
	}
	e.filled = autofill{}
}

// Submit validates and saves. Invalid input returns a *ValidationError
// without calling the saver. A failed save keeps the editor open with the
// input intact; a successful one closes it.
func (e *Editor) Submit(ctx context.Context) (*model.MovieNight, error) {
	if !e.open {
		return nil, ErrClosed
	}

	errs := e.Fields.Validate(e.Today())
	if len(errs) > 0 {
		e.errors = errs
		return nil, &ValidationError{Fields: errs}
	}
	e.errors = nil

	in := e.Fields.Input()
	var (
		n   *model.MovieNight
		err error
	)
	if e.id == 0 {
		n, err = e.saver.Create(ctx, in)
	} else {
		n, err = e.saver.Update(ctx, e.id, in)
	}
	if err != nil {
		e.lastErr = err
		return nil, fmt.Errorf("save movie night: %w", err)
	}

	e.lastErr = nil
	e.open = false
	return n, nil
}

// RequestDelete asks for confirmation before ConfirmDelete will act.
func (e *Editor) RequestDelete() error {
	if !e.open {
		return ErrClosed
	}
	if e.id == 0 {
		return ErrNotSaved
	}
	e.confirming = true
	return nil
}

func (e *Editor) CancelDelete() {
	e.confirming = false
}

// DeletePrompt is the confirmation message for the pending delete.
func (e *Editor) DeletePrompt() string {
	title := strings.TrimSpace(e.Fields.MovieTitle)
	return fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", title)
}

func (e *Editor) ConfirmDelete(ctx context.Context) error {
	if !e.open {
		return ErrClosed
	}
	if !e.confirming {
		return ErrDeleteNotConfirmed
	}
	if err := e.saver.Delete(ctx, e.id); err != nil {
		e.lastErr = err
		e.confirming = false
		return fmt.Errorf("delete movie night %d: %w", e.id, err)
	}
	e.confirming = false
	e.open = false
	return nil
}

// Close discards the editor state.
func (e *Editor) Close() {
	e.open = false
	e.confirming = false
	e.errors = nil
	e.lastErr = nil
}

// Load opens the editor on raw values, e.g. a form the browser already shows.
func (e *Editor) Load(id int64, f Fields) {
	e.reset()
	e.id = id
	e.Fields = f
}
