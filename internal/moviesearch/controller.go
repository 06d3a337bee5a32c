// Package moviesearch drives the movie title autocomplete: debounced lookups
// against the movie database, result selection, and the manual-entry
// fallback.
package moviesearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dukerupert/movienight/internal/debounce"
	"github.com/dukerupert/movienight/internal/tmdb"
)

const (
	DefaultDelay     = 500 * time.Millisecond
	DefaultBlurGrace = 200 * time.Millisecond
	MinQueryLength   = 2
	MaxResults       = 5

	lookupTimeout = 10 * time.Second
)

var (
	ErrClosed     = errors.New("moviesearch: controller closed")
	ErrSuperseded = errors.New("moviesearch: selection superseded by newer input")
)

// Lookup is the movie database. *tmdb.Client satisfies it.
type Lookup interface {
	Search(ctx context.Context, query string) ([]tmdb.Movie, error)
	Details(ctx context.Context, id int64) (*tmdb.Movie, error)
	PosterURL(path, size string) string
}

type Config struct {
	Scheduler debounce.Scheduler
	Delay     time.Duration
	BlurGrace time.Duration
	Logger    *slog.Logger
	// OnChange receives a snapshot after every state change. It is called
	// without the controller lock held, possibly from a timer goroutine.
	OnChange func(View)
}

// View is a snapshot of the autocomplete for rendering.
type View struct {
	Text           string    `json:"text"`
	Mode           string    `json:"mode"`
	MovieID        int64     `json:"movieId,omitempty"`
	Movie          *Fields   `json:"movie,omitempty"`
	PosterEditable bool      `json:"posterEditable"`
	Results        []Result  `json:"results"`
	Open           bool      `json:"open"`
	Searching      bool      `json:"searching"`
	Error          string    `json:"error,omitempty"`
	Selection      Selection `json:"-"`
}

type Controller struct {
	lookup   Lookup
	logger   *slog.Logger
	onChange func(View)
	search   *debounce.Debouncer
	hide     *debounce.Debouncer
	ctx      context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	text      string
	selection Selection
	results   []Result
	open      bool
	searching bool
	errMsg    string
	gen       uint64
	closed    bool
}

// New creates a controller. Lookups run under ctx until Close.
func New(ctx context.Context, lookup Lookup, cfg Config) *Controller {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.BlurGrace <= 0 {
		cfg.BlurGrace = DefaultBlurGrace
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		lookup:    lookup,
		logger:    cfg.Logger,
		onChange:  cfg.OnChange,
		search:    debounce.New(cfg.Scheduler, cfg.Delay),
		hide:      debounce.New(cfg.Scheduler, cfg.BlurGrace),
		ctx:       ctx,
		cancel:    cancel,
		selection: Unset{},
	}
}

// Reset replaces the field state, e.g. when an existing movie night is opened.
func (c *Controller) Reset(sel Selection) {
	c.search.Cancel()
	c.hide.Cancel()

	c.mu.Lock()
	c.gen++
	c.selection = sel
	switch s := sel.(type) {
	case ManualEntry:
		c.text = s.Text
	case DatabaseSelection:
		c.text = s.Fields.Title
	default:
		c.selection = Unset{}
		c.text = ""
	}
	c.results = nil
	c.open = false
	c.searching = false
	c.errMsg = ""
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

// Input handles a change of the title text.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if sel, ok := c.selection.(DatabaseSelection); ok && text == sel.Fields.Title {
		c.mu.Unlock()
		return
	}

	// Any text other than the selected database title is manual entry; the
	// previous pick's poster, overview and genre must not survive it.
	editable := false
	if m, ok := c.selection.(ManualEntry); ok {
		editable = m.PosterEditable
	}
	if text == "" {
		c.selection = Unset{}
	} else {
		c.selection = ManualEntry{Text: text, PosterEditable: editable}
	}

	c.text = text
	c.gen++
	gen := c.gen
	c.errMsg = ""
	c.open = true
	c.hide.Cancel()

	query := strings.TrimSpace(text)
	if utf8.RuneCountInString(query) < MinQueryLength {
		c.search.Cancel()
		c.results = nil
		c.searching = false
	} else {
		c.search.Trigger(func() { c.runSearch(gen, query) })
	}

	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

func (c *Controller) runSearch(gen uint64, query string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.searching = true
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)

	ctx, cancel := context.WithTimeout(c.ctx, lookupTimeout)
	movies, err := c.lookup.Search(ctx, query)
	cancel()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale search results", "query", query)
		return
	}
	c.searching = false
	if err != nil {
		c.logger.Warn("movie search failed", "query", query, "error", err)
		c.results = nil
		c.errMsg = "Movie search failed"
	} else {
		c.results = c.toResults(movies)
	}
	v = c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

func (c *Controller) toResults(movies []tmdb.Movie) []Result {
	if len(movies) > MaxResults {
		movies = movies[:MaxResults]
	}
	results := make([]Result, 0, len(movies))
	for _, m := range movies {
		r := Result{
			ID:           m.ID,
			Title:        m.Title,
			Overview:     m.Overview,
			ThumbnailURL: c.lookup.PosterURL(m.PosterPath, tmdb.SizeThumbnail),
		}
		if y, ok := m.Year(); ok {
			r.Year = y
		}
		results = append(results, r)
	}
	return results
}

// Select picks a result: full details are fetched, the list closes and the
// field becomes a database selection.
func (c *Controller) Select(ctx context.Context, movieID int64) (Fields, error) {
	c.search.Cancel()
	c.hide.Cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Fields{}, ErrClosed
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	m, err := c.lookup.Details(ctx, movieID)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Fields{}, ErrClosed
	}
	if gen != c.gen {
		c.mu.Unlock()
		return Fields{}, ErrSuperseded
	}
	if err != nil {
		c.errMsg = "Could not load movie details"
		v := c.viewLocked()
		c.mu.Unlock()
		c.emit(v)
		return Fields{}, fmt.Errorf("select movie %d: %w", movieID, err)
	}

	f := FieldsFromMovie(*m, c.lookup.PosterURL)
	c.text = f.Title
	c.selection = DatabaseSelection{MovieID: movieID, Fields: f}
	c.results = nil
	c.open = false
	c.searching = false
	c.errMsg = ""
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
	return f, nil
}

// Focus reopens the list and cancels a pending blur hide.
func (c *Controller) Focus() {
	c.hide.Cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.open = true
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

// Blur marks non-empty free text as a manual entry and hides the result list
// after the grace delay, so a click on a result that fires after the blur
// still selects it.
func (c *Controller) Blur() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.selection.(DatabaseSelection); !ok && strings.TrimSpace(c.text) != "" {
		c.selection = ManualEntry{Text: c.text, PosterEditable: true}
	}
	c.hide.Trigger(c.hideResults)
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

func (c *Controller) hideResults() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.open = false
	v := c.viewLocked()
	c.mu.Unlock()
	c.emit(v)
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Selection returns the current field state.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Close cancels pending timers and in-flight lookups. Later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.search.Cancel()
	c.hide.Cancel()
	c.cancel()
}

func (c *Controller) viewLocked() View {
	v := View{
		Text:      c.text,
		Mode:      c.selection.Mode(),
		Results:   append([]Result{}, c.results...),
		Open:      c.open && len(c.results) > 0,
		Searching: c.searching,
		Error:     c.errMsg,
		Selection: c.selection,
	}
	switch s := c.selection.(type) {
	case DatabaseSelection:
		f := s.Fields
		v.Movie = &f
		v.MovieID = s.MovieID
	case ManualEntry:
		v.PosterEditable = s.PosterEditable
	}
	return v
}

func (c *Controller) emit(v View) {
	if c.onChange != nil {
		c.onChange(v)
	}
}
