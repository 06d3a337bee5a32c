package moviesearch

import "github.com/dukerupert/movienight/internal/tmdb"

// Selection is the state of the title field. It is exactly one of Unset,
// ManualEntry or DatabaseSelection.
type Selection interface {
	Mode() string
}

// Unset means the title field is empty.
type Unset struct{}

// ManualEntry is free text that did not come from the movie database.
// PosterEditable becomes true once the field loses focus, which is when the
// form offers a manual poster URL.
type ManualEntry struct {
	Text           string
	PosterEditable bool
}

// DatabaseSelection is a movie picked from search results.
type DatabaseSelection struct {
	MovieID int64
	Fields  Fields
}

func (Unset) Mode() string             { return "unset" }
func (ManualEntry) Mode() string       { return "manual" }
func (DatabaseSelection) Mode() string { return "database" }

// Fields is the metadata a database pick fills into the form.
type Fields struct {
	Title       string  `json:"title"`
	PosterURL   *string `json:"posterUrl"`
	Overview    string  `json:"overview"`
	Genre       *string `json:"genre"`
	ReleaseYear *int    `json:"releaseYear"`
}

// FieldsFromMovie extracts form metadata from a detail record.
func FieldsFromMovie(m tmdb.Movie, posterURL func(path, size string) string) Fields {
	f := Fields{
		Title:    m.Title,
		Overview: m.Overview,
	}
	if m.PosterPath != "" {
		u := posterURL(m.PosterPath, tmdb.SizePoster)
		f.PosterURL = &u
	}
	if len(m.Genres) > 0 && m.Genres[0] != "" {
		g := m.Genres[0]
		f.Genre = &g
	}
	if y, ok := m.Year(); ok {
		f.ReleaseYear = &y
	}
	return f
}

// Result is one row of the result list.
type Result struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Year         int    `json:"year,omitempty"`
	Overview     string `json:"overview,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}
