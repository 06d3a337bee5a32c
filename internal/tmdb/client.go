// Package tmdb is a small client for The Movie Database search and detail
// endpoints, normalized to the fields a movie night needs.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"

	// SizeThumbnail is used in the search result list.
	SizeThumbnail = "w92"
	// SizePoster is used for a selected movie night's poster.
	SizePoster = "w500"
)

var ErrNotConfigured = errors.New("tmdb: missing api key")

type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	httpClient   *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.baseURL = u
		}
	}
}

func WithImageBaseURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.imageBaseURL = u
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		imageBaseURL: DefaultImageBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Movie is a search result or a detail record. Search results carry no
// genre names; Details fills them in.
type Movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	PosterPath  string   `json:"poster_path"`
	Overview    string   `json:"overview"`
	ReleaseDate string   `json:"release_date"`
	Genres      []string `json:"genres,omitempty"`
}

// Year returns the release year, if the release date is known.
func (m Movie) Year() (int, bool) {
	if len(m.ReleaseDate) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

type searchResponse struct {
	Results []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		PosterPath  string `json:"poster_path"`
		Overview    string `json:"overview"`
		ReleaseDate string `json:"release_date"`
	} `json:"results"`
}

type detailsResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"release_date"`
	Genres      []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// Search looks movies up by title.
func (c *Client) Search(ctx context.Context, query string) ([]Movie, error) {
	var res searchResponse
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", "1")
	if err := c.get(ctx, "/search/movie", q, &res); err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}

	movies := make([]Movie, 0, len(res.Results))
	for _, r := range res.Results {
		movies = append(movies, Movie{
			ID:          r.ID,
			Title:       r.Title,
			PosterPath:  r.PosterPath,
			Overview:    r.Overview,
			ReleaseDate: r.ReleaseDate,
		})
	}
	return movies, nil
}

// Details fetches a single movie including its genre names.
func (c *Client) Details(ctx context.Context, id int64) (*Movie, error) {
	var d detailsResponse
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &d); err != nil {
		return nil, fmt.Errorf("movie details %d: %w", id, err)
	}

	m := &Movie{
		ID:          d.ID,
		Title:       d.Title,
		PosterPath:  d.PosterPath,
		Overview:    d.Overview,
		ReleaseDate: d.ReleaseDate,
	}
	for _, g := range d.Genres {
		m.Genres = append(m.Genres, g.Name)
	}
	return m, nil
}

// PosterURL composes an image URL for a poster path fragment at the given
// width preset. An empty path yields "".
func (c *Client) PosterURL(path, size string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + size + path
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", "en-US")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
