// Package api calls the movie night REST API. Each resource has its own
// service; all of them share one Client that attaches the session's bearer
// token and maps failures to the error kinds views care about.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/movienight/internal/logging"
)

const DefaultBaseURL = "https://localhost:7137"

// TokenSource returns the current bearer token, or false when there is no
// valid session.
type TokenSource interface {
	Token() (string, bool)
}

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *slog.Logger

	Auth        *AuthService
	MovieNights *MovieNightService
	Profile     *ProfileService
	Friends     *FriendService
	Follows     *FollowService
	Calendars   *CalendarService
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the API at baseURL, e.g.
// "https://localhost:7137". Paths are appended under /api.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Auth = &AuthService{c: c}
	c.MovieNights = &MovieNightService{c: c}
	c.Profile = &ProfileService{c: c}
	c.Friends = &FriendService{c: c}
	c.Follows = &FollowService{c: c}
	c.Calendars = &CalendarService{c: c}
	return c
}

type call struct {
	method string
	path   string
	query  map[string]string
	body   any
	out    any
	public bool
}

func (c *Client) do(ctx context.Context, rc call) error {
	var token string
	if !rc.public {
		var (
			t  string
			ok bool
		)
		if c.tokens != nil {
			t, ok = c.tokens.Token()
		}
		if !ok {
			return &Error{Status: http.StatusUnauthorized, Method: rc.method, Path: rc.path, Message: "not signed in"}
		}
		token = t
	}

	var body io.Reader
	if rc.body != nil {
		b, err := json.Marshal(rc.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+"/api"+rc.path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if len(rc.query) > 0 {
		q := req.URL.Query()
		for k, v := range rc.query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := logging.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", rc.method, "path", rc.path, "request_id", reqID, "error", err)
		return fmt.Errorf("%s %s: %w", rc.method, rc.path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", rc.method,
		"path", rc.path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", reqID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp, rc.method, rc.path)
	}

	if rc.out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(rc.out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", rc.method, rc.path, err)
	}
	return nil
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
